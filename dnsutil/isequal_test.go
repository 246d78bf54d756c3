package dnsutil

import (
	"testing"

	"github.com/miekg/dns"
)

func TestRRIsEqual(t *testing.T) {
	testCases := []struct {
		rr1, rr2 string
		equal    bool
	}{
		{"www.example.net. 300 IN A 192.0.2.80", "WWW.Example.NET. 3600 IN A 192.0.2.80", true},
		{"www.example.net. 300 IN A 192.0.2.80", "www.example.net. 300 IN A 192.0.2.81", false},
		{"www.example.net. 300 IN A 192.0.2.80", "www.example.net. 300 CH A 192.0.2.80", false},
		{"example.net. IN NS ns1.example.net.", "example.net. IN NS NS1.Example.Net.", true},
		{"example.net. IN NS ns1.example.net.", "example.net. IN NS ns2.example.net.", false},
		{"example.net. IN MX 10 mx.example.net.", "example.net. IN MX 20 mx.example.net.", false},
		{`t.example.net. IN TXT "Hello"`, `t.example.net. IN TXT "Hello"`, true},
		{`t.example.net. IN TXT "Hello"`, `t.example.net. IN TXT "hello"`, false},
		{"example.net. IN SOA ns1 hm 1 3600 900 604800 300",
			"example.net. IN SOA ns1 hm 1 3600 900 604800 300", true},
		{"example.net. IN SOA ns1 hm 1 3600 900 604800 300",
			"example.net. IN SOA ns1 hm 2 3600 900 604800 300", false},
		{"example.net. IN NSEC3PARAM 1 0 10 AABBCCDD",
			"example.net. IN NSEC3PARAM 1 0 10 AABBCCDD", true},
		{"example.net. IN NSEC3PARAM 1 0 10 AABBCCDD",
			"example.net. IN NSEC3PARAM 1 0 5 AABBCCDD", false},
		{"a.example.net. IN AAAA 2001:db8::1", "a.example.net. IN A 192.0.2.1", false},
	}

	for ix, tc := range testCases {
		rr1, err := dns.NewRR(tc.rr1)
		if err != nil {
			t.Fatal(ix, "Setup failed", err)
		}
		rr2, err := dns.NewRR(tc.rr2)
		if err != nil {
			t.Fatal(ix, "Setup failed", err)
		}

		if got := RRIsEqual(rr1, rr2); got != tc.equal {
			t.Error(ix, "Want", tc.equal, "got", got, rr1, rr2)
		}
	}
}
