package zone

import (
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRR(s string) dns.RR {
	rr, err := dns.NewRR(s)
	if err != nil {
		panic(err)
	}

	return rr
}

const testSOA = "example.net. 3600 IN SOA ns1.example.net. hostmaster.example.net. 2024010101 3600 900 604800 300"

func TestContentsAddRR(t *testing.T) {
	c := NewContents("Example.NET")
	assert.Equal(t, "example.net.", c.Apex())

	added, err := c.AddRR(newRR(testSOA))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Equal(t, uint32(2024010101), c.Serial())

	added, err = c.AddRR(newRR(testSOA)) // Identical SOA is a duplicate
	require.NoError(t, err)
	assert.False(t, added)

	_, err = c.AddRR(newRR("example.net. 3600 IN SOA ns1.example.net. h.example.net. 2 1 1 1 1"))
	assert.ErrorIs(t, err, ErrMultipleSOA)

	testCases := []struct {
		rr    string
		added bool
		err   error
	}{
		{"www.example.net. IN A 192.0.2.1", true, nil},
		{"WWW.example.net. 60 IN A 192.0.2.1", false, nil}, // TTL and case ignored
		{"www.example.net. IN A 192.0.2.2", true, nil},
		{"a.b.c.example.net. IN AAAA 2001:db8::1", true, nil},
		{"www.example.org. IN A 192.0.2.1", false, ErrOutOfZone},
		{"www.example.net. CH TXT hello", false, ErrOutOfZone},
		{"sub.example.net. IN SOA ns1. h. 1 1 1 1 1", false, ErrOutOfZone},
	}
	for ix, tc := range testCases {
		added, err := c.AddRR(newRR(tc.rr))
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, ix)
			continue
		}
		assert.NoError(t, err, ix)
		assert.Equal(t, tc.added, added, ix)
	}
	assert.Equal(t, 4, c.Count())
}

func TestContentsLookupRR(t *testing.T) {
	c := NewContents("example.net.")
	for _, s := range []string{testSOA,
		"www.example.net. IN A 192.0.2.1",
		"www.example.net. IN A 192.0.2.2",
		"a.b.c.example.net. IN AAAA 2001:db8::1"} {
		_, err := c.AddRR(newRR(s))
		require.NoError(t, err)
	}

	testCases := []struct {
		qType   uint16
		qName   string
		arCount int
		nx      bool
	}{
		{dns.TypeA, "www.example.net.", 2, false},
		{dns.TypeA, "WWW.Example.Net.", 2, false},
		{dns.TypeAAAA, "www.example.net.", 0, false},
		{dns.TypeSOA, "example.net.", 1, false},
		{dns.TypeA, "b.c.example.net.", 0, false}, // Empty non-terminal
		{dns.TypeA, "nope.example.net.", 0, true},
		{dns.TypeA, "x.a.b.c.example.net.", 0, true}, // Too deep
		{dns.TypeA, "www.example.org.", 0, true},
	}
	for ix, tc := range testCases {
		ans, nx := c.LookupRR(tc.qType, tc.qName)
		assert.Len(t, ans, tc.arCount, ix)
		assert.Equal(t, tc.nx, nx, ix)
	}

	ans, _ := c.LookupRR(dns.TypeA, "www.example.net.")
	ans[0].Header().Ttl = 1 // Copies so callers cannot modify contents
	again, _ := c.LookupRR(dns.TypeA, "www.example.net.")
	assert.NotEqual(t, uint32(1), again[0].Header().Ttl)
}

func TestContentsSetSOA(t *testing.T) {
	c := NewContents("example.net.")
	soa := newRR(testSOA).(*dns.SOA)
	require.NoError(t, c.SetSOA(soa))
	soa.Serial++
	require.NoError(t, c.SetSOA(soa))
	assert.Equal(t, uint32(2024010102), c.Serial())
	assert.Equal(t, 1, c.Count())

	soa.Hdr.Name = "other.net."
	assert.ErrorIs(t, c.SetSOA(soa), ErrOutOfZone)
}

func TestContentsNSEC3Param(t *testing.T) {
	testCases := []struct {
		rrs    []string
		signed bool
		nsec3  bool
		err    error
	}{
		{nil, false, false, nil},
		{[]string{"example.net. IN DNSKEY 257 3 13 AwEAAQ=="}, true, false, nil},
		{[]string{"example.net. IN NSEC3PARAM 1 0 0 -"}, false, true, nil},
		{[]string{"example.net. IN NSEC3PARAM 2 0 0 -"}, false, true, ErrBadNSEC3Param},
		{[]string{"example.net. IN NSEC3PARAM 1 1 0 -"}, false, true, ErrBadNSEC3Param},
		{[]string{"example.net. IN NSEC3PARAM 2 0 0 -",
			"example.net. IN NSEC3PARAM 1 0 5 AABB"}, false, true, nil},
		{[]string{"0p9mhaveqvm6t7vbl5lop2u3t2rp3tom.example.net. IN NSEC3 1 1 12 aabbccdd 2t7b4g4vsa5smi47k61mv5bv1a22bojr A RRSIG"},
			false, true, ErrBadNSEC3Param},
	}

	for ix, tc := range testCases {
		c := NewContents("example.net.")
		_, err := c.AddRR(newRR(testSOA))
		require.NoError(t, err, ix)
		for _, s := range tc.rrs {
			_, err := c.AddRR(newRR(s))
			require.NoError(t, err, ix)
		}
		assert.Equal(t, tc.signed, c.IsSigned(), ix)
		assert.Equal(t, tc.nsec3, c.IsNSEC3(), ix)
		err = c.LoadNSEC3Param()
		if tc.err != nil {
			assert.ErrorIs(t, err, tc.err, ix)
			assert.Nil(t, c.NSEC3Param(), ix)
			continue
		}
		assert.NoError(t, err, ix)
		if tc.nsec3 {
			require.NotNil(t, c.NSEC3Param(), ix)
			assert.Equal(t, dns.SHA1, c.NSEC3Param().Hash, ix)
		}
	}
}

func TestContentsRelease(t *testing.T) {
	c := NewContents("example.net.")
	_, err := c.AddRR(newRR(testSOA))
	require.NoError(t, err)
	assert.False(t, c.Released())

	c.Release()
	c.Release() // Idempotent
	assert.True(t, c.Released())
	ans, nx := c.LookupRR(dns.TypeSOA, "example.net.")
	assert.Empty(t, ans)
	assert.True(t, nx)
	assert.Nil(t, c.SOA())
}
