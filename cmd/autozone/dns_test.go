package main

import (
	"strings"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/mock"
)

func newLoadedServer(t *testing.T) (*testZone, *server) {
	tz := newTestZone(t)
	tz.writeZone("example.net", 10)
	tz.writeZone("sub.example.net", 20)
	tz.writeConfig(1,
		"{name: example.net, file: example.net.zone}",
		"{name: sub.example.net, file: sub.example.net.zone}",
		"{name: example.org, file: missing.zone, transfer_in: [192.0.2.1]}")
	if !tz.reloadZones("test") {
		t.Fatal("Setup reload failed", tz.out.String())
	}

	return tz, newServer(tz.cfg, tz.dbGetter, dnsutil.UDPNetwork, "")
}

func exchange(srv *server, m *dns.Msg) *dns.Msg {
	wtr := &mock.ResponseWriter{}
	srv.ServeDNS(wtr, m)

	return wtr.Get()
}

func TestDNSAnswers(t *testing.T) {
	_, srv := newLoadedServer(t)

	testCases := []struct {
		qClass  uint16
		qType   uint16
		qName   string
		rcode   int
		aa      bool
		answers int
		soaZone string // Expected SOA owner in Ns, if any
	}{
		{dns.ClassINET, dns.TypeA, "www.example.net.", dns.RcodeSuccess, true, 1, ""},
		{dns.ClassINET, dns.TypeA, "WWW.Example.NET.", dns.RcodeSuccess, true, 1, ""},
		{dns.ClassINET, dns.TypeSOA, "example.net.", dns.RcodeSuccess, true, 1, ""},
		{dns.ClassINET, dns.TypeNS, "example.net.", dns.RcodeSuccess, true, 1, ""},
		{dns.ClassINET, dns.TypeAAAA, "www.example.net.", dns.RcodeSuccess, true, 0, "example.net."},
		{dns.ClassINET, dns.TypeA, "nope.example.net.", dns.RcodeNameError, true, 0, "example.net."},
		{dns.ClassINET, dns.TypeA, "www.sub.example.net.", dns.RcodeSuccess, true, 1, ""},
		{dns.ClassINET, dns.TypeA, "nope.sub.example.net.", dns.RcodeNameError, true, 0, "sub.example.net."},
		{dns.ClassINET, dns.TypeA, "www.example.org.", dns.RcodeServerFailure, false, 0, ""},
		{dns.ClassINET, dns.TypeA, "www.example.com.", dns.RcodeRefused, false, 0, ""},
		{dns.ClassCHAOS, dns.TypeTXT, "version.bind.", dns.RcodeRefused, false, 0, ""},
	}

	for ix, tc := range testCases {
		resp := exchange(srv, setQuestion(tc.qClass, tc.qType, tc.qName))
		if resp == nil {
			t.Fatal(ix, "No response for", tc.qName)
		}
		if resp.Rcode != tc.rcode {
			t.Error(ix, "Rcode. Want", dns.RcodeToString[tc.rcode], "got", dns.RcodeToString[resp.Rcode])
		}
		if resp.Authoritative != tc.aa {
			t.Error(ix, "AA. Want", tc.aa, "got", resp.Authoritative)
		}
		if len(resp.Answer) != tc.answers {
			t.Error(ix, "Answer count. Want", tc.answers, "got", len(resp.Answer), resp.Answer)
		}
		if len(tc.soaZone) > 0 {
			if len(resp.Ns) != 1 {
				t.Fatal(ix, "Expected SOA in Ns, got", resp.Ns)
			}
			soa, ok := resp.Ns[0].(*dns.SOA)
			if !ok || !dnsutil.NameEqual(soa.Hdr.Name, tc.soaZone) {
				t.Error(ix, "Wrong SOA in Ns", resp.Ns[0])
			}
		}
	}

	if srv.stats.queries != len(testCases) {
		t.Error("Query count", srv.stats.queries, "not", len(testCases))
	}
	if srv.stats.nxDomain != 2 || srv.stats.noData != 1 || srv.stats.servFail != 1 ||
		srv.stats.refused != 2 || srv.stats.answered != 5 {
		t.Error("Unexpected stats", srv.stats.String())
	}
}

func TestDNSFormErr(t *testing.T) {
	_, srv := newLoadedServer(t)

	m := setQuestion(dns.ClassINET, dns.TypeA, "www.example.net.")
	m.Question = append(m.Question, dns.Question{Name: "x.", Qtype: dns.TypeA, Qclass: dns.ClassINET})
	twoQ := m

	m = setQuestion(dns.ClassINET, dns.TypeA, "www.example.net.")
	m.Opcode = dns.OpcodeNotify
	notify := m

	m = setQuestion(dns.ClassINET, dns.TypeA, "www.example.net.")
	rr, _ := dns.NewRR("www.example.net. IN A 192.0.2.1")
	m.Answer = append(m.Answer, rr)
	withAnswer := m

	for ix, m := range []*dns.Msg{new(dns.Msg), twoQ, notify, withAnswer} {
		resp := exchange(srv, m)
		if resp == nil || resp.Rcode != dns.RcodeFormatError {
			t.Error(ix, "Expected FORMERR, got", resp)
		}
	}
	if srv.stats.badRequest != 4 {
		t.Error("badRequest count", srv.stats.badRequest)
	}
}

func TestDNSEDNS(t *testing.T) {
	tz, srv := newLoadedServer(t)
	tz.cfg.ednsPayload = 1400

	m := setQuestion(dns.ClassINET, dns.TypeA, "www.example.net.")
	m.SetEdns0(4096, true)
	resp := exchange(srv, m)
	opt := resp.IsEdns0()
	if opt == nil {
		t.Fatal("Expected OPT in response")
	}
	if opt.UDPSize() != 1400 {
		t.Error("Expected payload 1400, got", opt.UDPSize())
	}
	if !opt.Do() {
		t.Error("DO bit not echoed")
	}

	resp = exchange(srv, setQuestion(dns.ClassINET, dns.TypeA, "www.example.net."))
	if resp.IsEdns0() != nil {
		t.Error("Did not expect OPT without one in the query")
	}
}

func TestDNSTruncate(t *testing.T) {
	_, srv := newLoadedServer(t)

	resp := exchange(srv, setQuestion(dns.ClassINET, dns.TypeTXT, "big.example.net."))
	if !resp.Truncated {
		t.Error("Expected truncation without EDNS", resp.Len())
	}

	m := setQuestion(dns.ClassINET, dns.TypeTXT, "big.example.net.")
	m.SetEdns0(1232, false)
	resp = exchange(srv, m)
	if resp.Truncated || len(resp.Answer) != 3 {
		t.Error("Did not expect truncation with EDNS", resp.Truncated, len(resp.Answer))
	}

	tcp := newServer(srv.cfg, srv.dbGetter, dnsutil.TCPNetwork, "")
	resp = exchange(tcp, setQuestion(dns.ClassINET, dns.TypeTXT, "big.example.net."))
	if resp.Truncated || len(resp.Answer) != 3 {
		t.Error("Did not expect TCP truncation", resp.Truncated, len(resp.Answer))
	}
}

func TestDNSLogQueries(t *testing.T) {
	tz, srv := newLoadedServer(t)
	tz.cfg.logQueries.Store(true)
	tz.out.Reset()

	exchange(srv, setQuestion(dns.ClassINET, dns.TypeA, "nope.example.net."))
	exchange(srv, setQuestion(dns.ClassINET, dns.TypeA, "www.example.com."))

	tcp := newServer(tz.cfg, tz.dbGetter, dnsutil.TCPNetwork, "")
	wtr := &mock.ResponseWriter{Remote: mock.NewNetAddr("tcp", "192.0.2.9:53000")}
	tcp.ServeDNS(wtr, setQuestion(dns.ClassINET, dns.TypeA, "www.example.net."))

	got := tz.out.String()
	for _, s := range []string{
		"ru=NXDOMAIN q=A/nope.example.net. s=127.0.0.2 id=",
		"h=U a=0/1",
		"ru=REFUSED q=A/www.example.com.",
		"No authority",
		"ru=ok q=A/www.example.net. s=192.0.2.9:53000",
		"h=T a=1/0",
	} {
		if !strings.Contains(got, s) {
			t.Error("Log does not contain", s, "\n", got)
		}
	}
}

// A query in flight holds the generation it started with even when a reload replaces it.
func TestDNSHeldGeneration(t *testing.T) {
	tz, srv := newLoadedServer(t)

	held := tz.dbGetter.Acquire()
	tz.writeZone("example.net", 11)
	reloaded := make(chan bool)
	go func() { reloaded <- tz.reloadZones("test") }()

	for ix := 0; tz.dbGetter.Current() == held; ix++ { // Wait for the swap
		if ix > 500 {
			t.Fatal("Reload did not publish", tz.out.String())
		}
		time.Sleep(10 * time.Millisecond)
	}

	z := held.Find("example.net.")
	if z == nil || z.Serving() == nil {
		t.Fatal("Held generation lost its zone")
	}
	if z.Serving().Serial() != 10 {
		t.Error("Held generation serial", z.Serving().Serial())
	}
	tz.dbGetter.Release(held)
	if !<-reloaded {
		t.Error("Reload failed", tz.out.String())
	}
	if z.Serving() != nil {
		t.Error("Replaced zone should be retired once released")
	}

	resp := exchange(srv, setQuestion(dns.ClassINET, dns.TypeSOA, "example.net."))
	if len(resp.Answer) != 1 || resp.Answer[0].(*dns.SOA).Serial != 11 {
		t.Error("New generation not served", resp.Answer)
	}
}
