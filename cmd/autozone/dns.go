package main

import (
	"fmt"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
)

// Called from miekg - handles all DNS queries. Answers come from whichever generation of
// the database is live when the query arrives and that generation is held until the
// response is written, even if a reload replaces it in the meantime.
func (t *server) ServeDNS(wtr dns.ResponseWriter, query *dns.Msg) {
	var stats serverStats
	stats.queries++
	defer t.addStats(&stats)

	resp := new(dns.Msg)
	var note string
	if t.cfg.logQueries.Load() {
		defer func() { t.logQuery(wtr, query, resp, note) }()
	}

	// miekg's accept function has most likely caught these already, but what it
	// checks is not documented so be certain.
	if len(query.Question) != 1 ||
		len(query.Answer) != 0 ||
		len(query.Ns) != 0 ||
		query.Opcode != dns.OpcodeQuery {
		resp.SetRcodeFormatError(query)
		stats.badRequest++
		note = "Malformed Query"
		t.writeMsg(wtr, query, resp, &stats)
		return
	}

	resp.SetReply(query)
	q := query.Question[0]
	qName := dns.CanonicalName(q.Name)

	if q.Qclass != dns.ClassINET {
		resp.Rcode = dns.RcodeRefused
		stats.refused++
		note = "Wrong class"
		t.writeMsg(wtr, query, resp, &stats)
		return
	}

	db := t.dbGetter.Acquire()
	defer t.dbGetter.Release(db)

	z := db.FindClosest(qName)
	if z == nil {
		resp.Rcode = dns.RcodeRefused
		stats.refused++
		note = "No authority"
		t.writeMsg(wtr, query, resp, &stats)
		return
	}

	contents := z.Serving()
	if contents == nil { // Bootstrapped and still waiting for a transfer
		resp.Rcode = dns.RcodeServerFailure
		stats.servFail++
		note = "Empty zone " + z.Name()
		t.writeMsg(wtr, query, resp, &stats)
		return
	}

	resp.Authoritative = true
	ans, nxDomain := contents.LookupRR(q.Qtype, qName)
	switch {
	case len(ans) > 0:
		resp.Answer = ans
		stats.answered++
	case nxDomain:
		resp.Rcode = dns.RcodeNameError
		stats.nxDomain++
	default:
		stats.noData++
	}
	if len(resp.Answer) == 0 {
		if soa := contents.SOA(); soa != nil {
			resp.Ns = append(resp.Ns, soa)
		}
	}

	t.writeMsg(wtr, query, resp, &stats)
}

// writeMsg echoes EDNS with our payload then truncates to whatever the client can accept
// over UDP.
func (t *server) writeMsg(wtr dns.ResponseWriter, query, resp *dns.Msg, stats *serverStats) {
	maxSize := dns.MinMsgSize
	if opt := query.IsEdns0(); opt != nil {
		resp.SetEdns0(t.cfg.ednsPayload, opt.Do())
		if sz := int(opt.UDPSize()); sz > maxSize {
			maxSize = min(sz, int(t.cfg.ednsPayload))
		}
	}
	if t.network == dnsutil.UDPNetwork {
		resp.Truncate(maxSize)
		if resp.Truncated {
			stats.truncated++
		}
	}

	err := wtr.WriteMsg(resp)
	if err != nil {
		log.Debugf("WriteMsg to %s failed: %s", wtr.RemoteAddr(), err)
	}
}

func (t *server) logQuery(wtr dns.ResponseWriter, query, resp *dns.Msg, note string) {
	rcodeStr := "ok"
	if resp.Rcode != dns.RcodeSuccess {
		rcodeStr = dns.RcodeToString[resp.Rcode]
	}
	qStr := "None/"
	if len(query.Question) > 0 {
		q := query.Question[0]
		qStr = fmt.Sprintf("%s/%s", dns.TypeToString[q.Qtype], q.Name)
	}
	h := "U"
	if t.network == dnsutil.TCPNetwork {
		h = "T"
	}
	if resp.Truncated {
		h += "t"
	}
	msg := fmt.Sprintf("ru=%s q=%s s=%s id=%d h=%s a=%d/%d",
		rcodeStr, qStr, wtr.RemoteAddr(), query.Id, h, len(resp.Answer), len(resp.Ns))
	if len(note) > 0 {
		msg += " " + note
	}
	log.Printf("%s\n", msg)
}
