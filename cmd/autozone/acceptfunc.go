package main

import (
	"github.com/miekg/dns"
)

const (
	// Header.Bits
	_QR = 1 << 15 // query/response (response=1)
)

// customMsgAcceptFunc is miekg's default accept function with rejections counted. Only
// plain queries are accepted as there is no NOTIFY or UPDATE processing.
func (t *server) customMsgAcceptFunc(dh dns.Header) dns.MsgAcceptAction {
	if isResponse := dh.Bits&_QR != 0; isResponse {
		t.addAcceptError()
		return dns.MsgIgnore
	}

	opcode := int(dh.Bits>>11) & 0xF
	if opcode != dns.OpcodeQuery {
		t.addAcceptError()
		return dns.MsgRejectNotImplemented
	}

	if dh.Qdcount != 1 || dh.Ancount > 0 || dh.Nscount > 0 {
		t.addAcceptError()
		return dns.MsgReject
	}
	if dh.Arcount > 2 { // OPT and TSIG at most
		t.addAcceptError()
		return dns.MsgReject
	}

	return dns.MsgAccept
}
