package mock

import (
	"net"

	"github.com/miekg/dns"
)

var (
	local  = NewNetAddr("", "127.0.0.1")
	remote = NewNetAddr("", "127.0.0.2")
)

// ResponseWriter is a dns.ResponseWriter which keeps the last message written so tests can
// call ServeDNS directly.
type ResponseWriter struct {
	Remote net.Addr // Defaults to 127.0.0.2 over udp

	m *dns.Msg
}

func (t *ResponseWriter) Reset() {
	t.m = nil
}

// Get returns the last response, if any then clears the response
func (t *ResponseWriter) Get() *dns.Msg {
	m := t.m
	t.m = nil
	return m
}

func (t *ResponseWriter) LocalAddr() net.Addr {
	return local
}

func (t *ResponseWriter) RemoteAddr() net.Addr {
	if t.Remote != nil {
		return t.Remote
	}
	return remote
}

// WriteMsg packs m to make sure it would make it onto the wire.
func (t *ResponseWriter) WriteMsg(m *dns.Msg) error {
	if _, err := m.Pack(); err != nil {
		return err
	}
	t.m = m

	return nil
}

func (t *ResponseWriter) Write(b []byte) (int, error) {
	panic("Don't expect Write() to be called")
}

func (t *ResponseWriter) Close() error {
	return nil
}

func (t *ResponseWriter) TsigStatus() error {
	return nil
}

func (t *ResponseWriter) TsigTimersOnly(bool) {
}

func (t *ResponseWriter) Hijack() {
}
