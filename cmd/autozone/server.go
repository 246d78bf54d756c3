package main

import (
	"sync"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/dnsutil"
)

// server is created for each listen address and network.
type server struct {
	cfg      *config
	dbGetter *database.Getter

	network string // Listen details
	address string

	miekg *dns.Server

	statsMu sync.Mutex
	stats   serverStats
}

func newServer(cfg *config, dbGetter *database.Getter, network, address string) *server {
	t := &server{
		cfg:      cfg,
		dbGetter: dbGetter,
		network:  network,
		address:  address,
	}

	if len(t.network) == 0 {
		t.network = dnsutil.UDPNetwork
	}

	t.miekg = &dns.Server{Net: t.network, Addr: t.address, ReusePort: true, Handler: t}
	t.miekg.MsgAcceptFunc = func(dh dns.Header) dns.MsgAcceptAction {
		return t.customMsgAcceptFunc(dh)
	}

	return t
}

// startServer starts accepting DNS queries by calling dns.ListenAndServe(). It waits
// until the service has actually started prior to returning to the caller by way of
// NotifyStartedFunc.
//
// Returns error if the server fails to start or nil.
func (t *autoZone) startServer(srv *server) error {
	t.wg.Add(1)

	hasStarted := make(chan error)
	srv.miekg.NotifyStartedFunc = func() {
		hasStarted <- nil
	}

	go func() {
		err := srv.miekg.ListenAndServe()
		t.wg.Done()
		if err != nil {
			hasStarted <- err
		}
		close(hasStarted)
	}()

	return <-hasStarted
}

func (t *server) stop() {
	t.miekg.Shutdown()
}

func (t *server) addStats(from *serverStats) {
	t.statsMu.Lock()
	t.stats.add(from)
	t.statsMu.Unlock()
}

// Called from acceptFunc from within miekg when a query fails prior to our ServeDNS()
func (t *server) addAcceptError() {
	t.statsMu.Lock()
	t.stats.badRequest++
	t.statsMu.Unlock()
}
