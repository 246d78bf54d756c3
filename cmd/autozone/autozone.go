package main

import (
	"errors"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/metrics"
	"github.com/markdingo/autozone/reload"
	"github.com/markdingo/autozone/zone"
)

// The autoZone container exists so that most of the "main" functionality can be
// delegated to support functions and help keep the flow of main() nice and clean.
type autoZone struct {
	cfg *config

	done        chan struct{} // All collaborative go-routines should monitor - see Done()
	forceReload chan struct{} // Tell the reloader to reload now
	sig         chan os.Signal

	dbGetter    *database.Getter
	coordinator *reload.Coordinator
	metrics     *metrics.Collector
	httpServer  *http.Server // Only set with --metrics-listen

	wg      sync.WaitGroup // For all servers started
	servers []*server

	startTime time.Time
	statsTime time.Time // Last time stats were reset

	watcher *watcher // Only set with --watch

	reloadMu   sync.Mutex // Serializes reload cycles and protects the following
	zoneCfgs   []*zone.Config
	cfgModTime time.Time
	failed     map[string]time.Time // Zone file modification times which last failed to load
	reloads    reloadStats
}

func newAutoZone(cfg *config) *autoZone {
	t := &autoZone{
		cfg:         cfg,
		done:        make(chan struct{}),
		forceReload: make(chan struct{}),
		sig:         make(chan os.Signal, 1),
		dbGetter:    database.NewGetter(),
		metrics:     metrics.NewCollector(),
		failed:      make(map[string]time.Time),
	}
	if t.cfg == nil {
		t.cfg = newConfig()
	}
	t.coordinator = reload.NewCoordinator(t.dbGetter, t)
	t.coordinator.Metrics = t.metrics

	return t
}

// applyConfig transfers command line settings into the reload coordinator. Called once
// options are parsed and validated.
func (t *autoZone) applyConfig() {
	t.coordinator.Workers = t.cfg.workers
	t.coordinator.FreezeTimeout = t.cfg.freezeTimeout
}

// EDNSPayload is what every zone is told its server advertises.
func (t *autoZone) EDNSPayload() uint16 {
	return t.cfg.ednsPayload
}

// Done is the go idiomatic way to tell collaborative go-routines to exit. All such
// go-routines should include a "case <-autozone.Done(): return" in their select loop.
func (t *autoZone) Done() <-chan struct{} {
	return t.done
}

// Open Listen sockets and start servers. Does not return until all servers have started
// or an error is detected.
func (t *autoZone) startServers() {
	for _, network := range []string{dnsutil.UDPNetwork, dnsutil.TCPNetwork} {
		for _, addr := range t.cfg.listen {
			srv := newServer(t.cfg, t.dbGetter, network, addr)
			err := t.startServer(srv)
			if err != nil {
				fatal(err)
			}
			t.servers = append(t.servers, srv)
			log.Major("Listen on: ", srv.network, " ", srv.address)
		}
	}
}

// Stop all servers and only return when they have all exited
func (t *autoZone) stopServers() {
	for _, srv := range t.servers {
		srv.stop()
	}
	t.wg.Wait()
}

// startMetrics serves the Prometheus registry. Listen errors are fatal here, serve
// errors after that are merely logged.
func (t *autoZone) startMetrics() {
	if len(t.cfg.metricsListen) == 0 {
		return
	}
	ln, err := net.Listen(dnsutil.TCPNetwork, t.cfg.metricsListen)
	if err != nil {
		fatal(err, "--metrics-listen")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", t.metrics.Handler())
	t.httpServer = &http.Server{Handler: mux, ReadHeaderTimeout: time.Second * 10}
	log.Major("Metrics on: ", ln.Addr().String())

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		err := t.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("Metrics server: %s", err)
		}
	}()
}

func (t *autoZone) stopMetrics() {
	if t.httpServer != nil {
		t.httpServer.Close()
	}
}
