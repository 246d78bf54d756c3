package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/osutil"
	"github.com/markdingo/autozone/pregen"
)

// Run the server loop checking for signals and stats reports events
func (t *autoZone) Run() {
	t.startTime = time.Now()
	t.statsTime = t.startTime

	var signal os.Signal
	osutil.SignalNotify(t.sig) // Register interest in signals

	if t.watcher != nil {
		go t.watcher.run(t.done)
	}
	go t.watchForReloads(t.cfg.reloadInterval)

	fmt.Fprintln(log.Out(), programName, pregen.Version, "Ready")

	// Conditionally create the periodic report channel. Fortunately select purposely
	// doesn't mind a nil channel, which is very convenient.
	var reportChannel <-chan time.Time
	if t.cfg.reportInterval > 0 {
		reportTicker := time.NewTicker(t.cfg.reportInterval)
		reportChannel = reportTicker.C
		defer reportTicker.Stop()
	}

	stopFlag := false
	for !stopFlag {
		select {
		case <-reportChannel:
			t.statsReport(true)

		case signal = <-t.sig:
			switch {
			case osutil.IsSignalTERM(signal), osutil.IsSignalINT(signal):
				stopFlag = true

			case osutil.IsSignalUSR1(signal): // USR1 produces a status report
				t.statsReport(false)

			case osutil.IsSignalUSR2(signal): // USR2 toggles --log-queries
				v := !t.cfg.logQueries.Load()
				t.cfg.logQueries.Store(v)
				log.Majorf("--log-queries=%t", v)

			case osutil.IsSignalHUP(signal):
				log.Major("SIGHUP reload initiated")
				t.forceReload <- struct{}{}

			default:
				log.Majorf("Signal '%s' reserved for future use", signal)
			}
		}
	}

	log.Majorf("Signal '%s' initiates shutdown", signal)
	close(t.done) // Tell companion go-routines
	if t.watcher != nil {
		t.watcher.close()
	}
	t.stopMetrics()
	t.stopServers() // Tell servers and wait until they exit
	log.Minor("All Listen servers stopped")
	t.retireAll()
}

// watchForReloads is the only go-routine which initiates reloads after start-up. It
// reacts to SIGHUP, settled file system events and the periodic modification check.
func (t *autoZone) watchForReloads(interval time.Duration) {
	var tick <-chan time.Time
	if interval > 0 {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	var changed <-chan string
	if t.watcher != nil {
		changed = t.watcher.Changed()
	}

	for {
		select {
		case <-t.Done():
			return

		case <-t.forceReload:
			t.reloadZones("SIGHUP")

		case name := <-changed:
			t.reloadZones("changed " + filepath.Base(name))

		case <-tick:
			if why := t.checkForReload(); len(why) > 0 {
				t.reloadZones(why)
			}
		}
	}
}
