package main

import (
	"os"
	"time"

	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/pregen"
)

func fatal(err error, messages ...string) {
	msg := ""
	for _, m := range messages {
		msg += m + ": "
	}
	if err != nil {
		msg += err.Error()
	}
	log.Errorf("Fatal: %s", msg)
	os.Exit(1)
}

func main() {
	az := newAutoZone(nil)
	switch az.parseOptions(os.Args) {
	case parseStop:
		return
	case parseFailed:
		os.Exit(1)
	case parseContinue:
	}

	// Transfer logging options to the log package

	if az.cfg.logMajorFlag {
		log.SetLevel(log.MajorLevel)
	}
	if az.cfg.logMinorFlag {
		log.SetLevel(log.MinorLevel)
	}
	if az.cfg.logDebugFlag {
		log.SetLevel(log.DebugLevel)
	}
	az.cfg.logQueries.Store(az.cfg.logQueriesFlag)

	log.Printf("%s %s Starting with Log Level: %s\n", programName, pregen.Version, log.Level())

	err := az.ValidateCommandLineOptions()
	if err != nil {
		fatal(err)
	}
	az.applyConfig()

	if az.cfg.watchFlag {
		az.watcher, err = newWatcher(az.cfg.watchDelay)
		if err != nil {
			fatal(err, "--watch")
		}
	}

	// Load before listening so the first query sees a populated database. Zones which
	// fail are left out but a missing or malformed zone list is fatal.
	if !az.reloadZones("Initial load") {
		fatal(nil, "Cannot continue without a zone list")
	}

	az.startServers() // Only returns if listens succeed
	az.startMetrics()

	az.Run()

	az.statsReport(false) // Final stats - depending on log level

	log.Printf("%s %s Exiting after %s\n", programName, pregen.Version,
		time.Since(az.startTime).Round(time.Second))
}
