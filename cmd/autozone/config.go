package main

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/pregen"
	"github.com/markdingo/autozone/reload"
)

const (
	programName = "autozone"

	// Uppercase HTTPS implies BuildInfo was empty.
	defaultProjectURL = "HTTPS://github.com/markdingo/autozone"

	defaultService = "domain"
	defaultListen  = ":" + defaultService

	defaultReloadInterval = time.Minute * 10 // How often zone files are polled for changes
	defaultReportInterval = time.Hour
	defaultWatchDelay     = time.Second      // Quiet period after a file event before reloading
	defaultGracePeriod    = time.Second * 30 // Bound on waiting for readers of a replaced generation
	minEDNSPayload        = 512
)

// config defines the global configuration settings used by autozone. Once parsed it is
// never changed as it is shared amongst go-routines without lock protection.
type config struct {
	projectURL string

	configFile    string   // YAML zone list
	listen        []string // All addresses to listen on
	metricsListen string   // Prometheus endpoint. Empty means none

	ednsPayload    uint16
	workers        int
	freezeTimeout  time.Duration
	reloadInterval time.Duration // Zero disables polling
	reportInterval time.Duration // Zero disables periodic stats
	watchDelay     time.Duration

	watchFlag      bool
	logMajorFlag   bool
	logMinorFlag   bool
	logDebugFlag   bool
	logQueriesFlag bool

	logQueries atomic.Bool // Live copy of logQueriesFlag, toggled by SIGUSR2
}

func newConfig() *config {
	t := &config{
		projectURL:     defaultProjectURL,
		ednsPayload:    dnsutil.MaxUDPSize,
		freezeTimeout:  reload.DefaultFreezeTimeout,
		reloadInterval: defaultReloadInterval,
		reportInterval: defaultReportInterval,
		watchDelay:     defaultWatchDelay,
		watchFlag:      true,
		logMajorFlag:   true,
	}
	info, ok := debug.ReadBuildInfo()
	if ok && len(info.Main.Path) > 0 {
		t.projectURL = info.Main.Path
	}

	return t
}

func (t *config) printVersion() {
	fmt.Fprintf(log.Out(), "Program:     %s %s (%s)\n",
		programName, pregen.Version, pregen.ReleaseDate)
	fmt.Fprintf(log.Out(), "Project:     %s\n", t.projectURL)
}
