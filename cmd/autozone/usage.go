package main

import (
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/markdingo/autozone/log"
)

type parseResult int // This is a ternary variable
const (
	parseStop     parseResult = iota // No error, but don't continue
	parseContinue                    // No errors and continue
	parseFailed                      // Errors, do not continue
)

// parseOptions populates t.cfg from the command line. Duplicate options are rejected
// unless they are legitimately repeatable as neither "flag" nor pflag detects them.
func (t *autoZone) parseOptions(args []string) parseResult {
	var helpFlag, versionFlag bool

	name := programName
	if len(args) > 0 {
		name = args[0]
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Consider '-h' for command-line usage")
	}

	fs.SetOutput(log.Out())

	// Non-config flags

	fs.BoolVarP(&helpFlag, "help", "h", false, "Print command-line usage")
	fs.BoolVarP(&versionFlag, "version", "v", false, "Print version and origin URL")

	// config flags

	fs.BoolVar(&t.cfg.logMajorFlag, "log-major", t.cfg.logMajorFlag, "Log major events to Stdout")
	fs.BoolVar(&t.cfg.logMinorFlag, "log-minor", false,
		"Log minor events to Stdout - this implies --log-major")
	fs.BoolVar(&t.cfg.logDebugFlag, "log-debug", false,
		"Log debug events to Stdout - this implies --log-minor")
	fs.BoolVar(&t.cfg.logQueriesFlag, "log-queries", false,
		`Log DNS queries to Stdout. This setting can be toggled with
SIGUSR2.`)
	fs.BoolVar(&t.cfg.watchFlag, "watch", t.cfg.watchFlag,
		`Watch the configuration file and zone files for changes and
reload shortly after they are modified.`)

	// config Durations

	fs.DurationVar(&t.cfg.freezeTimeout, "freeze-timeout", t.cfg.freezeTimeout,
		`Maximum time to wait for in-flight operations on a zone before
it is rebuilt. A zone which cannot be frozen in time fails to
reload. Zero waits indefinitely.`)
	fs.DurationVar(&t.cfg.reloadInterval, "reload-interval", t.cfg.reloadInterval,
		"Interval between checks for modified zone files (0 disables)")
	fs.DurationVar(&t.cfg.reportInterval, "report", t.cfg.reportInterval,
		"Interval between statistics reports (>= 1s or 0 to disable)")

	// config ints

	fs.Uint16Var(&t.cfg.ednsPayload, "edns-payload", t.cfg.ednsPayload,
		`Maximum EDNS UDP payload advertised in responses. Signed zones
warn if this is below the DNSSEC minimum.`)
	fs.IntVar(&t.cfg.workers, "workers", 0,
		"Zone loader threads (default GOMAXPROCS)")

	// config StringVars

	fs.StringVarP(&t.cfg.configFile, "config", "c", "",
		`YAML file listing the zones to serve.
`)
	fs.StringVar(&t.cfg.metricsListen, "metrics-listen", "",
		`Address to serve Prometheus metrics on at /metrics.
`)

	// config String Arrays

	fs.StringArrayVar(&t.cfg.listen, "listen", []string{},
		`Address to listen on for DNS queries - accepts 'host:port',
':port', ':service', v4address:port or [v6address]:port syntax.
The default is ':domain'.
`)

	dupes := make(map[string]bool) // True means dupes are ok

	dupes["help"] = true
	dupes["version"] = true
	dupes["listen"] = true

	fs.SetInterspersed(false)
	err := fs.ParseAll(args[1:],
		func(f *flag.Flag, v string) error {
			if tf, ok := dupes[f.Name]; ok {
				if tf {
					return fs.Set(f.Name, v)
				}
				return fmt.Errorf("Duplicate option '--%v %v' not allowed",
					f.Name, v)
			}
			dupes[f.Name] = false
			return fs.Set(f.Name, v)
		})

	if err != nil {
		fmt.Fprintln(log.Out(), "Error:", err.Error())
		return parseFailed
	}

	if helpFlag {
		printUsage(fs)
		fmt.Fprintln(log.Out())
		t.cfg.printVersion()
		return parseStop
	}

	if versionFlag {
		t.cfg.printVersion()
		return parseStop
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(log.Out(), "Error: Unexpected goop on command line: '%s'\n",
			strings.Join(fs.Args(), " "))
		return parseFailed
	}

	return parseContinue
}

func printUsage(fs *flag.FlagSet) {
	o := log.Out()
	fmt.Fprintln(o, "NAME")
	fmt.Fprintln(o, " ", programName, "-- an authoritative DNS server with hitless zone reloads")
	fmt.Fprintln(o)
	fmt.Fprintln(o, "SYNOPSIS")
	fmt.Fprintln(o, "     autozone -h | --help | -v | --version")
	fmt.Fprintln(o, "     autozone --config zones.yaml")
	fmt.Fprintln(o, `              [--listen listen-address]… [--metrics-listen address]
              [--edns-payload size=1232] [--workers count]
              [--freeze-timeout time.Duration=30s]
              [--reload-interval time.Duration=10m] [--watch=true]
              [--log-major=true] [--log-minor] [--log-debug]
              [--log-queries] [--report time.Duration=1h]`)
	fmt.Fprint(o, `
DESCRIPTION
     autozone serves the zones listed in a YAML configuration file. Whenever
     the configuration or a zone file changes, a new generation of the zone
     database is built in parallel and swapped in while queries continue to
     be answered from the previous generation. Unchanged zones carry their
     contents over without being parsed again. A zone which cannot be loaded
     is left out of the new generation and the rest of the zones are served.

     A zone whose file is missing but which lists transfer_in sources is
     served empty until a transfer populates it.
`)
	fmt.Fprintln(o)
	fmt.Fprintln(o, "OPTIONS")
	op := fs.Output()
	fs.SetOutput(o)
	fs.PrintDefaults()
	fs.SetOutput(op)

	fmt.Fprint(o, `
SIGNALS
  SIGHUP  - reload the configuration and all modified zones
  SIGTERM - initiate shutdown
  SIGINT  - initiate shutdown
  SIGUSR1 - generates an immediate stats report
  SIGUSR2 - toggles --log-queries
`)
}
