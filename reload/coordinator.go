package reload

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/metrics"
	"github.com/markdingo/autozone/zone"
)

const DefaultFreezeTimeout = 30 * time.Second

// Outcome is what became of one configured zone in a reload cycle.
type Outcome int

const (
	Failed       Outcome = iota // Left out of the new generation
	Bootstrapped                // Empty, awaiting a transfer
	Loaded                      // Parsed from a file not previously served
	Reloaded                    // Parsed from a file which changed
	Preserved                   // Contents carried over unchanged
)

func (t Outcome) String() string {
	switch t {
	case Failed:
		return "failed"
	case Bootstrapped:
		return "bootstrapped"
	case Loaded:
		return "loaded"
	case Reloaded:
		return "reloaded"
	case Preserved:
		return "preserved"
	}

	return "unknown"
}

// Result reports a completed reload cycle.
type Result struct {
	Configured int
	Loaded     int                // Zones in the new generation
	Outcomes   map[string]Outcome // Exactly one per configured zone
	Errors     map[string]error   // Cause of each Failed outcome

	// Retired is the previous generation after reclamation. It holds only the zones which
	// are no longer served, because they are no longer configured or failed in this cycle,
	// all of them retired. It is nil if the grace period outlived the context, in which
	// case reclamation completes in the background.
	Retired   *database.Database
	Reclaimed int // Previous-generation zones retired
	Duration  time.Duration
}

// Coordinator runs reload cycles against a Getter. Fields may be changed between cycles
// but not during one. Construct with NewCoordinator.
type Coordinator struct {
	Getter    *database.Getter
	Server    zone.Server // Handed to every zone. May be nil
	Parser    Parser
	Signer    Signer
	Journal   Journal
	Scheduler Scheduler
	Metrics   *metrics.Collector // May be nil

	Workers       int           // Zero means runtime.GOMAXPROCS(0)
	FreezeTimeout time.Duration // Bound on waiting for a zone's in-flight operations. Zero waits indefinitely
}

// NewCoordinator returns a Coordinator with file parsing and no-op signing and journal.
func NewCoordinator(getter *database.Getter, server zone.Server) *Coordinator {
	return &Coordinator{
		Getter:        getter,
		Server:        server,
		Parser:        &zone.FileParser{AllowInclude: true},
		Signer:        NopSigner{},
		Journal:       NopJournal{},
		Scheduler:     &TimerScheduler{},
		FreezeTimeout: DefaultFreezeTimeout,
	}
}

// Reload builds a new generation from cfgs, publishes it and reclaims the previous
// generation. Cycles must not overlap. ctx bounds waiting on zone freezes and the grace
// period, it does not interrupt zone construction. An error return means nothing was
// published and the previous generation is still served unchanged.
func (t *Coordinator) Reload(ctx context.Context, cfgs []*zone.Config) (*Result, error) {
	start := time.Now()
	if t.Getter == nil {
		return nil, ErrNoDatabase
	}
	if err := checkDuplicates(cfgs); err != nil {
		t.Metrics.ReloadCompleted(len(cfgs), 0, true, time.Since(start))
		return nil, err
	}

	rc, err := t.loadDatabase(ctx, cfgs)
	if err != nil {
		rc.abort()
		log.Errorf("Reload abandoned: %s", err)
		t.Metrics.ReloadCompleted(len(cfgs), 0, true, time.Since(start))
		return nil, err
	}

	res := &Result{Configured: len(cfgs), Loaded: rc.db.Len(), Outcomes: rc.outcomes,
		Errors: rc.errs}
	log.Majorf("Loaded %d out of %d zones", res.Loaded, res.Configured)
	if res.Loaded != res.Configured {
		log.Warningf("Not all the zones were loaded")
	}

	res.Retired, res.Reclaimed = t.swap(ctx, rc)
	res.Duration = time.Since(start)

	for _, o := range res.Outcomes {
		t.Metrics.ZoneOutcome(o.String())
	}
	for _, z := range rc.db.Zones() {
		t.Metrics.ZoneSerial(z.Name(), z.Serial())
	}
	t.Metrics.ReloadCompleted(res.Configured, res.Loaded, false, res.Duration)

	return res, nil
}

func checkDuplicates(cfgs []*zone.Config) error {
	seen := make(map[string]struct{}, len(cfgs))
	for _, cfg := range cfgs {
		name := dns.CanonicalName(cfg.Name)
		if _, ok := seen[name]; ok {
			return fmt.Errorf("configured twice %s: %w", name, database.ErrDuplicate)
		}
		seen[name] = struct{}{}
	}

	return nil
}

func (t *Coordinator) workers(zones int) int {
	n := t.Workers
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}

	return min(zones, n)
}
