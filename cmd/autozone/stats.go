package main

import (
	"fmt"
	"time"

	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/pregen"
	"github.com/markdingo/autozone/reload"
)

type serverStats struct {
	queries    int // Total queries
	badRequest int // Rejected by accept function or malformed

	answered int
	noData   int
	nxDomain int
	servFail int // Bootstrapped zones without contents
	refused  int // Outside all zones or wrong class

	truncated int
}

func (t *serverStats) add(from *serverStats) {
	t.queries += from.queries
	t.badRequest += from.badRequest
	t.answered += from.answered
	t.noData += from.noData
	t.nxDomain += from.nxDomain
	t.servFail += from.servFail
	t.refused += from.refused
	t.truncated += from.truncated
}

func (t *serverStats) String() string {
	return fmt.Sprintf("q=%d/%d ans=%d/%d/%d sf=%d ref=%d tc=%d",
		t.queries, t.badRequest, t.answered, t.noData, t.nxDomain,
		t.servFail, t.refused, t.truncated)
}

// reloadStats accumulates reload.Results. Protected by autoZone.reloadMu.
type reloadStats struct {
	cycles    int
	abandoned int // Reload returned an error so nothing was published

	failed       int // Per-zone outcomes
	bootstrapped int
	loaded       int
	reloaded     int
	preserved    int

	reclaimed int
	last      time.Duration
}

func (t *reloadStats) add(res *reload.Result) {
	t.cycles++
	for _, o := range res.Outcomes {
		switch o {
		case reload.Failed:
			t.failed++
		case reload.Bootstrapped:
			t.bootstrapped++
		case reload.Loaded:
			t.loaded++
		case reload.Reloaded:
			t.reloaded++
		case reload.Preserved:
			t.preserved++
		}
	}
	t.reclaimed += res.Reclaimed
	t.last = res.Duration
}

func (t *reloadStats) String() string {
	return fmt.Sprintf("cycles=%d/%d zones=%d/%d/%d/%d/%d reclaimed=%d last=%s",
		t.cycles, t.abandoned,
		t.loaded, t.reloaded, t.preserved, t.bootstrapped, t.failed,
		t.reclaimed, t.last.Round(time.Millisecond))
}

var zeroStats serverStats

// Writes summary stats to Stdout
func (t *autoZone) statsReport(resetCounters bool) {
	var totals serverStats
	for _, srv := range t.servers {
		srv.statsMu.Lock() // Held for the reset
		totals.add(&srv.stats)
		if resetCounters {
			srv.stats = zeroStats
		}
		srv.statsMu.Unlock()
	}

	now := time.Now()
	upDuration := now.Sub(t.startTime).Round(time.Second)
	statsDuration := now.Sub(t.statsTime).Round(time.Second)
	if resetCounters {
		t.statsTime = now
	}

	t.reloadMu.Lock()
	rs := t.reloads
	t.reloadMu.Unlock()

	log.Major("Stats: Uptime ", upDuration,
		" Stats Time: ", statsDuration, " ", pregen.Version)
	log.Major("Stats: Total ", totals.String())
	log.Major("Stats: Reload ", rs.String())

	db := t.dbGetter.Acquire()
	defer t.dbGetter.Release(db)
	for _, zs := range db.Status() {
		if zs.Empty {
			log.Majorf("Stats: Zone %s empty state=%s", zs.Name, zs.State)
			continue
		}
		log.Majorf("Stats: Zone %s serial=%d rrs=%d mtime=%s state=%s",
			zs.Name, zs.Serial, zs.Records, zs.ModTime.UTC().Format(time.RFC3339), zs.State)
	}
}
