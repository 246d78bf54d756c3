package main

import (
	"strings"
	"testing"
	"time"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/reload"
)

func TestStatsServer(t *testing.T) {
	s1 := serverStats{1, 2, 3, 4, 5, 6, 7, 8}
	s2 := s1
	s1.add(&s2)
	got := s1.String()
	exp := "q=2/4 ans=6/8/10 sf=12 ref=14 tc=16"
	if got != exp {
		t.Error("serverStats.String \nExp:", exp, "\nGot:", got)
	}
}

func TestStatsReload(t *testing.T) {
	var rs reloadStats
	rs.add(&reload.Result{
		Outcomes: map[string]reload.Outcome{
			"a.": reload.Loaded, "b.": reload.Loaded, "c.": reload.Failed,
			"d.": reload.Bootstrapped,
		},
		Duration: time.Millisecond * 3,
	})
	rs.add(&reload.Result{
		Outcomes: map[string]reload.Outcome{
			"a.": reload.Reloaded, "b.": reload.Preserved, "d.": reload.Preserved,
		},
		Reclaimed: 2,
		Duration:  time.Millisecond * 5,
	})
	rs.abandoned++

	got := rs.String()
	exp := "cycles=2/1 zones=2/1/2/1/1 reclaimed=2 last=5ms"
	if got != exp {
		t.Error("reloadStats.String \nExp:", exp, "\nGot:", got)
	}
}

func TestStatsReport(t *testing.T) {
	tz := newTestZone(t)
	tz.writeZone("example.net", 42)
	tz.writeConfig(1,
		"{name: example.net, file: example.net.zone}",
		"{name: example.org, file: missing.zone, transfer_in: [192.0.2.1]}")
	if !tz.reloadZones("test") {
		t.Fatal("Setup reload failed", tz.out.String())
	}
	srv := newServer(tz.cfg, tz.dbGetter, dnsutil.UDPNetwork, "")
	srv.stats.queries = 9
	tz.servers = append(tz.servers, srv)
	tz.startTime = time.Now()
	tz.statsTime = tz.startTime

	tz.out.Reset()
	tz.statsReport(true)
	got := tz.out.String()
	for _, s := range []string{
		"Stats: Uptime",
		"Stats: Total q=9/0",
		"Stats: Reload cycles=1/0 zones=1/0/0/1/0",
		"Stats: Zone example.net. serial=42 rrs=",
		"state=active",
		"Stats: Zone example.org. empty state=active",
	} {
		if !strings.Contains(got, s) {
			t.Error("Report does not contain", s, "\n", got)
		}
	}
	if srv.stats.queries != 0 {
		t.Error("Counters not reset", srv.stats.String())
	}
}
