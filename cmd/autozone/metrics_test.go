package main

import (
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestMetricsEndpoint(t *testing.T) {
	tz := newTestZone(t)
	tz.writeZone("example.net", 7)
	tz.writeConfig(1, "{name: example.net, file: example.net.zone}")
	if !tz.reloadZones("test") {
		t.Fatal("Reload failed", tz.out.String())
	}

	tz.cfg.metricsListen = "127.0.0.1:0"
	tz.startMetrics()
	defer func() {
		tz.stopMetrics()
		tz.wg.Wait()
	}()

	got := tz.out.String()
	ix := strings.Index(got, "Metrics on: ")
	if ix < 0 {
		t.Fatal("Metrics listen not logged", got)
	}
	addr := strings.Fields(got[ix+len("Metrics on: "):])[0]

	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	for _, s := range []string{
		`autozone_reloads_total{result="ok"} 1`,
		`autozone_zone_serial{zone="example.net"} 7`,
	} {
		if !strings.Contains(string(body), s) {
			t.Error("Metrics do not contain", s, "\n", string(body))
		}
	}
}
