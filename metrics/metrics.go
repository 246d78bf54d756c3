// Package metrics exposes reload engine activity to Prometheus. All methods are safe to
// call on a nil *Collector so callers need not care whether metrics are enabled.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markdingo/autozone/dnsutil"
)

const namespace = "autozone"

// Collector owns a private registry so tests and multiple instances do not collide on
// the global default registry.
type Collector struct {
	registry *prometheus.Registry

	reloads         *prometheus.CounterVec
	zoneOutcomes    *prometheus.CounterVec
	zonesConfigured prometheus.Gauge
	zonesLoaded     prometheus.Gauge
	zoneSerial      *prometheus.GaugeVec
	reloadDuration  prometheus.Histogram
	reclaimed       prometheus.Counter
}

func NewCollector() *Collector {
	t := &Collector{
		registry: prometheus.NewRegistry(),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reloads_total",
				Help:      "Reload cycles by result (ok, partial, failed)",
			},
			[]string{"result"},
		),
		zoneOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "zone_outcomes_total",
				Help:      "Per-zone reload outcomes",
			},
			[]string{"outcome"},
		),
		zonesConfigured: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "zones_configured",
				Help:      "Zones configured in the most recent reload",
			},
		),
		zonesLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "zones_loaded",
				Help:      "Zones published by the most recent reload",
			},
		),
		zoneSerial: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "zone_serial",
				Help:      "SOA serial of each served zone",
			},
			[]string{"zone"},
		),
		reloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reload_duration_seconds",
				Help:      "Wall time of reload cycles including the grace period",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 30},
			},
		),
		reclaimed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "zones_reclaimed_total",
				Help:      "Previous-generation zones retired after the grace period",
			},
		),
	}

	t.registry.MustRegister(t.reloads, t.zoneOutcomes, t.zonesConfigured, t.zonesLoaded,
		t.zoneSerial, t.reloadDuration, t.reclaimed)

	return t
}

// Registry returns the private registry, mostly for tests.
func (t *Collector) Registry() *prometheus.Registry {
	if t == nil {
		return nil
	}

	return t.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (t *Collector) Handler() http.Handler {
	if t == nil {
		return http.NotFoundHandler()
	}

	return promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{})
}

// ReloadCompleted records the aggregate result of one reload cycle. A cycle which
// aborted has fatal set and leaves the zone gauges untouched.
func (t *Collector) ReloadCompleted(configured, loaded int, fatal bool, d time.Duration) {
	if t == nil {
		return
	}
	t.reloadDuration.Observe(d.Seconds())
	switch {
	case fatal:
		t.reloads.WithLabelValues("failed").Inc()
		return
	case loaded < configured:
		t.reloads.WithLabelValues("partial").Inc()
	default:
		t.reloads.WithLabelValues("ok").Inc()
	}
	t.zonesConfigured.Set(float64(configured))
	t.zonesLoaded.Set(float64(loaded))
}

func (t *Collector) ZoneOutcome(outcome string) {
	if t == nil {
		return
	}
	t.zoneOutcomes.WithLabelValues(outcome).Inc()
}

func (t *Collector) ZoneSerial(name string, serial uint32) {
	if t == nil {
		return
	}
	t.zoneSerial.WithLabelValues(dnsutil.ChompCanonicalName(name)).Set(float64(serial))
}

// ZoneRemoved drops the per-zone series of a zone which is no longer served.
func (t *Collector) ZoneRemoved(name string) {
	if t == nil {
		return
	}
	t.zoneSerial.DeleteLabelValues(dnsutil.ChompCanonicalName(name))
}

func (t *Collector) Reclaimed(n int) {
	if t == nil {
		return
	}
	t.reclaimed.Add(float64(n))
}
