package main

import (
	"fmt"
	"net"
	"path/filepath"
	"time"
)

// Check everything that could likely be a typo or usage error. Mostly check in order
// presented by the flag package.
func (t *autoZone) ValidateCommandLineOptions() error {
	if len(t.cfg.configFile) == 0 {
		return fmt.Errorf("Must supply --config")
	}
	abs, err := filepath.Abs(t.cfg.configFile) // Survives a later chdir
	if err != nil {
		return fmt.Errorf("--config %s: %w", t.cfg.configFile, err)
	}
	t.cfg.configFile = abs

	if t.cfg.freezeTimeout < 0 {
		return fmt.Errorf("--freeze-timeout cannot be negative")
	}
	if t.cfg.reloadInterval < 0 {
		return fmt.Errorf("--reload-interval cannot be negative")
	}
	if t.cfg.reportInterval != 0 && t.cfg.reportInterval < time.Second {
		return fmt.Errorf("--report must be zero or at least 1 second")
	}
	if t.cfg.ednsPayload < minEDNSPayload {
		return fmt.Errorf("--edns-payload must be at least %d", minEDNSPayload)
	}
	if t.cfg.workers < 0 {
		return fmt.Errorf("--workers cannot be negative")
	}

	if len(t.cfg.listen) == 0 {
		t.cfg.listen = append(t.cfg.listen, defaultListen)
	} else {
		for ix, addr := range t.cfg.listen {
			t.cfg.listen[ix] = normalizeHostPort(addr, defaultService)
		}
	}

	if len(t.cfg.metricsListen) > 0 {
		if _, _, err := net.SplitHostPort(t.cfg.metricsListen); err != nil {
			return fmt.Errorf("--metrics-listen %s: %w", t.cfg.metricsListen, err)
		}
	}

	return nil
}

// normalizeHostPort appends the service to a naked address.
func normalizeHostPort(addr, service string) string {
	ip := net.ParseIP(addr)
	if ip != nil { // naked IP?
		return net.JoinHostPort(addr, service)
	}
	_, _, err := net.SplitHostPort(addr)
	if err != nil {
		return net.JoinHostPort(addr, service)
	}

	return addr
}
