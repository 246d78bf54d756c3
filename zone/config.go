package zone

import (
	"time"

	"github.com/miekg/dns"
)

// Config is the immutable per-zone configuration for one reload cycle. The engine only
// ever reads it.
type Config struct {
	Name        string        // Canonical FQDN
	File        string        // Zone file path
	TransferIn  []string      // Allowed transfer-in sources as host:port
	SyncTimeout time.Duration // Delay before journal changes are flushed. Negative means never.
}

// NewConfig returns a Config with a canonical Name.
func NewConfig(name, file string, transferIn ...string) *Config {
	return &Config{Name: dns.CanonicalName(name), File: file, TransferIn: transferIn}
}

// CanBootstrap returns true if the zone could be populated by a transfer when its file is
// missing.
func (t *Config) CanBootstrap() bool {
	return len(t.TransferIn) > 0
}
