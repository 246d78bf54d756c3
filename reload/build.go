package reload

import (
	"fmt"
	"os"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/zone"
)

// build produces the zone instance for cfg according to status. old is the instance
// currently served under the same name, frozen, or nil.
func (t *Coordinator) build(cfg *zone.Config, old *zone.Zone, status Status) (*zone.Zone, error) {
	switch status {
	case NotFound:
		return t.bootstrap(cfg)
	case New, Updated:
		return t.load(cfg)
	case Current:
		return t.preserve(cfg, old)
	}

	return nil, fmt.Errorf("unknown zone status %d", status)
}

// bootstrap creates an empty zone to be filled by a transfer from one of the configured
// sources.
func (t *Coordinator) bootstrap(cfg *zone.Config) (*zone.Zone, error) {
	if !cfg.CanBootstrap() {
		return nil, fmt.Errorf("%s: %w", cfg.File, ErrNoTransferSource)
	}
	log.Debugf("Zone '%s' will be bootstrapped from %v", cfg.Name, cfg.TransferIn)

	return zone.New(cfg, t.Server), nil
}

func (t *Coordinator) load(cfg *zone.Config) (*zone.Zone, error) {
	fi, err := os.Stat(cfg.File) // Before the parse so an edit during it looks newer next time
	if err != nil {
		return nil, err
	}

	c, err := t.Parser.Parse(cfg.File, cfg.Name)
	if err != nil {
		return nil, err
	}
	if !dnsutil.NameEqual(c.Apex(), cfg.Name) {
		c.Release()
		return nil, fmt.Errorf("%s declares %s: %w", cfg.File, c.Apex(), ErrOriginMismatch)
	}

	z := zone.New(cfg, t.Server)
	if err := z.SetContents(c, fi.ModTime()); err != nil {
		c.Release()
		return nil, err
	}
	log.Debugf("Zone '%s' parsed %d RRs from %s", cfg.Name, c.Count(), cfg.File)

	return z, nil
}

// preserve carries the unchanged contents of old into a new instance. old is left as an
// empty husk.
func (t *Coordinator) preserve(cfg *zone.Config, old *zone.Zone) (*zone.Zone, error) {
	z := zone.New(cfg, t.Server)
	if err := zone.MoveContents(old, z); err != nil {
		return nil, err
	}
	z.SetModTime(old.ModTime())

	return z, nil
}

func logZoneLoad(z *zone.Zone, status Status) {
	action := "bootstrapped"
	switch status {
	case New:
		action = "loaded"
	case Updated:
		action = "reloaded"
	case Current:
		action = "is up-to-date"
	}
	log.Minorf("Zone '%s' %s (serial %d)", dnsutil.ChompCanonicalName(z.Name()), action,
		z.Serial())
}
