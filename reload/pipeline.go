package reload

import (
	"context"
	"errors"
	"fmt"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/zone"
)

// update runs one configured zone through classification, construction and the update
// pipeline. old is the frozen instance currently served or nil. On error nothing needs
// undoing by the caller: carried-over contents are back in old and anything freshly
// parsed has been released.
func (t *Coordinator) update(cfg *zone.Config, old *zone.Zone) (*zone.Zone, Outcome, error) {
	status := Classify(old, cfg.File)
	log.Debugf("Zone '%s' status %s", cfg.Name, status)

	z, err := t.build(cfg, old, status)
	if err != nil {
		return nil, Failed, err
	}

	if err := t.pipeline(z, status != Current); err != nil {
		t.rollback(z, old, status == Current)
		return nil, Failed, err
	}
	logZoneLoad(z, status)

	switch status {
	case NotFound:
		return z, Bootstrapped, nil
	case New:
		return z, Loaded, nil
	case Updated:
		return z, Reloaded, nil
	}

	return z, Preserved, nil
}

func (t *Coordinator) pipeline(z *zone.Zone, contentChanged bool) error {
	if err := t.Journal.Apply(z); err != nil && !errors.Is(err, ErrNoPendingData) {
		return fmt.Errorf("journal replay: %w", err)
	}

	if err := t.Signer.SignAndDiff(z, contentChanged); err != nil {
		return fmt.Errorf("signing: %w", err)
	}

	if c := z.Contents(); c != nil {
		if err := c.LoadNSEC3Param(); err != nil {
			return err
		}
		if c.IsSigned() && z.Server() != nil {
			if payload := z.Server().EDNSPayload(); payload < dnsutil.MinDNSSECPayload {
				log.Warningf("EDNS payload size %d is lower than %d required for DNSSEC zone '%s'",
					payload, dnsutil.MinDNSSECPayload, dnsutil.ChompCanonicalName(z.Name()))
			}
		}
	}

	t.Scheduler.ScheduleSync(z, z.Config().SyncTimeout)

	return nil
}

// rollback undoes build for a zone which did not make it into the new generation.
func (t *Coordinator) rollback(z, old *zone.Zone, preserved bool) {
	if err := z.Freeze(context.Background()); err != nil { // Unpublished so only its own timer
		log.Errorf("Zone '%s' rollback: %s", z.Name(), err)
		return
	}
	if preserved {
		if err := zone.MoveContents(z, old); err != nil {
			log.Errorf("Zone '%s' rollback: %s", z.Name(), err)
		}
		return
	}
	if err := z.Retire(); err != nil {
		log.Errorf("Zone '%s' rollback: %s", z.Name(), err)
	}
}
