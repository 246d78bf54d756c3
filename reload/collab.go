package reload

import (
	"time"

	"github.com/markdingo/autozone/dnsutil"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/zone"
)

// Parser turns a zone file into Contents. The apex of the result is whatever the file
// declares and is checked against the configured name by the caller.
type Parser interface {
	Parse(path, origin string) (*zone.Contents, error)
}

// Signer computes the difference against the previous contents and (re)signs the zone.
// contentChanged is false when the contents were carried over unchanged. Carried-over
// contents are still being read through the previous generation, so an implementation
// must not modify them in place. It builds a modified copy and gives that to the zone.
type Signer interface {
	SignAndDiff(z *zone.Zone, contentChanged bool) error
}

// Journal replays changes received by incremental transfer since the zone file was last
// written. It returns ErrNoPendingData when there is nothing to replay. As with Signer,
// contents carried over from the previous instance may still be in use by readers and are
// copied before any change is applied.
type Journal interface {
	Apply(z *zone.Zone) error
}

// Scheduler arranges for the journal of a newly built zone to be flushed.
type Scheduler interface {
	ScheduleSync(z *zone.Zone, timeout time.Duration)
}

// NopSigner leaves zones unsigned.
type NopSigner struct{}

func (NopSigner) SignAndDiff(*zone.Zone, bool) error {
	return nil
}

// NopJournal never has anything to replay.
type NopJournal struct{}

func (NopJournal) Apply(*zone.Zone) error {
	return ErrNoPendingData
}

// TimerScheduler arms each zone's own sync timer. Sync runs when it fires, or a debug
// log line if Sync is nil.
type TimerScheduler struct {
	Sync func(*zone.Zone)
}

func (t *TimerScheduler) ScheduleSync(z *zone.Zone, timeout time.Duration) {
	fn := t.Sync
	if fn == nil {
		fn = func(z *zone.Zone) {
			log.Debugf("Zone '%s' journal sync (serial %d)",
				dnsutil.ChompCanonicalName(z.Name()), z.Serial())
		}
	}
	z.ScheduleSync(timeout, fn)
}
