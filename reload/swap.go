package reload

import (
	"context"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/zone"
)

// swap publishes the new generation and reclaims the previous one once no reader holds
// it. It returns the previous generation pruned down to the zones which are no longer
// configured, and the number of zones retired.
func (t *Coordinator) swap(ctx context.Context, rc *reloadContext) (*database.Database, int) {
	rc.db.BuildIndex()
	old := t.Getter.Replace(rc.db)
	log.Debugf("Published %d zones, previous generation had %d", rc.db.Len(), old.Len())

	if err := t.Getter.Synchronize(ctx, old); err != nil {
		log.Warningf("Grace period outlived reload (%d readers): %s. Reclaiming in background",
			t.Getter.Readers(old), err)
		go func() {
			if t.Getter.Synchronize(context.Background(), old) == nil {
				t.Metrics.Reclaimed(t.reclaim(context.Background(), old, rc.db))
			}
		}()
		return nil, 0
	}

	n := t.reclaim(ctx, old, rc.db)
	t.Metrics.Reclaimed(n)

	return old, n
}

// reclaim retires every zone of old which did not carry over into newDB. No reader can
// reach old so its zone map is ours to modify.
func (t *Coordinator) reclaim(ctx context.Context, old, newDB *database.Database) int {
	for _, z := range newDB.Zones() { // Instances shared by both generations stay alive
		if old.Find(z.Name()) == z {
			old.Delete(z.Name())
		}
	}

	var n int
	for _, z := range old.Zones() {
		if err := t.freeze(ctx, z); err != nil {
			log.Warningf("Zone '%s' retirement deferred: %s", z.Name(), err)
			go retireWhenIdle(z)
		} else if err := z.Retire(); err != nil {
			log.Errorf("Zone '%s' retirement: %s", z.Name(), err)
		}
		n++

		if newDB.Find(z.Name()) != nil {
			old.Delete(z.Name()) // Superseded
		} else {
			log.Minorf("Zone '%s' removed", z.Name())
			t.Metrics.ZoneRemoved(z.Name())
		}
	}

	return n
}

func retireWhenIdle(z *zone.Zone) {
	if err := z.Freeze(context.Background()); err != nil {
		log.Errorf("Zone '%s' retirement: %s", z.Name(), err)
		return
	}
	if err := z.Retire(); err != nil {
		log.Errorf("Zone '%s' retirement: %s", z.Name(), err)
	}
}
