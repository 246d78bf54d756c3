package reload

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/markdingo/autozone/database"
	"github.com/markdingo/autozone/log"
	"github.com/markdingo/autozone/zone"
)

// built is a zone inserted into the new generation along with the instance it replaces.
type built struct {
	z       *zone.Zone
	old     *zone.Zone
	outcome Outcome
}

// reloadContext is the state shared by the workers of one cycle.
type reloadContext struct {
	queue   chan *zone.Config
	live    *database.Database // Generation being replaced. Only its zone map is read
	aborted atomic.Bool

	mu       sync.Mutex // Protects all below
	db       *database.Database
	built    []built
	frozen   []*zone.Zone // Every old instance Freeze was attempted on
	outcomes map[string]Outcome
	errs     map[string]error
}

func (t *reloadContext) addFrozen(z *zone.Zone) {
	t.mu.Lock()
	t.frozen = append(t.frozen, z)
	t.mu.Unlock()
}

func (t *reloadContext) fail(cfg *zone.Config, err error) {
	log.Warningf("Zone '%s' failed to load: %s", cfg.Name, err)
	t.mu.Lock()
	t.outcomes[cfg.Name] = Failed
	t.errs[cfg.Name] = err
	t.mu.Unlock()
}

// insert adds a built zone to the new generation. A failure here is fatal to the cycle.
func (t *reloadContext) insert(b built) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.db.Insert(b.z); err != nil {
		return err
	}
	t.built = append(t.built, b)
	t.outcomes[b.z.Config().Name] = b.outcome

	return nil
}

// loadDatabase runs every configured zone through the update pipeline on a pool of
// workers and returns the populated, unpublished, new generation. A returned error is
// fatal and the caller must abort the returned context.
func (t *Coordinator) loadDatabase(ctx context.Context, cfgs []*zone.Config) (*reloadContext, error) {
	rc := &reloadContext{
		queue:    make(chan *zone.Config, len(cfgs)),
		live:     t.Getter.Current(),
		db:       database.New(),
		outcomes: make(map[string]Outcome, len(cfgs)),
		errs:     make(map[string]error),
	}
	for _, cfg := range cfgs {
		rc.queue <- cfg
	}
	close(rc.queue)

	workers := t.workers(len(cfgs))
	log.Minorf("Loading %d zones with %d workers", len(cfgs), workers)

	var g errgroup.Group
	for ix := 0; ix < workers; ix++ {
		g.Go(func() error {
			for cfg := range rc.queue {
				if rc.aborted.Load() {
					return nil
				}
				if err := t.loadOne(ctx, rc, cfg); err != nil {
					rc.aborted.Store(true)
					return err
				}
			}
			return nil
		})
	}

	return rc, g.Wait()
}

func (t *Coordinator) loadOne(ctx context.Context, rc *reloadContext, cfg *zone.Config) error {
	old := rc.live.Find(cfg.Name)
	if old != nil {
		rc.addFrozen(old)
		if err := t.freeze(ctx, old); err != nil {
			rc.fail(cfg, err)
			return nil
		}
	}

	z, outcome, err := t.update(cfg, old)
	if err != nil {
		rc.fail(cfg, err)
		return nil
	}

	if err := rc.insert(built{z: z, old: old, outcome: outcome}); err != nil {
		t.rollback(z, old, outcome == Preserved)
		return fmt.Errorf("zone '%s' insertion: %w", cfg.Name, err)
	}

	return nil
}

func (t *Coordinator) freeze(ctx context.Context, z *zone.Zone) error {
	if t.FreezeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.FreezeTimeout)
		defer cancel()
	}

	return z.Freeze(ctx)
}

// abort undoes an abandoned cycle. Carried-over contents go back to the instances they
// came from, freshly built zones are retired and the previous instances resume service.
func (t *reloadContext) abort() {
	for _, b := range t.built {
		if err := b.z.Freeze(context.Background()); err != nil {
			log.Errorf("Zone '%s' abort: %s", b.z.Name(), err)
			continue
		}
		if b.outcome == Preserved {
			if err := zone.MoveContents(b.z, b.old); err != nil {
				log.Errorf("Zone '%s' abort: %s", b.z.Name(), err)
			}
			continue
		}
		if err := b.z.Retire(); err != nil {
			log.Errorf("Zone '%s' abort: %s", b.z.Name(), err)
		}
	}
	for _, z := range t.frozen {
		z.Thaw()
	}
}
