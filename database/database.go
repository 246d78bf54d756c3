package database

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"

	"github.com/markdingo/autozone/zone"
)

var ErrDuplicate = errors.New("zone already present in database")

// Database is one generation of zones keyed by canonical name. Construct with New().
type Database struct {
	zones map[string]*zone.Zone
	index *node // Built by BuildIndex

	refs     atomic.Int64 // Readers holding this generation
	retired  atomic.Bool  // Replaced by a newer generation
	idle     chan struct{}
	idleOnce sync.Once
}

func New() *Database {
	return &Database{zones: make(map[string]*zone.Zone), idle: make(chan struct{})}
}

// Insert adds the zone. It fails if a zone of the same name is already present.
func (t *Database) Insert(z *zone.Zone) error {
	name := dns.CanonicalName(z.Name())
	if _, ok := t.zones[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrDuplicate)
	}
	t.zones[name] = z

	return nil
}

// Find returns the zone with exactly this name, or nil.
func (t *Database) Find(name string) *zone.Zone {
	return t.zones[dns.CanonicalName(name)]
}

// Delete removes the named zone if present. The index is not modified.
func (t *Database) Delete(name string) {
	delete(t.zones, dns.CanonicalName(name))
}

func (t *Database) Len() int {
	return len(t.zones)
}

// Zones returns all zones in canonical name order.
func (t *Database) Zones() []*zone.Zone {
	names := make([]string, 0, len(t.zones))
	for name := range t.zones {
		names = append(names, name)
	}
	sort.Strings(names)

	ret := make([]*zone.Zone, 0, len(names))
	for _, name := range names {
		ret = append(ret, t.zones[name])
	}

	return ret
}

// ZoneStatus is the change-detection metadata of one zone.
type ZoneStatus struct {
	Name    string
	Serial  uint32
	ModTime time.Time
	State   zone.State
	Records int
	Empty   bool // Bootstrapped and awaiting a transfer
}

// Status returns the metadata of all zones in name order. It describes what each zone is
// serving, which during a reload may be contents already carried over to a successor.
func (t *Database) Status() []ZoneStatus {
	var ret []ZoneStatus
	for _, z := range t.Zones() {
		zs := ZoneStatus{Name: z.Name(), ModTime: z.ModTime(), State: z.State()}
		if c := z.Serving(); c != nil {
			zs.Serial = c.Serial()
			zs.Records = c.Count()
		} else {
			zs.Empty = true
		}
		ret = append(ret, zs)
	}

	return ret
}

// Release ends a read started by Getter.Acquire.
func (t *Database) Release() {
	if t.refs.Add(-1) == 0 && t.retired.Load() {
		t.signalIdle()
	}
}

func (t *Database) signalIdle() {
	t.idleOnce.Do(func() { close(t.idle) })
}
