package zone

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

type State int

const (
	Active   State = iota // Serving and accepting maintenance operations
	Freezing              // Refusing new operations, waiting for in-flight ones
	Frozen                // Quiesced. Contents may be moved or the zone retired
	Retired               // Terminal
)

func (t State) String() string {
	switch t {
	case Active:
		return "active"
	case Freezing:
		return "freezing"
	case Frozen:
		return "frozen"
	case Retired:
		return "retired"
	}

	return fmt.Sprintf("State(%d)", int(t))
}

// Server is the part of the owning server a zone needs to know about.
type Server interface {
	EDNSPayload() uint16
}

// Zone is a served zone instance. A new Zone is created for every configured zone on
// every reload, even when its Contents are carried over from the previous instance.
type Zone struct {
	name   string
	config *Config
	server Server

	serving atomic.Pointer[Contents] // What readers answer from. Survives MoveContents

	mu       sync.Mutex
	contents *Contents // Owned
	modTime  time.Time
	state    State
	inflight int
	quiesced chan struct{} // Closed when inflight drops to zero while Freezing

	syncTimer *time.Timer
	syncDelay time.Duration
	syncFn    func(*Zone)
}

// New returns an Active zone without contents. Server may be nil.
func New(cfg *Config, server Server) *Zone {
	return &Zone{name: cfg.Name, config: cfg, server: server}
}

func (t *Zone) Name() string {
	return t.name
}

func (t *Zone) Config() *Config {
	return t.config
}

func (t *Zone) Server() Server {
	return t.server
}

// Serving returns the contents readers should answer from, or nil. Unlike Contents it
// is not cleared when the contents move to a successor, so readers still holding the
// previous generation keep a consistent view until the zone is retired.
func (t *Zone) Serving() *Contents {
	return t.serving.Load()
}

// Contents returns the owned contents or nil for a bootstrapped zone or a zone whose
// contents have moved to a successor.
func (t *Zone) Contents() *Contents {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.contents
}

// SetContents gives an empty zone ownership of freshly parsed contents along with the
// modification time of the file they came from.
func (t *Zone) SetContents(c *Contents, modTime time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.contents != nil {
		return ErrHasContents
	}
	if c.owner != nil {
		return fmt.Errorf("%s: contents owned by %s: %w", t.name, c.owner.name, ErrNotOwner)
	}
	c.owner = t
	t.contents = c
	t.modTime = modTime
	t.serving.Store(c)

	return nil
}

// ModTime is the modification time of the zone file the contents were loaded from. It is
// the zero time for a bootstrapped zone.
func (t *Zone) ModTime() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.modTime
}

func (t *Zone) SetModTime(mt time.Time) {
	t.mu.Lock()
	t.modTime = mt
	t.mu.Unlock()
}

// Serial returns the SOA serial readers are answered with, or zero if there are no
// contents. A zone whose contents have moved to a successor still reports the serial it
// serves until it is retired.
func (t *Zone) Serial() uint32 {
	c := t.Serving()
	if c == nil {
		return 0
	}

	return c.Serial()
}

func (t *Zone) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.state
}

// BeginOp registers an in-flight maintenance operation. It returns false if the zone is
// no longer Active in which case the operation must not proceed and EndOp must not be
// called.
func (t *Zone) BeginOp() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Active {
		return false
	}
	t.inflight++

	return true
}

// EndOp ends an operation started by a successful BeginOp.
func (t *Zone) EndOp() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.inflight--
	if t.inflight < 0 {
		panic("zone.EndOp() without BeginOp() for " + t.name)
	}
	if t.inflight == 0 && t.quiesced != nil {
		close(t.quiesced)
		t.quiesced = nil
	}
}

// Freeze stops the zone's timers, refuses new operations and waits for in-flight
// operations to end. If ctx expires first the zone is left Freezing and an error wrapping
// ErrFreezeTimeout is returned. Freeze may be called again on a Freezing or Frozen zone.
func (t *Zone) Freeze(ctx context.Context) error {
	for {
		t.mu.Lock()
		switch t.state {
		case Frozen:
			t.mu.Unlock()
			return nil
		case Retired:
			t.mu.Unlock()
			return fmt.Errorf("%s: %w", t.name, ErrRetired)
		case Active:
			t.state = Freezing
			t.stopSyncLocked()
		}
		if t.inflight == 0 {
			t.state = Frozen
			t.mu.Unlock()
			return nil
		}
		if t.quiesced == nil {
			t.quiesced = make(chan struct{})
		}
		ch := t.quiesced
		inflight := t.inflight
		t.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return fmt.Errorf("%s: %d operation(s) still running: %w: %w", t.name, inflight,
				ErrFreezeTimeout, ctx.Err())
		}
	}
}

// Thaw returns a Freezing or Frozen zone to Active and re-arms any sync that Freeze
// cancelled. It is used when a reload is abandoned and the previous zone stays in service.
func (t *Zone) Thaw() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Freezing && t.state != Frozen {
		return
	}
	t.state = Active
	if t.syncFn != nil {
		t.armSyncLocked()
	}
}

// Retire moves a Frozen zone to its terminal state and releases any contents it still
// owns.
func (t *Zone) Retire() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case Retired:
		return nil
	case Frozen:
	default:
		return fmt.Errorf("%s is %s: %w", t.name, t.state, ErrNotFrozen)
	}

	t.state = Retired
	t.syncFn = nil
	t.serving.Store(nil)
	if t.contents != nil {
		t.contents.Release()
		t.contents = nil
	}

	return nil
}
