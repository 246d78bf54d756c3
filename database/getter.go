package database

import (
	"context"
	"sync/atomic"
)

// Getter publishes database generations. All database access for each request should
// go via Acquire and the generation must be released with Release once the set of
// related accesses is complete. A generation acquired before a Replace stays valid until
// it is released.
type Getter struct {
	current atomic.Pointer[Database]
}

// NewGetter creates a Getter holding an empty, indexed database so Acquire always
// returns a valid generation.
func NewGetter() *Getter {
	t := &Getter{}
	db := New()
	db.BuildIndex()
	t.current.Store(db)

	return t
}

// Acquire returns the current generation with its reader count incremented.
func (t *Getter) Acquire() *Database {
	for {
		db := t.current.Load()
		db.refs.Add(1)
		if t.current.Load() == db { // Still current so Replace cannot have missed us
			return db
		}
		db.Release() // Lost a race with Replace - retry with the new generation
	}
}

// Release is a convenience for db.Release().
func (t *Getter) Release(db *Database) {
	db.Release()
}

// Current returns the current generation without acquiring it. Only the single writer,
// the reload engine, should use this.
func (t *Getter) Current() *Database {
	return t.current.Load()
}

// Replace atomically publishes newDB and returns the previous generation. Readers which
// acquire after Replace returns see only newDB.
func (t *Getter) Replace(newDB *Database) *Database {
	if newDB == nil {
		panic("database.Getter.Replace() called with a nil database")
	}
	old := t.current.Swap(newDB)
	old.retired.Store(true)
	if old.refs.Load() == 0 {
		old.signalIdle()
	}

	return old
}

// Synchronize waits until every reader holding old, a generation returned by Replace,
// has released it.
func (t *Getter) Synchronize(ctx context.Context, old *Database) error {
	select {
	case <-old.idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Readers returns the number of readers currently holding db.
func (t *Getter) Readers(db *Database) int64 {
	return db.refs.Load()
}
