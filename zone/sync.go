package zone

import (
	"time"
)

// ScheduleSync arms a one-shot timer which runs fn as a maintenance operation after
// delay. A previously armed sync is replaced. A negative delay cancels any pending sync.
// Nothing is armed unless the zone is Active, and fn does not run if the zone has started
// freezing by the time the timer fires.
func (t *Zone) ScheduleSync(delay time.Duration, fn func(*Zone)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Active {
		return
	}
	t.stopSyncLocked()
	if delay < 0 {
		t.syncFn = nil
		return
	}
	t.syncDelay = delay
	t.syncFn = fn
	t.armSyncLocked()
}

func (t *Zone) armSyncLocked() {
	fn := t.syncFn
	var timer *time.Timer
	timer = time.AfterFunc(t.syncDelay, func() {
		if !t.BeginOp() {
			return
		}
		defer t.EndOp()

		t.mu.Lock()
		current := t.syncTimer == timer
		if current {
			t.syncTimer = nil
			t.syncFn = nil
		}
		t.mu.Unlock()
		if current {
			fn(t)
		}
	})
	t.syncTimer = timer
}

func (t *Zone) stopSyncLocked() {
	if t.syncTimer != nil {
		t.syncTimer.Stop()
		t.syncTimer = nil
	}
}

// SyncPending returns true if a sync timer is armed.
func (t *Zone) SyncPending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.syncTimer != nil
}
