package deadline

import (
	"sync"
	"time"

	"task-engine/internal/calendar"
)

// DefaultCooldown is the minimum gap between two full upcoming-deadline scans.
const DefaultCooldown = 5 * time.Minute

// Throttle is a best-effort, single-process gate against redundant scans on
// rapid repeated triggers. It is not a distributed lock; cross-process
// correctness comes from the storage-level dedup constraint.
type Throttle struct {
	mu       sync.Mutex
	clock    *calendar.Clock
	cooldown time.Duration
	lastRun  time.Time
}

func NewThrottle(clock *calendar.Clock, cooldown time.Duration) *Throttle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Throttle{clock: clock, cooldown: cooldown}
}

// ShouldRun reports whether a scan may start now. On a permitted run the
// timestamp advances immediately, before the scan does any work, so an
// overlapping trigger observes the gate even while the first scan is slow.
func (t *Throttle) ShouldRun(force bool) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	if !force && !t.lastRun.IsZero() && now.Sub(t.lastRun) < t.cooldown {
		return false
	}
	t.lastRun = now
	return true
}

// Status describes the gate for observability.
type ThrottleStatus struct {
	LastRun   time.Time     `json:"last_run"`
	Cooldown  time.Duration `json:"cooldown"`
	Remaining time.Duration `json:"remaining"`
}

func (t *Throttle) Status() ThrottleStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := ThrottleStatus{LastRun: t.lastRun, Cooldown: t.cooldown}
	if !t.lastRun.IsZero() {
		if rem := t.cooldown - t.clock.Now().Sub(t.lastRun); rem > 0 {
			st.Remaining = rem
		}
	}
	return st
}
