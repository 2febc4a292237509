package service

import (
	"sync"
	"time"
)

// CreationThrottle is a process-wide sliding-window limit on alert
// creation, independent of any per-device cooldown. It only protects a
// single instance; horizontally scaled deployments get best-effort
// protection per replica.
type CreationThrottle struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	stamps []time.Time
}

func NewCreationThrottle(limit int, window time.Duration) *CreationThrottle {
	return &CreationThrottle{
		limit:  limit,
		window: window,
		stamps: make([]time.Time, 0, limit),
	}
}

// Allow evicts stamps older than the window, then takes a slot if one is
// free. Shared hot path across all creation requests, hence the mutex.
func (t *CreationThrottle) Allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := now.Add(-t.window)
	i := 0
	for i < len(t.stamps) && !t.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		t.stamps = append(t.stamps[:0], t.stamps[i:]...)
	}

	if len(t.stamps) >= t.limit {
		return false
	}
	t.stamps = append(t.stamps, now)
	return true
}
