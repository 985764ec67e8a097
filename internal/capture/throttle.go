package capture

import (
	"sync"
	"time"
)

// throttle lets a sample through only when more than interval has passed
// since the last sample it let through.
type throttle struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func (t *throttle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.last.IsZero() && now.Sub(t.last) <= t.interval {
		return false
	}
	t.last = now
	return true
}
