package orchestrator

import (
	"sync"
	"time"
)

// coalescedRate caps progress delivery to roughly 20 events per second
// per provider, per spec.md §4.5, so a fast local WinGet scan does not
// flood a UI subscriber with thousands of per-record events.
const coalescedRate = 50 * time.Millisecond

// coalescer rate-limits progress callbacks, always delivering the most
// recent event on flush so a subscriber never misses the final state.
type coalescer struct {
	onProgress func(Progress)
	mu         sync.Mutex
	last       Progress
	pending    bool
	lastSentAt time.Time
}

func newCoalescer(onProgress func(Progress)) *coalescer {
	return &coalescer{onProgress: onProgress}
}

func (c *coalescer) emit(p Progress) {
	if c.onProgress == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.last = p
	c.pending = true

	now := time.Now()
	if p.Phase == PhaseDone || p.Phase == PhaseFailed || now.Sub(c.lastSentAt) >= coalescedRate {
		c.send(p)
	}
}

func (c *coalescer) send(p Progress) {
	c.lastSentAt = time.Now()
	c.pending = false
	c.onProgress(p)
}

// flush delivers the last pending event if the rate limit suppressed it.
func (c *coalescer) flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending {
		c.send(c.last)
	}
}
