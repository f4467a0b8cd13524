package engine

import (
	"sync"
	"time"
)

// Throttle suppresses repeated alerts for the same signal. Keys are
// (source, signal); timestamps come from the event source itself so the
// window stays correct when events arrive out of order. Entries are never
// evicted; the map lives only as long as the process.
type Throttle struct {
	mu       sync.Mutex
	window   time.Duration
	lastSeen map[throttleKey]int64
}

type throttleKey struct {
	source string
	signal string
}

// NewThrottle creates a throttle with the given suppression window
func NewThrottle(window time.Duration) *Throttle {
	return &Throttle{
		window:   window,
		lastSeen: make(map[throttleKey]int64),
	}
}

// Allow reports whether a signal should be processed and, when it should,
// records its event time as the new suppression anchor.
func (t *Throttle) Allow(source, signal string, eventTimeMillis int64) bool {
	key := throttleKey{source: source, signal: signal}

	t.mu.Lock()
	defer t.mu.Unlock()

	last, seen := t.lastSeen[key]
	if seen && eventTimeMillis-last <= t.window.Milliseconds() {
		return false
	}
	t.lastSeen[key] = eventTimeMillis
	return true
}

// Len returns the number of tracked signals
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lastSeen)
}
