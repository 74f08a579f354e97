package lifecycle

import (
	"context"
	"sync"
	"time"
)

// Timer counts a session down one second per tick while it is active.
type Timer struct {
	mu        sync.Mutex
	remaining int
	active    bool
	expired   bool
	onExpire  []func()
}

// NewTimer creates a stopped timer holding seconds.
func NewTimer(seconds int) *Timer {
	if seconds < 0 {
		seconds = 0
	}
	return &Timer{remaining: seconds}
}

// OnExpire registers fn to run once when the countdown reaches zero.
func (t *Timer) OnExpire(fn func()) {
	t.mu.Lock()
	t.onExpire = append(t.onExpire, fn)
	t.mu.Unlock()
}

// Start activates the countdown. It returns false if the timer was already
// running or has expired; the remaining time is never reset by a second start.
func (t *Timer) Start() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active || t.expired {
		return false
	}
	t.active = true
	return true
}

// Reset changes the remaining seconds of a timer that has not started yet.
func (t *Timer) Reset(seconds int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active || t.expired {
		return false
	}
	t.remaining = seconds
	return true
}

// Stop ends the countdown without firing expiry callbacks.
func (t *Timer) Stop() {
	t.mu.Lock()
	t.active = false
	t.expired = true
	t.mu.Unlock()
}

// Remaining returns the seconds left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Active reports whether the countdown is running.
func (t *Timer) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Expired reports whether the countdown reached zero or was stopped.
func (t *Timer) Expired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expired
}

// Tick decrements the countdown by one second. Ticks on an inactive timer do nothing.
// expired is true only on the tick that reaches zero.
func (t *Timer) Tick() (remaining int, expired bool) {
	t.mu.Lock()
	if !t.active {
		r := t.remaining
		t.mu.Unlock()
		return r, false
	}
	if t.remaining > 0 {
		t.remaining--
	}
	if t.remaining > 0 {
		r := t.remaining
		t.mu.Unlock()
		return r, false
	}
	t.active = false
	t.expired = true
	callbacks := append([]func(){}, t.onExpire...)
	t.mu.Unlock()

	for _, fn := range callbacks {
		fn()
	}
	return 0, true
}

// Run ticks the timer on every value from ticks until it expires or ctx is done.
// A nil ticks channel uses a one second ticker.
func (t *Timer) Run(ctx context.Context, ticks <-chan time.Time) {
	if ticks == nil {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		ticks = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticks:
			if _, expired := t.Tick(); expired {
				return
			}
			if t.Expired() {
				return
			}
		}
	}
}
