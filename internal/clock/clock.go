// Package clock provides the monotonic tick source used by the animation
// scheduler and the estimator that maps it onto the relay server's clock.
package clock

import (
	"sync"
	"time"
)

// Clock reports monotonic time elapsed since an arbitrary origin.
type Clock interface {
	Now() time.Duration
}

// Monotonic is the real clock. The zero value is not usable; call
// NewMonotonic.
type Monotonic struct {
	start time.Time
}

func NewMonotonic() *Monotonic {
	return &Monotonic{start: time.Now()}
}

func (m *Monotonic) Now() time.Duration { return time.Since(m.start) }

// Manual is a clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Duration
}

func (m *Manual) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now += d
	m.mu.Unlock()
}

// Set jumps the clock to t.
func (m *Manual) Set(t time.Duration) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Seconds converts a clock reading to float seconds.
func Seconds(c Clock) float64 {
	return c.Now().Seconds()
}
