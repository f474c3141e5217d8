package clock

import (
	"sync"
	"time"
)

// ServerClock estimates the relay server's wall clock from timestamps it
// attaches to events. The estimate is local monotonic time plus an offset
// learned from the newest timestamp seen so far.
type ServerClock struct {
	local Clock

	mu      sync.Mutex
	offset  float64
	have    bool
	maxLead float64
}

func NewServerClock(local Clock) *ServerClock {
	if local == nil {
		local = NewMonotonic()
	}
	return &ServerClock{local: local}
}

// SetMaxLead bounds how far one observation may move server-now forward.
// Zero, the default, accepts any jump.
func (s *ServerClock) SetMaxLead(d time.Duration) {
	s.mu.Lock()
	s.maxLead = d.Seconds()
	s.mu.Unlock()
}

// Observe records a server timestamp in epoch seconds and reports whether
// the estimate accepted it. The estimate never moves backwards: a timestamp
// older than the current server-now keeps the existing offset, so replayed
// history cannot make old events look new. Once synced, a timestamp more
// than the max lead ahead is rejected; a unit mix-up in one event would
// otherwise make every later stamp look stale.
func (s *ServerClock) Observe(serverSeconds float64) bool {
	offset := serverSeconds - Seconds(s.local)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.have {
		s.offset, s.have = offset, true
		return true
	}
	if s.maxLead > 0 && offset-s.offset > s.maxLead {
		return false
	}
	if offset > s.offset {
		s.offset = offset
	}
	return true
}

// Now returns the estimated server time in epoch seconds. Before the first
// observation it returns raw local monotonic seconds.
func (s *ServerClock) Now() float64 {
	local := Seconds(s.local)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.have {
		return local
	}
	return local + s.offset
}

// Offset returns the current offset and whether one has been observed.
func (s *ServerClock) Offset() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset, s.have
}

// Synced reports whether any server timestamp has been observed.
func (s *ServerClock) Synced() bool {
	_, ok := s.Offset()
	return ok
}
