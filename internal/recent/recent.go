// Package recent keeps a bounded, insertion-ordered set of stamp ids that
// were already spawned, so a reconnect replay cannot launch the same
// reaction twice.
package recent

import (
	"sync"

	"github.com/zyedidia/generic/mapset"
)

// DefaultSize is the number of ids remembered when New is given a
// non-positive capacity.
const DefaultSize = 256

// IDs is a FIFO set: once full, remembering a new id forgets the oldest.
// Safe for concurrent use.
type IDs struct {
	mu    sync.Mutex
	ring  []string
	head  int // oldest entry
	count int
	set   mapset.Set[string]
}

func New(capacity int) *IDs {
	if capacity <= 0 {
		capacity = DefaultSize
	}
	return &IDs{
		ring: make([]string, capacity),
		set:  mapset.New[string](),
	}
}

// Seen reports whether id is currently remembered.
func (c *IDs) Seen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set.Has(id)
}

// Remember inserts id. Remembering an id twice has no further effect.
func (c *IDs) Remember(id string) {
	c.mu.Lock()
	c.insertLocked(id)
	c.mu.Unlock()
}

// Admit remembers id and reports true if it was not already known.
func (c *IDs) Admit(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.set.Has(id) {
		return false
	}
	c.insertLocked(id)
	return true
}

func (c *IDs) insertLocked(id string) {
	if c.set.Has(id) {
		return
	}
	size := len(c.ring)
	if c.count == size {
		old := c.ring[c.head]
		c.set.Remove(old)
		c.ring[c.head] = ""
		c.head = (c.head + 1) % size
		c.count--
	}
	c.ring[(c.head+c.count)%size] = id
	c.count++
	c.set.Put(id)
}

// Len returns the number of remembered ids.
func (c *IDs) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

// Cap returns the capacity.
func (c *IDs) Cap() int { return len(c.ring) }

// Snapshot returns the remembered ids oldest first.
func (c *IDs) Snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, c.count)
	for i := range c.count {
		out[i] = c.ring[(c.head+i)%len(c.ring)]
	}
	return out
}
