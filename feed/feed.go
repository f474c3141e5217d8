// Package feed hands normalized comments from the network goroutine to the
// renderer and keeps the session's append-only history.
package feed

import (
	"sync"
	"time"

	"gocomment/event"
)

// DefaultQueueSize bounds the pending queue when none is given.
const DefaultQueueSize = 500

// Entry is a comment ready for display. Entries are never modified after
// they are queued.
type Entry struct {
	Name         string
	Text         string
	Time         string
	Timestamp    float64
	HasTimestamp bool
	Received     time.Time
}

// FromComment converts a parsed comment.
func FromComment(c event.Comment) Entry {
	return Entry{
		Name:         c.Name,
		Text:         c.Text,
		Time:         c.Time,
		Timestamp:    c.Timestamp,
		HasTimestamp: c.HasTimestamp,
		Received:     time.Now(),
	}
}

// Queue is a bounded FIFO of pending entries. When full the oldest pending
// entry is discarded. Safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	items   []Entry
	max     int
	dropped int
}

func NewQueue(max int) *Queue {
	if max <= 0 {
		max = DefaultQueueSize
	}
	return &Queue{max: max}
}

// Push appends e.
func (q *Queue) Push(e Entry) {
	q.mu.Lock()
	q.items = append(q.items, e)
	q.trimLocked()
	q.mu.Unlock()
}

// Replace discards everything pending and queues entries instead. Used
// when a reconnect delivers a fresh history snapshot.
func (q *Queue) Replace(entries []Entry) {
	q.mu.Lock()
	q.items = append(q.items[:0:0], entries...)
	q.trimLocked()
	q.mu.Unlock()
}

func (q *Queue) trimLocked() {
	if over := len(q.items) - q.max; over > 0 {
		q.items = append(q.items[:0], q.items[over:]...)
		q.dropped += over
	}
}

// Drain removes and returns all pending entries in arrival order.
func (q *Queue) Drain() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Clear discards pending entries.
func (q *Queue) Clear() {
	q.mu.Lock()
	q.items = nil
	q.mu.Unlock()
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Dropped returns how many entries were discarded because the queue was full.
func (q *Queue) Dropped() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Log is the append-only record of every comment of the session.
type Log struct {
	mu      sync.RWMutex
	entries []Entry
}

func (l *Log) Append(e Entry) {
	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()
}

// ResetTo replaces the log with entries, as a history snapshot does.
func (l *Log) ResetTo(entries []Entry) {
	l.mu.Lock()
	l.entries = append([]Entry(nil), entries...)
	l.mu.Unlock()
}

// Reset clears the log.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Snapshot returns a copy of the log in arrival order.
func (l *Log) Snapshot() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}
