// Package ingest connects relay events to the comment feed and the stamp
// pipeline. It runs on the network goroutine and never touches the
// balloon surface.
package ingest

import (
	"sync"
	"sync/atomic"

	"gocomment/event"
	"gocomment/feed"
	"gocomment/internal/logging"
	"gocomment/relay"
)

// StampSubmitter accepts stamps for download and animation.
type StampSubmitter interface {
	Submit(s event.Stamp) bool
}

// Stats counts routed events.
type Stats struct {
	Comments   uint64
	Stamps     uint64
	Duplicates uint64
	Dropped    uint64
	Histories  uint64
}

// Router implements relay.Handler.
type Router struct {
	norm   *event.Normalizer
	stamps StampSubmitter
	queue  *feed.Queue
	log    *feed.Log

	mu      sync.Mutex
	onState func(relay.State)

	comments, admitted, duplicates, dropped, histories atomic.Uint64
}

var _ relay.Handler = (*Router)(nil)

func NewRouter(norm *event.Normalizer, stamps StampSubmitter, queue *feed.Queue, log *feed.Log) *Router {
	if log == nil {
		log = &feed.Log{}
	}
	return &Router{norm: norm, stamps: stamps, queue: queue, log: log}
}

// OnState registers a callback for connection state changes.
func (r *Router) OnState(fn func(relay.State)) {
	r.mu.Lock()
	r.onState = fn
	r.mu.Unlock()
}

// Log returns the session's comment history.
func (r *Router) Log() *feed.Log { return r.log }

// History replaces the pending comments and the log with the filtered
// snapshot. Stamps in it go through deduplication like live ones.
func (r *Router) History(payload any) {
	evs := r.norm.NormalizeHistory(payload)
	if evs == nil {
		return
	}
	r.histories.Add(1)
	entries := make([]feed.Entry, 0, len(evs))
	for _, ev := range evs {
		switch e := ev.(type) {
		case event.Comment:
			entries = append(entries, feed.FromComment(e))
		case event.Stamp:
			r.submit(e)
		}
	}
	r.queue.Replace(entries)
	r.log.ResetTo(entries)
	logging.Debug("history applied", "entries", len(evs), "comments", len(entries))
}

// NewComment routes one live payload.
func (r *Router) NewComment(payload any) {
	ev, dropped := r.norm.Normalize(payload)
	if dropped {
		r.dropped.Add(1)
		if u, ok := ev.(event.Unrecognized); ok {
			logging.Debug("payload ignored", "reason", u.Reason)
		} else {
			logging.Debug("stale stamp dropped on arrival")
		}
		return
	}
	switch e := ev.(type) {
	case event.Comment:
		r.comments.Add(1)
		entry := feed.FromComment(e)
		r.queue.Push(entry)
		r.log.Append(entry)
	case event.Stamp:
		r.submit(e)
	}
}

func (r *Router) submit(s event.Stamp) {
	if r.stamps == nil {
		return
	}
	if r.stamps.Submit(s) {
		r.admitted.Add(1)
	} else {
		r.duplicates.Add(1)
	}
}

// State forwards connection state changes.
func (r *Router) State(s relay.State) {
	r.mu.Lock()
	fn := r.onState
	r.mu.Unlock()
	logging.Debug("relay state", "state", s)
	if fn != nil {
		fn(s)
	}
}

func (r *Router) Stats() Stats {
	return Stats{
		Comments:   r.comments.Load(),
		Stamps:     r.admitted.Load(),
		Duplicates: r.duplicates.Load(),
		Dropped:    r.dropped.Load(),
		Histories:  r.histories.Load(),
	}
}
