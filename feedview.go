package main

import (
	"time"

	"gocomment/feed"
)

// feedInterval is how often the window drains pending comments.
const feedInterval = 500 * time.Millisecond

// feedView holds the comments currently on screen, newest last.
type feedView struct {
	queue *feed.Queue
	max   int
	items []feed.Entry
	next  time.Time
}

func newFeedView(q *feed.Queue, max int) *feedView {
	if max <= 0 {
		max = gsdef.MaxComments
	}
	return &feedView{queue: q, max: max}
}

// poll drains the queue if feedInterval has passed and reports whether
// anything changed.
func (v *feedView) poll(now time.Time) bool {
	if now.Before(v.next) {
		return false
	}
	v.next = now.Add(feedInterval)
	got := v.queue.Drain()
	if len(got) == 0 {
		return false
	}
	v.items = append(v.items, got...)
	if over := len(v.items) - v.max; over > 0 {
		v.items = append(v.items[:0], v.items[over:]...)
	}
	return true
}

// newestFirst returns the visible entries in display order.
func (v *feedView) newestFirst() []feed.Entry {
	out := make([]feed.Entry, len(v.items))
	for i, e := range v.items {
		out[len(v.items)-1-i] = e
	}
	return out
}
