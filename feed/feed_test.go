package feed

import (
	"fmt"
	"testing"

	"gocomment/event"
)

func entry(i int) Entry {
	return Entry{Name: "n", Text: fmt.Sprintf("t%d", i)}
}

func TestQueueFIFO(t *testing.T) {
	q := NewQueue(10)
	for i := range 3 {
		q.Push(entry(i))
	}
	got := q.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	for i, e := range got {
		if e.Text != fmt.Sprintf("t%d", i) {
			t.Fatalf("entry %d out of order: %q", i, e.Text)
		}
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Fatalf("expected queue to be empty after drain")
	}
}

func TestQueueBoundDropsOldest(t *testing.T) {
	q := NewQueue(2)
	for i := range 5 {
		q.Push(entry(i))
	}
	got := q.Drain()
	if len(got) != 2 || got[0].Text != "t3" || got[1].Text != "t4" {
		t.Fatalf("expected t3,t4 got %+v", got)
	}
	if q.Dropped() != 3 {
		t.Fatalf("expected 3 dropped, got %d", q.Dropped())
	}
}

func TestQueueReplace(t *testing.T) {
	q := NewQueue(10)
	q.Push(entry(0))
	q.Push(entry(1))
	q.Replace([]Entry{entry(7)})
	got := q.Drain()
	if len(got) != 1 || got[0].Text != "t7" {
		t.Fatalf("expected only snapshot entry, got %+v", got)
	}
}

func TestLogResetTo(t *testing.T) {
	var l Log
	l.Append(entry(0))
	l.ResetTo([]Entry{entry(1), entry(2)})
	snap := l.Snapshot()
	if len(snap) != 2 || snap[0].Text != "t1" {
		t.Fatalf("unexpected log %+v", snap)
	}
	snap[0].Text = "mutated"
	if l.Snapshot()[0].Text != "t1" {
		t.Fatalf("snapshot aliases log storage")
	}
	l.Reset()
	if l.Len() != 0 {
		t.Fatalf("expected empty log")
	}
}

func TestFromComment(t *testing.T) {
	e := FromComment(event.Comment{Name: "a", Text: "b", Time: "c", Timestamp: 5, HasTimestamp: true})
	if e.Name != "a" || e.Text != "b" || e.Time != "c" || !e.HasTimestamp || e.Received.IsZero() {
		t.Fatalf("unexpected entry %+v", e)
	}
}
