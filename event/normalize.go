package event

import (
	"net/url"
	"strings"
	"time"

	"gocomment/internal/clock"
	"gocomment/internal/logging"
)

// DefaultRecentWindow is how old a stamp may be on arrival before it is
// dropped instead of animated.
const DefaultRecentWindow = 20 * time.Second

// Normalizer parses payloads, keeps the server clock estimate current and
// applies the arrival-drop policy. Safe for concurrent use.
type Normalizer struct {
	server *clock.ServerClock
	window time.Duration
	base   *url.URL
}

// NewNormalizer returns a normalizer that resolves relative stamp paths
// against baseURL (may be empty) and drops stamps older than window.
func NewNormalizer(server *clock.ServerClock, baseURL string, window time.Duration) *Normalizer {
	if server == nil {
		server = clock.NewServerClock(nil)
	}
	if window <= 0 {
		window = DefaultRecentWindow
	}
	server.SetMaxLead(window)
	n := &Normalizer{server: server, window: window}
	if baseURL != "" {
		if u, err := url.Parse(strings.TrimRight(baseURL, "/")); err == nil {
			n.base = u
		} else {
			logging.Warn("bad relay base url", "url", baseURL, "err", err)
		}
	}
	return n
}

// Server exposes the clock estimate.
func (n *Normalizer) Server() *clock.ServerClock { return n.server }

// Normalize parses v and reports whether it must be dropped on arrival.
// Unrecognized payloads are returned with dropped set.
func (n *Normalizer) Normalize(v any) (ev Event, dropped bool) {
	ev = n.parse(v)
	n.observe(ev)
	return ev, n.stale(ev)
}

// NormalizeHistory handles a reconnect snapshot. The newest timestamp is
// observed before any entry is judged, so a cold start still recognises
// the old part of the snapshot. A non-list payload yields nil.
func (n *Normalizer) NormalizeHistory(v any) []Event {
	list, ok := v.([]any)
	if !ok {
		if v != nil {
			logging.Debug("ignoring non-list history", "type", typeName(v))
		}
		return nil
	}
	parsed := make([]Event, 0, len(list))
	var (
		newest   Event
		newestTS float64
	)
	for _, item := range list {
		ev := n.parse(item)
		if ts, ok := timestampOf(ev); ok && (newest == nil || ts > newestTS) {
			newest, newestTS = ev, ts
		}
		parsed = append(parsed, ev)
	}
	if newest != nil {
		n.observe(newest)
	}
	out := parsed[:0]
	for _, ev := range parsed {
		if n.stale(ev) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

func (n *Normalizer) parse(v any) Event {
	ev := Parse(v)
	if s, ok := ev.(Stamp); ok {
		s.URL = n.Resolve(s.Ref)
		return s
	}
	return ev
}

// Resolve turns a server-relative stamp path into an absolute URL.
func (n *Normalizer) Resolve(ref string) string {
	if n.base == nil || !strings.HasPrefix(ref, "/") || strings.HasPrefix(ref, "//") {
		return ref
	}
	return n.base.String() + ref
}

func timestampOf(ev Event) (float64, bool) {
	switch e := ev.(type) {
	case Stamp:
		return e.Timestamp, e.HasTimestamp
	case Comment:
		return e.Timestamp, e.HasTimestamp
	}
	return 0, false
}

func (n *Normalizer) observe(ev Event) {
	ts, ok := timestampOf(ev)
	if !ok {
		return
	}
	if !n.server.Observe(ts) {
		logging.Debug("ignoring far-future server timestamp", "ts", ts)
	}
}

// stale applies the arrival-drop policy. Only stamps with a known
// timestamp can be stale; comments always pass.
func (n *Normalizer) stale(ev Event) bool {
	switch e := ev.(type) {
	case Unrecognized:
		return true
	case Stamp:
		return n.Stale(e)
	}
	return false
}

// Stale reports whether s is at least the recent window old according to
// the server clock estimate.
func (n *Normalizer) Stale(s Stamp) bool {
	if !s.HasTimestamp || !n.server.Synced() {
		return false
	}
	return n.server.Now()-s.Timestamp >= n.window.Seconds()
}

func typeName(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case string:
		return "string"
	case float64:
		return "number"
	}
	return "other"
}
