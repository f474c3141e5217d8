package event

import (
	"strings"
	"time"
)

var (
	epochKeys = []string{"ts", "server_ts"}
	isoKeys   = []string{"time_iso", "server_time_iso", "server_time"}
)

// msThreshold separates epoch seconds from epoch milliseconds.
const msThreshold = 1e10

// CoerceTimestamp extracts the server timestamp of raw in epoch seconds.
// A numeric epoch wins over an ISO-8601 string; ISO strings must carry an
// explicit zone. ok is false when nothing parses.
func CoerceTimestamp(raw map[string]any) (seconds float64, ok bool) {
	for _, k := range epochKeys {
		if x, isNum := number(raw[k]); isNum && x != 0 {
			if x > msThreshold {
				return x / 1000, true
			}
			return x, true
		}
	}
	for _, k := range isoKeys {
		s, isStr := raw[k].(string)
		if !isStr || s == "" {
			continue
		}
		if t, err := parseISO(s); err == nil {
			return float64(t.UnixNano()) / 1e9, true
		}
	}
	return 0, false
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05-0700",
}

// parseISO accepts ISO-8601 with an explicit zone or a trailing Z. Naive
// times have no well-defined instant and are rejected.
func parseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var err error
	for _, layout := range isoLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}
