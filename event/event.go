// Package event turns raw relay payloads into typed events. It is the only
// place that looks at the loosely shaped maps the server sends.
package event

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// Event is one of Comment, Stamp or Unrecognized.
type Event interface {
	isEvent()
}

// Comment is a text entry for the feed.
type Comment struct {
	Name string
	Text string
	// Time is the display time the server attached, rendered as text.
	Time string
	// Timestamp is the coerced server timestamp in epoch seconds; valid
	// only when HasTimestamp is set.
	Timestamp    float64
	HasTimestamp bool
}

// Stamp is an image reaction.
type Stamp struct {
	ID string
	// Ref is the reference exactly as received; URL is Ref resolved
	// against the relay base when it was a path.
	Ref          string
	URL          string
	Name         string
	Timestamp    float64
	HasTimestamp bool
	// GeneratedID is set when the server sent no id and ID was minted
	// locally. Such stamps cannot be deduplicated across reconnects.
	GeneratedID bool
}

// Unrecognized is a payload that is neither a comment nor a stamp.
type Unrecognized struct {
	Reason string
}

func (Comment) isEvent()      {}
func (Stamp) isEvent()        {}
func (Unrecognized) isEvent() {}

var (
	stampKeys = []string{"stamp_url", "stamp"}
	idKeys    = []string{"id", "_id", "stamp_id"}
)

// Parse classifies v. Relative stamp references are left unresolved; use
// a Normalizer to resolve them.
func Parse(v any) Event {
	raw, ok := v.(map[string]any)
	if !ok {
		return Unrecognized{Reason: fmt.Sprintf("payload is %T, not an object", v)}
	}
	ts, hasTS := CoerceTimestamp(raw)

	if ref := firstString(raw, stampKeys...); ref != "" {
		s := Stamp{
			Ref:          ref,
			URL:          ref,
			Name:         cleanText(stringField(raw, "name")),
			Timestamp:    ts,
			HasTimestamp: hasTS,
		}
		s.ID = firstID(raw)
		if s.ID == "" {
			s.ID = strings.ReplaceAll(uuid.NewString(), "-", "")
			s.GeneratedID = true
		}
		return s
	}

	c := Comment{
		Name:         cleanText(stringField(raw, "name")),
		Text:         cleanText(stringField(raw, "text")),
		Time:         displayTime(raw["time"]),
		Timestamp:    ts,
		HasTimestamp: hasTS,
	}
	if c.Name == "" && c.Text == "" {
		return Unrecognized{Reason: "no stamp, name or text"}
	}
	return c
}

func cleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func stringField(raw map[string]any, key string) string {
	switch v := raw[key].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// firstString returns the first non-empty string value among keys.
func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := raw[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// firstID accepts string and numeric ids; numbers are rendered without an
// exponent so 123 and "123" match.
func firstID(raw map[string]any) string {
	for _, k := range idKeys {
		switch v := raw[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			if v != 0 {
				return strconv.FormatFloat(v, 'f', -1, 64)
			}
		case int:
			if v != 0 {
				return strconv.Itoa(v)
			}
		case int64:
			if v != 0 {
				return strconv.FormatInt(v, 10)
			}
		}
	}
	return ""
}

func displayTime(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
