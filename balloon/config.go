package balloon

import (
	"fmt"
	"image"
	"math"
	"slices"
	"sync"
	"time"
)

// AreaMode selects which part of the monitor balloons fly over.
type AreaMode int

const (
	// AreaComment is the narrow column on the right that holds the feed.
	AreaComment AreaMode = iota
	// AreaWide is the complementary region left of the feed column.
	AreaWide
)

// commentColumnFraction is the share of the monitor width used by the feed.
const commentColumnFraction = 0.25

func (a AreaMode) String() string {
	switch a {
	case AreaWide:
		return "left75"
	default:
		return "comment"
	}
}

// ParseAreaMode accepts the names produced by String.
func ParseAreaMode(s string) (AreaMode, error) {
	switch s {
	case "comment":
		return AreaComment, nil
	case "left75", "wide":
		return AreaWide, nil
	}
	return AreaComment, fmt.Errorf("unknown area mode %q", s)
}

// Region returns the rectangle of a w x h monitor the area covers.
func (a AreaMode) Region(w, h int) image.Rectangle {
	col := int(math.Round(float64(w) * commentColumnFraction))
	if a == AreaWide {
		return image.Rect(0, 0, w-col, h)
	}
	return image.Rect(w-col, 0, w, h)
}

// Corner is where balloons are launched from.
type Corner int

const (
	BottomRight Corner = iota
	TopRight
	BottomLeft
	TopLeft
)

var cornerNames = [...]string{"bottom_right", "top_right", "bottom_left", "top_left"}

func (c Corner) String() string {
	if c < 0 || int(c) >= len(cornerNames) {
		return cornerNames[BottomRight]
	}
	return cornerNames[c]
}

// ParseCorner accepts the names produced by String.
func ParseCorner(s string) (Corner, error) {
	for i, n := range cornerNames {
		if n == s {
			return Corner(i), nil
		}
	}
	return BottomRight, fmt.Errorf("unknown corner %q", s)
}

func (c Corner) Left() bool { return c == BottomLeft || c == TopLeft }
func (c Corner) Top() bool  { return c == TopRight || c == TopLeft }

// Config is the operator-adjustable display configuration. It is read when
// a balloon spawns; balloons already in flight keep what they were given.
type Config struct {
	Area   AreaMode
	Corner Corner
	// SpeedMin and SpeedMax bound the launch speed in px/s.
	SpeedMin float64
	SpeedMax float64
	// DistanceLimit retires a balloon after travelling this many pixels
	// from its spawn point. Zero means unlimited.
	DistanceLimit float64
	Lifetime      time.Duration
}

const (
	DefaultSpeedMin = 90.0
	DefaultSpeedMax = 200.0
	DefaultLifetime = 8 * time.Second

	minSpeed    = 1.0
	minLifetime = 100 * time.Millisecond
)

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Area:     AreaComment,
		Corner:   BottomRight,
		SpeedMin: DefaultSpeedMin,
		SpeedMax: DefaultSpeedMax,
		Lifetime: DefaultLifetime,
	}
}

// SpeedRange returns the launch speed bounds with both at least 1px/s and
// min <= max.
func (c Config) SpeedRange() (lo, hi float64) {
	lo = math.Max(minSpeed, math.Abs(c.SpeedMin))
	hi = math.Max(minSpeed, math.Abs(c.SpeedMax))
	if math.IsNaN(lo) {
		lo = DefaultSpeedMin
	}
	if math.IsNaN(hi) {
		hi = DefaultSpeedMax
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// Normalized returns c with every field clamped to its valid range.
func (c Config) Normalized() Config {
	c.SpeedMin, c.SpeedMax = c.SpeedRange()
	if c.DistanceLimit < 0 || math.IsNaN(c.DistanceLimit) {
		c.DistanceLimit = 0
	}
	if c.Lifetime < minLifetime {
		c.Lifetime = minLifetime
	}
	if c.Corner < BottomRight || c.Corner > TopLeft {
		c.Corner = BottomRight
	}
	if c.Area != AreaWide {
		c.Area = AreaComment
	}
	return c
}

// ConfigStore holds the live Config. Safe for concurrent use.
type ConfigStore struct {
	mu       sync.RWMutex
	cfg      Config
	watchers []func(Config)
}

func NewConfigStore(cfg Config) *ConfigStore {
	return &ConfigStore{cfg: cfg.Normalized()}
}

// Get returns a copy of the current config.
func (s *ConfigStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// OnChange registers fn to be called after every change. Callbacks run
// on the goroutine that made the change.
func (s *ConfigStore) OnChange(fn func(Config)) {
	s.mu.Lock()
	s.watchers = append(s.watchers, fn)
	s.mu.Unlock()
}

// Update applies fn to the config and normalizes the result.
func (s *ConfigStore) Update(fn func(*Config)) Config {
	s.mu.Lock()
	cfg := s.cfg
	fn(&cfg)
	s.cfg = cfg.Normalized()
	cfg = s.cfg
	watchers := slices.Clone(s.watchers)
	s.mu.Unlock()
	for _, w := range watchers {
		w(cfg)
	}
	return cfg
}

func (s *ConfigStore) SetArea(a AreaMode) { s.Update(func(c *Config) { c.Area = a }) }

func (s *ConfigStore) SetCorner(k Corner) { s.Update(func(c *Config) { c.Corner = k }) }

// SetSpeedMin sets the lower bound, raising the upper bound to match if
// needed.
func (s *ConfigStore) SetSpeedMin(v float64) {
	s.Update(func(c *Config) {
		c.SpeedMin = v
		if v > c.SpeedMax {
			c.SpeedMax = v
		}
	})
}

// SetSpeedMax sets the upper bound, lowering the lower bound to match if
// needed.
func (s *ConfigStore) SetSpeedMax(v float64) {
	s.Update(func(c *Config) {
		c.SpeedMax = v
		if v < c.SpeedMin {
			c.SpeedMin = v
		}
	})
}

func (s *ConfigStore) SetDistanceLimit(px float64) {
	s.Update(func(c *Config) { c.DistanceLimit = px })
}

func (s *ConfigStore) SetLifetime(d time.Duration) {
	s.Update(func(c *Config) { c.Lifetime = d })
}

// Reset restores DefaultConfig.
func (s *ConfigStore) Reset() {
	s.Update(func(c *Config) { *c = DefaultConfig() })
}
