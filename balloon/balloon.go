// Package balloon animates stamp reactions: it spawns sprites with random
// kinematics, advances them on a fixed tick and retires them once they
// expire, travel too far or leave the surface.
//
// All mutable balloon state belongs to the goroutine that calls
// Scheduler.Tick. Other goroutines reach it only through Scheduler.Post.
package balloon

import (
	"math"
	"time"
)

// Wobble is a cosmetic sideways sway added to the horizontal velocity.
type Wobble struct {
	Phase     float64
	Amplitude float64
	Frequency float64
}

// Reason says why a balloon left the active set.
type Reason int

const (
	Alive Reason = iota
	Expired
	DistanceReached
	Offscreen
	Vanished
	Evicted
	Stopped
)

var reasonNames = [...]string{"alive", "expired", "distance", "offscreen", "vanished", "evicted", "stopped"}

func (r Reason) String() string {
	if r < 0 || int(r) >= len(reasonNames) {
		return "unknown"
	}
	return reasonNames[r]
}

// Balloon is one animated stamp.
type Balloon struct {
	StampID string
	seq     uint64
	sprite  Sprite

	X, Y   float64
	VX, VY float64
	Wobble Wobble

	SpawnX, SpawnY float64
	Born           time.Duration
	Lifetime       time.Duration
	// DistanceLimit is copied from the config at spawn; zero is unlimited.
	DistanceLimit float64

	W, H int

	// entered is set once any part of the balloon has been on the surface.
	// Spawn points sit just outside an edge, so the offscreen test only
	// applies afterwards.
	entered bool
	reason  Reason
}

// Seq is the insertion sequence number; lower is older.
func (b *Balloon) Seq() uint64 { return b.seq }

// Reason returns why the balloon retired, or Alive.
func (b *Balloon) Reason() Reason { return b.reason }

// step advances the balloon by dt seconds and returns the displacement.
func (b *Balloon) step(dt float64) (dx, dy float64) {
	b.Wobble.Phase += dt
	vx := b.VX + b.Wobble.Amplitude*math.Sin(b.Wobble.Phase*b.Wobble.Frequency)
	dx, dy = vx*dt, b.VY*dt
	b.X += dx
	b.Y += dy
	return dx, dy
}

// Distance returns how far the balloon is from its spawn point.
func (b *Balloon) Distance() float64 {
	return math.Hypot(b.X-b.SpawnX, b.Y-b.SpawnY)
}

// check evaluates the retirement conditions at local time now on a w x h
// surface.
func (b *Balloon) check(now time.Duration, w, h int) Reason {
	if now-b.Born >= b.Lifetime {
		return Expired
	}
	if b.DistanceLimit > 0 && b.Distance() >= b.DistanceLimit {
		return DistanceReached
	}
	hw, hh := float64(b.W)/2, float64(b.H)/2
	outside := b.X < -hw || b.X > float64(w)+hw || b.Y < -hh || b.Y > float64(h)+hh
	if !outside {
		b.entered = true
		return Alive
	}
	if b.entered {
		return Offscreen
	}
	return Alive
}
