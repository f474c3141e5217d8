package balloon

import (
	"context"
	"image"
	"sync/atomic"
	"time"

	"gocomment/internal/clock"
	"gocomment/internal/logging"
)

const (
	// TickInterval is the animation cadence (~60Hz).
	TickInterval = 16 * time.Millisecond
	// MaxStep caps dt so a stalled frame does not teleport balloons.
	MaxStep = 50 * time.Millisecond
	// LayoutRetry is how long a spawn waits for an unsized surface.
	LayoutRetry = 120 * time.Millisecond

	defaultTaskQueue = 256
)

// Options configures a Scheduler. Zero values pick the defaults.
type Options struct {
	Clock      clock.Clock
	Config     *ConfigStore
	NewSurface SurfaceFactory
	Decode     Decoder
	Spawner    *Spawner
	MaxActive  int
	MaxWidth   int
	TaskQueue  int
	// OnRetire is called on the scheduler goroutine for every balloon
	// leaving the active set.
	OnRetire func(b *Balloon, why Reason)
}

// Stats are cumulative counters.
type Stats struct {
	Spawned      uint64
	Retired      uint64
	Evicted      uint64
	DroppedTasks uint64
	Failed       uint64
	// Active is the number of balloons in flight after the last change.
	Active       int
}

type delayedTask struct {
	at time.Duration
	fn func()
}

// Scheduler owns the surface and the active balloons. Tick, Spawn, Start,
// Stop, After and Resize must be called from one goroutine (the window
// host's update loop or Run). Post and PostSpawn are safe from anywhere.
type Scheduler struct {
	clock      clock.Clock
	cfg        *ConfigStore
	newSurface SurfaceFactory
	decode     Decoder
	spawner    *Spawner
	maxActive  int
	maxWidth   int
	onRetire   func(*Balloon, Reason)

	tasks   chan func()
	stopped atomic.Bool

	// owned by the scheduler goroutine
	surface   Surface
	balloons  active
	delayed   []delayedTask
	animating bool
	last      time.Duration
	seq       uint64

	spawned, retired, evicted, dropped, failed atomic.Uint64

	// live mirrors balloons.len() for other goroutines.
	live atomic.Int64
}

func NewScheduler(opts Options) *Scheduler {
	s := &Scheduler{
		clock:      opts.Clock,
		cfg:        opts.Config,
		newSurface: opts.NewSurface,
		decode:     opts.Decode,
		spawner:    opts.Spawner,
		maxActive:  opts.MaxActive,
		maxWidth:   opts.MaxWidth,
		onRetire:   opts.OnRetire,
	}
	if s.clock == nil {
		s.clock = clock.NewMonotonic()
	}
	if s.cfg == nil {
		s.cfg = NewConfigStore(DefaultConfig())
	}
	if s.decode == nil {
		s.decode = DecodeImage
	}
	if s.spawner == nil {
		s.spawner = NewSpawner(nil)
	}
	if s.maxActive <= 0 {
		s.maxActive = DefaultMaxActive
	}
	if s.maxWidth <= 0 {
		s.maxWidth = DefaultMaxWidth
	}
	q := opts.TaskQueue
	if q <= 0 {
		q = defaultTaskQueue
	}
	s.tasks = make(chan func(), q)
	return s
}

// Config returns the live display configuration.
func (s *Scheduler) Config() *ConfigStore { return s.cfg }

// Post queues fn to run on the scheduler goroutine at the start of the
// next tick. It never blocks; false means the task was dropped because
// the scheduler is stopped or the queue is full.
func (s *Scheduler) Post(fn func()) bool {
	if s.stopped.Load() {
		return false
	}
	select {
	case s.tasks <- fn:
		return true
	default:
		s.dropped.Add(1)
		logging.Debug("scheduler task queue full, dropping task")
		return false
	}
}

// PostSpawn queues a spawn of the downloaded stamp image.
func (s *Scheduler) PostSpawn(stampID string, data []byte) bool {
	return s.Post(func() { s.Spawn(stampID, data) })
}

// After runs fn on the scheduler goroutine once d has elapsed.
func (s *Scheduler) After(d time.Duration, fn func()) {
	s.delayed = append(s.delayed, delayedTask{at: s.clock.Now() + d, fn: fn})
}

// Start creates the surface if needed and begins animating.
func (s *Scheduler) Start() error {
	s.stopped.Store(false)
	return s.ensureSurface()
}

func (s *Scheduler) ensureSurface() error {
	if s.surface != nil {
		return nil
	}
	if s.newSurface == nil {
		return errNoSurface
	}
	surf, err := s.newSurface()
	if err != nil {
		return err
	}
	s.surface = surf
	s.animating = true
	s.last = s.clock.Now()
	return nil
}

// Animating reports whether the tick loop is advancing balloons.
func (s *Scheduler) Animating() bool { return s.animating }

// Stop halts animation, removes every balloon, releases the surface and
// discards queued tasks. Spawns that complete afterwards are ignored.
func (s *Scheduler) Stop() {
	s.stopped.Store(true)
	s.animating = false
	s.balloons.each(func(b *Balloon) {
		if s.surface != nil {
			s.surface.Delete(b.sprite)
		}
		s.finish(b, Stopped)
	})
	s.balloons.clear()
	s.publish()
	if s.surface != nil {
		s.surface.Destroy()
		s.surface = nil
	}
	s.delayed = nil
	s.discardTasks()
}

func (s *Scheduler) discardTasks() {
	for {
		select {
		case <-s.tasks:
		default:
			return
		}
	}
}

// Resize moves the surface to r. Balloons keep their positions; bounds
// tests use the new size from the next tick.
func (s *Scheduler) Resize(r image.Rectangle) {
	if s.surface != nil {
		s.surface.Resize(r)
	}
}

// Spawn decodes data and launches a balloon for it. Decode failures drop
// the stamp silently.
func (s *Scheduler) Spawn(stampID string, data []byte) {
	if s.stopped.Load() {
		return
	}
	img, err := s.decode(data)
	if err != nil {
		s.failed.Add(1)
		logging.Debug("stamp decode failed", "stamp", stampID, "err", err)
		return
	}
	s.SpawnImage(stampID, img)
}

// SpawnImage launches a balloon for an already decoded image.
func (s *Scheduler) SpawnImage(stampID string, img image.Image) {
	s.spawnImage(stampID, Shrink(img, s.maxWidth), false)
}

func (s *Scheduler) spawnImage(stampID string, img image.Image, retried bool) {
	if s.stopped.Load() {
		return
	}
	if err := s.ensureSurface(); err != nil {
		s.failed.Add(1)
		logging.Warn("overlay surface unavailable", "stamp", stampID, "err", err)
		return
	}
	sw, sh := s.surface.Size()
	if sw <= 0 || sh <= 0 {
		if retried {
			s.failed.Add(1)
			logging.Debug("surface still unsized, dropping stamp", "stamp", stampID)
			return
		}
		s.After(LayoutRetry, func() { s.spawnImage(stampID, img, true) })
		return
	}

	cfg := s.cfg.Get()
	b := img.Bounds()
	l := s.spawner.Plan(sw, sh, b.Dx(), b.Dy(), cfg)
	s.seq++
	bl := &Balloon{
		StampID:       stampID,
		seq:           s.seq,
		sprite:        s.surface.Draw(img, l.X, l.Y),
		X:             l.X,
		Y:             l.Y,
		VX:            l.VX,
		VY:            l.VY,
		Wobble:        l.Wobble,
		SpawnX:        l.X,
		SpawnY:        l.Y,
		Born:          s.clock.Now(),
		Lifetime:      cfg.Lifetime,
		DistanceLimit: cfg.DistanceLimit,
		W:             b.Dx(),
		H:             b.Dy(),
	}
	s.balloons.push(bl)
	s.spawned.Add(1)
	logging.Debug("balloon spawned", "stamp", stampID, "corner", cfg.Corner, "speed", int(l.Speed), "active", s.balloons.len())

	for s.balloons.len() > s.maxActive {
		old := s.balloons.popOldest()
		s.surface.Delete(old.sprite)
		s.evicted.Add(1)
		s.finish(old, Evicted)
	}
	s.publish()
}

// Tick runs queued tasks, due delayed tasks and one animation step.
func (s *Scheduler) Tick() {
	if s.stopped.Load() {
		s.discardTasks()
		return
	}
	for n := len(s.tasks); n > 0; n-- {
		select {
		case fn := <-s.tasks:
			fn()
		default:
			n = 0
		}
	}
	s.runDelayed()

	if !s.animating || s.surface == nil {
		return
	}
	now := s.clock.Now()
	dt := min(max(now-s.last, 0), MaxStep)
	s.last = now

	w, h := s.surface.Size()
	step := dt.Seconds()
	s.balloons.each(func(b *Balloon) {
		dx, dy := b.step(step)
		s.surface.Move(b.sprite, dx, dy)
		if _, _, ok := s.surface.Position(b.sprite); !ok {
			b.reason = Vanished
			return
		}
		b.reason = b.check(now, w, h)
	})
	s.balloons.compact(func(b *Balloon) bool {
		if b.reason == Alive {
			return true
		}
		s.surface.Delete(b.sprite)
		s.finish(b, b.reason)
		return false
	})
	s.publish()
}

func (s *Scheduler) publish() { s.live.Store(int64(s.balloons.len())) }

func (s *Scheduler) runDelayed() {
	if len(s.delayed) == 0 {
		return
	}
	now := s.clock.Now()
	var due []func()
	kept := s.delayed[:0]
	for _, d := range s.delayed {
		if d.at <= now {
			due = append(due, d.fn)
		} else {
			kept = append(kept, d)
		}
	}
	s.delayed = kept
	for _, fn := range due {
		fn()
	}
}

func (s *Scheduler) finish(b *Balloon, why Reason) {
	b.reason = why
	if why != Evicted {
		s.retired.Add(1)
	}
	if s.onRetire != nil {
		s.onRetire(b, why)
	}
}

// Run drives Tick every interval until ctx is done, then stops.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = TickInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Stop()
			return
		case <-t.C:
			s.Tick()
		}
	}
}

// Len returns the number of active balloons. Scheduler goroutine only;
// other goroutines read Stats().Active.
func (s *Scheduler) Len() int { return s.balloons.len() }

// Balloons returns copies of the active balloons, oldest first.
// Scheduler goroutine only.
func (s *Scheduler) Balloons() []Balloon {
	out := make([]Balloon, 0, s.balloons.len())
	s.balloons.each(func(b *Balloon) { out = append(out, *b) })
	return out
}

// Stats returns the cumulative counters. Safe from any goroutine.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Spawned:      s.spawned.Load(),
		Retired:      s.retired.Load(),
		Evicted:      s.evicted.Load(),
		DroppedTasks: s.dropped.Load(),
		Failed:       s.failed.Load(),
		Active:       int(s.live.Load()),
	}
}
