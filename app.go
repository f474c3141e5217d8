package main

import (
	"context"
	"image"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"gocomment/balloon"
	"gocomment/event"
	"gocomment/feed"
	"gocomment/ingest"
	"gocomment/internal/clock"
	"gocomment/internal/recent"
	"gocomment/relay"
	"gocomment/stamp"
)

type appOptions struct {
	server, path, session string
	display               balloon.Config
	surface               balloon.SurfaceFactory
	notify                bool
	// monitor is the size the area region is computed from.
	monitor image.Point
}

// app wires the relay connection, the comment feed and the balloon
// scheduler together. The window host or the headless runner drives it.
type app struct {
	cfg    *balloon.ConfigStore
	norm   *event.Normalizer
	fetch  *stamp.Fetcher
	pipe   *stamp.Pipeline
	sched  *balloon.Scheduler
	queue  *feed.Queue
	router *ingest.Router
	client *relay.Client

	server  string
	session string
	notify  bool
	started time.Time

	mu      sync.Mutex
	monitor image.Point

	state         atomic.Int32
	connected     atomic.Bool
	everConnected atomic.Bool
}

func newApp(o appOptions) (*app, error) {
	a := &app{
		cfg:     balloon.NewConfigStore(o.display),
		queue:   feed.NewQueue(feed.DefaultQueueSize),
		server:  o.server,
		session: o.session,
		notify:  o.notify,
		started: time.Now(),
		monitor: o.monitor,
	}
	a.norm = event.NewNormalizer(clock.NewServerClock(nil), o.server, event.DefaultRecentWindow)
	a.sched = balloon.NewScheduler(balloon.Options{
		Config:     a.cfg,
		NewSurface: o.surface,
		OnRetire: func(b *balloon.Balloon, why balloon.Reason) {
			logDebug("balloon %v retired: %v after %.0fpx", b.StampID, why, b.Distance())
		},
	})
	a.fetch = stamp.NewFetcher(nil, stamp.DefaultWorkers)
	a.pipe = stamp.NewPipeline(recent.New(recent.DefaultSize), a.fetch, a.sched)
	a.router = ingest.NewRouter(a.norm, a.pipe, a.queue, nil)
	a.router.OnState(a.onState)

	client, err := relay.NewClient(relay.Options{
		Server:  o.server,
		Path:    o.path,
		Session: o.session,
	}, a.router)
	if err != nil {
		return nil, err
	}
	a.client = client

	a.cfg.OnChange(func(cfg balloon.Config) {
		a.sched.Post(a.applyArea)
		persistDisplayConfig(cfg)
	})
	return a, nil
}

// start connects to the relay in the background.
func (a *app) start(ctx context.Context) {
	go func() {
		if err := a.client.Run(ctx); err != nil && ctx.Err() == nil {
			logError("relay: %v", err)
		}
	}()
}

func (a *app) close() {
	a.fetch.Close()
}

// setMonitor records the host size and moves the surface. Scheduler
// goroutine only.
func (a *app) setMonitor(w, h int) {
	a.mu.Lock()
	changed := a.monitor != image.Pt(w, h)
	a.monitor = image.Pt(w, h)
	a.mu.Unlock()
	if changed {
		a.applyArea()
	}
}

// applyArea moves the surface to the configured region. Scheduler
// goroutine only.
func (a *app) applyArea() {
	a.sched.Resize(a.region())
}

func (a *app) region() image.Rectangle {
	a.mu.Lock()
	m := a.monitor
	a.mu.Unlock()
	return a.cfg.Get().Area.Region(m.X, m.Y)
}

// sessionPage is the relay's web view of the current session.
func (a *app) sessionPage() string {
	u, err := url.Parse(a.server)
	if err != nil {
		return a.server
	}
	q := u.Query()
	q.Set("session", a.session)
	u.RawQuery = q.Encode()
	return u.String()
}

func (a *app) relayState() relay.State { return relay.State(a.state.Load()) }

func (a *app) onState(s relay.State) {
	a.state.Store(int32(s))
	switch s {
	case relay.Connected:
		logDebug("%s", tr("session", a.session))
		if a.connected.Swap(true) {
			return
		}
		if a.everConnected.Swap(true) && a.notify {
			notifyDesktop("gocomment", tr("relay back"))
		}
	case relay.Disconnected, relay.Failed:
		if a.connected.Swap(false) && a.notify {
			notifyDesktop("gocomment", tr("relay lost"))
		}
	}
}
