package main

import (
	"context"
	"time"

	"gocomment/balloon"
	"gocomment/internal/logging"
)

const headlessStatusInterval = 30 * time.Second

// runHeadless animates on a ticker against the in-memory surface and logs
// comments instead of drawing them. It returns when ctx is done.
func runHeadless(ctx context.Context, a *app) {
	a.sched.Post(func() {
		if err := a.sched.Start(); err != nil {
			logError("start: %v", err)
		}
		a.applyArea()
	})
	done := make(chan struct{})
	go func() {
		a.sched.Run(ctx, balloon.TickInterval)
		close(done)
	}()

	status := time.NewTicker(headlessStatusInterval)
	defer status.Stop()
	comments := time.NewTicker(feedInterval)
	defer comments.Stop()
	for {
		select {
		case <-ctx.Done():
			<-done
			return
		case <-comments.C:
			for _, e := range a.queue.Drain() {
				logging.Info("comment", "name", e.Name, "text", e.Text, "time", e.Time)
			}
		case <-status.C:
			logging.Info(a.statusLine(false))
		}
	}
}
