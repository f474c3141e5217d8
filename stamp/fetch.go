// Package stamp downloads stamp images and hands them to the balloon
// scheduler, dropping repeats of ids it has already admitted.
package stamp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"

	"gocomment/internal/logging"
)

const (
	DefaultTimeout = 10 * time.Second
	// MaxBodySize caps a single image download.
	MaxBodySize    = 8 << 20
	DefaultWorkers = 4
)

// ErrFetch wraps every download failure.
var ErrFetch = errors.New("stamp: fetch failed")

// Fetcher downloads images on background goroutines with a bounded number
// in flight.
type Fetcher struct {
	client  *http.Client
	maxBody int64

	ctx    context.Context
	cancel context.CancelFunc
	slots  sizedwaitgroup.SizedWaitGroup
	wg     sync.WaitGroup
}

// NewFetcher returns a fetcher using client, or a client with
// DefaultTimeout when nil. workers <= 0 means DefaultWorkers.
func NewFetcher(client *http.Client, workers int) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Fetcher{
		client:  client,
		maxBody: MaxBodySize,
		ctx:     ctx,
		cancel:  cancel,
		slots:   sizedwaitgroup.New(workers),
	}
}

// Fetch downloads url and returns the body.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	start := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %v: %v", ErrFetch, url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: GET %v: %v", ErrFetch, url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read %v: %v", ErrFetch, url, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: GET %v: empty body", ErrFetch, url)
	}
	if int64(len(data)) > f.maxBody {
		return nil, fmt.Errorf("%w: %v larger than %s", ErrFetch, url, humanize.Bytes(uint64(f.maxBody)))
	}
	logging.Debug("stamp downloaded", "url", url, "size", humanize.Bytes(uint64(len(data))), "took", time.Since(start).Round(time.Millisecond))
	return data, nil
}

// Go fetches url in the background and calls done with the result. It
// never blocks the caller. After Close, done receives a cancellation
// error.
func (f *Fetcher) Go(url string, done func([]byte, error)) {
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		if err := f.slots.AddWithContext(f.ctx); err != nil {
			done(nil, fmt.Errorf("%w: %v", ErrFetch, err))
			return
		}
		defer f.slots.Done()
		done(f.Fetch(f.ctx, url))
	}()
}

// Close cancels in-flight downloads and waits for their callbacks.
func (f *Fetcher) Close() {
	f.cancel()
	f.wg.Wait()
}
