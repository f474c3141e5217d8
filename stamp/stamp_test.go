package stamp

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"gocomment/event"
	"gocomment/internal/recent"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Write([]byte("png-bytes"))
		case "/big.png":
			w.Write(bytes.Repeat([]byte{1}, 64))
		case "/empty.png":
		case "/partial.png":
			w.WriteHeader(http.StatusNonAuthoritativeInfo)
			w.Write([]byte("203-bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 2)
	defer f.Close()
	f.maxBody = 32

	data, err := f.Fetch(context.Background(), srv.URL+"/ok.png")
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("expected body, got %q err=%v", data, err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/missing.png"); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch for 404, got %v", err)
	}
	if _, err := f.Fetch(context.Background(), srv.URL+"/big.png"); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch for oversized body, got %v", err)
	}
	if data, err := f.Fetch(context.Background(), srv.URL+"/empty.png"); !errors.Is(err, ErrFetch) || data != nil {
		t.Fatalf("expected ErrFetch for empty body, got %q err=%v", data, err)
	}
	if data, err := f.Fetch(context.Background(), srv.URL+"/partial.png"); err != nil || string(data) != "203-bytes" {
		t.Fatalf("expected any 2xx accepted, got %q err=%v", data, err)
	}
	if _, err := f.Fetch(context.Background(), "://bad"); !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch for bad url, got %v", err)
	}
}

func TestGoCancelledByClose(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFetcher(srv.Client(), 1)
	errc := make(chan error, 1)
	f.Go(srv.URL, func(_ []byte, err error) { errc <- err })
	time.Sleep(20 * time.Millisecond)
	f.Close()
	select {
	case err := <-errc:
		if !errors.Is(err, ErrFetch) {
			t.Fatalf("expected ErrFetch after close, got %v", err)
		}
	default:
		t.Fatalf("expected callback before Close returned")
	}
}

type sink struct {
	mu  sync.Mutex
	got []string
	ch  chan string
}

func (s *sink) PostSpawn(id string, data []byte) bool {
	s.mu.Lock()
	s.got = append(s.got, id+":"+string(data))
	s.mu.Unlock()
	s.ch <- id
	return true
}

// syncGetter completes downloads inline.
type syncGetter map[string]string

func (g syncGetter) Go(url string, done func([]byte, error)) {
	if body, ok := g[url]; ok {
		done([]byte(body), nil)
		return
	}
	done(nil, ErrFetch)
}

func TestPipelineDeduplicates(t *testing.T) {
	s := &sink{ch: make(chan string, 4)}
	p := NewPipeline(recent.New(8), syncGetter{"http://x/a.png": "A"}, s)

	if !p.Submit(event.Stamp{ID: "1", URL: "http://x/a.png"}) {
		t.Fatalf("expected first submit to be admitted")
	}
	if p.Submit(event.Stamp{ID: "1", URL: "http://x/a.png"}) {
		t.Fatalf("expected repeat to be rejected")
	}
	if !p.Submit(event.Stamp{ID: "2", URL: "http://x/missing.png"}) {
		t.Fatalf("expected new id to be admitted even if the fetch fails")
	}
	if p.Submit(event.Stamp{ID: "2", URL: "http://x/a.png"}) {
		t.Fatalf("expected failed id to stay remembered")
	}
	if len(s.got) != 1 || s.got[0] != "1:A" {
		t.Fatalf("expected one spawn 1:A, got %v", s.got)
	}
}

func TestPipelineWithFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client(), 2)
	defer f.Close()
	s := &sink{ch: make(chan string, 4)}
	p := NewPipeline(nil, f, s)
	p.Submit(event.Stamp{ID: "x", URL: srv.URL + "/x.png"})

	select {
	case id := <-s.ch:
		if id != "x" {
			t.Fatalf("expected x, got %s", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for spawn")
	}
	if p.IDs().Len() != 1 {
		t.Fatalf("expected 1 remembered id, got %d", p.IDs().Len())
	}
}
