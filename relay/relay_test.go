package relay

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

type recorder struct {
	mu       sync.Mutex
	history  []any
	comments []any
	states   []State
	events   chan string
}

func newRecorder() *recorder { return &recorder{events: make(chan string, 256)} }

func (r *recorder) History(p any) {
	r.mu.Lock()
	r.history = append(r.history, p)
	r.mu.Unlock()
	r.notify("history")
}

func (r *recorder) NewComment(p any) {
	r.mu.Lock()
	r.comments = append(r.comments, p)
	r.mu.Unlock()
	r.notify("new_comment")
}

func (r *recorder) State(s State) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
	r.notify(s.String())
}

func (r *recorder) notify(ev string) {
	select {
	case r.events <- ev:
	default:
	}
}

func (r *recorder) waitFor(t *testing.T, want string) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case got := <-r.events:
			if got == want {
				return
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

var upgrader = websocket.Upgrader{}

// relayServer speaks just enough Engine.IO to drive a client. script runs
// after the namespace handshake.
func relayServer(script func(conn *websocket.Conn)) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("EIO") != "4" || r.URL.Query().Get("session") == "" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"s1","pingInterval":300,"pingTimeout":200}`))
		_, msg, err := conn.ReadMessage()
		if err != nil || string(msg) != "40" {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"n1"}`))
		script(conn)
	}))
}

func TestClientDeliversEvents(t *testing.T) {
	pong := make(chan string, 1)
	srv := relayServer(func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`42["history",[{"name":"a","text":"hi"}]]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`2`))
		_, msg, _ := conn.ReadMessage()
		select {
		case pong <- string(msg):
		default:
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`42["new_comment",{"stamp":"/x.png","id":"7"}]`))
		conn.WriteMessage(websocket.TextMessage, []byte(`42["unrelated",1]`))
		time.Sleep(50 * time.Millisecond)
	})
	defer srv.Close()

	rec := newRecorder()
	c, err := NewClient(Options{Server: srv.URL, Session: "test", Limiter: rate.NewLimiter(rate.Inf, 1)}, rec)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	rec.waitFor(t, "connected")
	rec.waitFor(t, "history")
	rec.waitFor(t, "new_comment")
	if got := <-pong; got != "3" {
		t.Fatalf("expected pong 3, got %q", got)
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	list, ok := rec.history[0].([]any)
	if !ok || len(list) != 1 {
		t.Fatalf("expected one history entry, got %#v", rec.history[0])
	}
	m, ok := rec.comments[0].(map[string]any)
	if !ok || m["stamp"] != "/x.png" {
		t.Fatalf("expected stamp payload, got %#v", rec.comments[0])
	}
	if rec.states[0] != Connecting || rec.states[1] != Connected {
		t.Fatalf("expected connecting then connected, got %v", rec.states)
	}
	if c.State() != Disconnected {
		t.Fatalf("expected disconnected after cancel, got %v", c.State())
	}
}

func TestClientReconnects(t *testing.T) {
	var mu sync.Mutex
	n := 0
	srv := relayServer(func(conn *websocket.Conn) {
		mu.Lock()
		n++
		mu.Unlock()
		conn.WriteMessage(websocket.TextMessage, []byte(`1`))
	})
	defer srv.Close()

	rec := newRecorder()
	c, _ := NewClient(Options{Server: srv.URL, Limiter: rate.NewLimiter(rate.Every(10*time.Millisecond), 1)}, rec)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	rec.waitFor(t, "connected")
	rec.waitFor(t, "disconnected")
	rec.waitFor(t, "connected")
	cancel()
	mu.Lock()
	defer mu.Unlock()
	if n < 2 {
		t.Fatalf("expected at least 2 sessions, got %d", n)
	}
}

func TestClientReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	rec := newRecorder()
	c, err := NewClient(Options{Server: url, Limiter: rate.NewLimiter(rate.Every(time.Hour), 1)}, rec)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)
	rec.waitFor(t, "failed")
	if c.State() != Failed {
		t.Fatalf("expected failed, got %v", c.State())
	}
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		server, path, session string
		want                  string
		wantErr               bool
	}{
		{"http://host:5000", "", "", "ws://host:5000/socket.io/?EIO=4&session=default&transport=websocket", false},
		{"https://relay.example.com", "relay/socket.io", "room 1", "wss://relay.example.com/relay/socket.io/?EIO=4&session=room+1&transport=websocket", false},
		{"ftp://host", "", "", "", true},
		{"http://", "", "", "", true},
	}
	for _, tt := range tests {
		got, err := SocketURL(tt.server, tt.path, tt.session)
		if (err != nil) != tt.wantErr {
			t.Fatalf("%s: expected err=%v, got %v", tt.server, tt.wantErr, err)
		}
		if got != tt.want {
			t.Fatalf("%s: expected %q, got %q", tt.server, tt.want, got)
		}
	}
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		body    string
		name    string
		wantErr bool
	}{
		{`["new_comment",{"name":"a"}]`, "new_comment", false},
		{`/chat,["history",[]]`, "history", false},
		{`12["history",[]]`, "history", false},
		{`["ping"]`, "ping", false},
		{`[]`, "", true},
		{`/chat`, "", true},
		{`not json`, "", true},
		{`[1,2]`, "", true},
	}
	for _, tt := range tests {
		name, _, err := parseEvent(tt.body)
		if (err != nil) != tt.wantErr || name != tt.name {
			t.Fatalf("%s: expected %q err=%v, got %q err=%v", tt.body, tt.name, tt.wantErr, name, err)
		}
	}
}

func TestParseOpen(t *testing.T) {
	o, err := parseOpen(`0{"sid":"x","pingInterval":25000,"pingTimeout":20000}`)
	if err != nil || o.deadline() != 45*time.Second {
		t.Fatalf("expected 45s deadline, got %v err=%v", o.deadline(), err)
	}
	if _, err := parseOpen(`40`); !errors.Is(err, errBadPacket) {
		t.Fatalf("expected errBadPacket, got %v", err)
	}
	if !strings.HasSuffix(truncate(strings.Repeat("x", 50)), "...") {
		t.Fatalf("expected long packets to be truncated")
	}
}
