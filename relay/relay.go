// Package relay is a minimal Socket.IO v4 client for the comment relay.
// It delivers decoded history and new_comment payloads to a Handler and
// reconnects until its context is cancelled.
package relay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"gocomment/internal/logging"
)

const (
	DefaultPath    = "/socket.io/"
	DefaultSession = "default"

	// ReconnectInterval paces connection attempts.
	ReconnectInterval = 2 * time.Second

	handshakeTimeout   = 10 * time.Second
	defaultReadTimeout = 45 * time.Second
	writeTimeout       = 5 * time.Second
)

var (
	ErrRejected = errors.New("relay: namespace connect rejected")
	errClosed   = errors.New("relay: server closed the session")
)

// State is the connection state reported to the Handler.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	// Failed means the last attempt did not get as far as Connected.
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Handler receives relay events. Calls come from the client's goroutine
// and must not block for long.
type Handler interface {
	History(payload any)
	NewComment(payload any)
	State(s State)
}

// Options configures a Client.
type Options struct {
	// Server is the relay base URL, e.g. https://relay.example.com.
	Server  string
	Path    string
	Session string
	Header  http.Header
	Dialer  *websocket.Dialer
	// Limiter paces reconnects. Nil means one attempt per
	// ReconnectInterval.
	Limiter *rate.Limiter
}

type Client struct {
	url     string
	header  http.Header
	dialer  *websocket.Dialer
	limiter *rate.Limiter
	handler Handler

	mu    sync.RWMutex
	state State
}

func NewClient(opts Options, h Handler) (*Client, error) {
	u, err := SocketURL(opts.Server, opts.Path, opts.Session)
	if err != nil {
		return nil, err
	}
	c := &Client{
		url:     u,
		header:  opts.Header,
		dialer:  opts.Dialer,
		limiter: opts.Limiter,
		handler: h,
	}
	if c.dialer == nil {
		c.dialer = &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		}
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Every(ReconnectInterval), 1)
	}
	return c, nil
}

// SocketURL builds the websocket endpoint for server, path and session.
func SocketURL(server, path, session string) (string, error) {
	u, err := url.Parse(server)
	if err != nil {
		return "", fmt.Errorf("relay: server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("relay: unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("relay: server url %q has no host", server)
	}
	if path == "" {
		path = DefaultPath
	}
	u.Path = "/" + strings.Trim(path, "/") + "/"
	if session == "" {
		session = DefaultSession
	}
	q := url.Values{}
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	q.Set("session", session)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// URL returns the websocket endpoint.
func (c *Client) URL() string { return c.url }

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	changed := c.state != s
	c.state = s
	c.mu.Unlock()
	if changed && c.handler != nil {
		c.handler.State(s)
	}
}

// Run connects and serves events until ctx is done, reconnecting after
// every failure. It returns ctx.Err().
func (c *Client) Run(ctx context.Context) error {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			c.setState(Disconnected)
			return ctx.Err()
		}
		c.setState(Connecting)
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			c.setState(Disconnected)
			return ctx.Err()
		}
		if connected {
			logging.Warn("relay disconnected", "err", err)
			c.setState(Disconnected)
		} else {
			logging.Warn("relay connect failed", "url", c.url, "err", err)
			c.setState(Failed)
		}
	}
}

func (c *Client) session(ctx context.Context) (connected bool, err error) {
	conn, resp, err := c.dialer.DialContext(ctx, c.url, c.header)
	if err != nil {
		if resp != nil {
			return false, fmt.Errorf("dial %v: %v: %w", c.url, resp.Status, err)
		}
		return false, fmt.Errorf("dial %v: %w", c.url, err)
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	msg, err := readText(conn)
	if err != nil {
		return false, err
	}
	open, err := parseOpen(msg)
	if err != nil {
		return false, err
	}
	logging.Debug("relay open", "sid", open.SID, "ping", open.PingInterval, "timeout", open.PingTimeout)
	if err := writeText(conn, string([]byte{eioMessage, sioConnect})); err != nil {
		return false, err
	}

	for {
		conn.SetReadDeadline(time.Now().Add(open.deadline()))
		msg, err := readText(conn)
		if err != nil {
			return connected, err
		}
		if len(msg) == 0 {
			continue
		}
		switch msg[0] {
		case eioPing:
			if err := writeText(conn, string(eioPong)+msg[1:]); err != nil {
				return connected, err
			}
		case eioClose:
			return connected, errClosed
		case eioNoop, eioPong:
		case eioMessage:
			if len(msg) < 2 {
				continue
			}
			switch msg[1] {
			case sioConnect:
				connected = true
				c.setState(Connected)
				logging.Info("relay connected", "url", c.url)
			case sioDisconnect:
				return connected, errClosed
			case sioConnectError:
				return connected, fmt.Errorf("%w: %s", ErrRejected, msg[2:])
			case sioEvent:
				c.dispatch(msg[2:])
			case sioAck:
			}
		default:
			logging.Debug("relay packet ignored", "packet", truncate(msg))
		}
	}
}

func (c *Client) dispatch(body string) {
	name, payload, err := parseEvent(body)
	if err != nil {
		logging.Debug("relay event dropped", "err", err)
		return
	}
	if c.handler == nil {
		return
	}
	switch name {
	case "history":
		c.handler.History(payload)
	case "new_comment":
		c.handler.NewComment(payload)
	default:
		logging.Debug("relay event ignored", "event", name)
	}
}

func readText(conn *websocket.Conn) (string, error) {
	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if typ == websocket.TextMessage {
			return string(data), nil
		}
	}
}

func writeText(conn *websocket.Conn, msg string) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteMessage(websocket.TextMessage, []byte(msg))
}
