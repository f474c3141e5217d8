package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Engine.IO packet types.
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
	eioNoop    = '6'
)

// Socket.IO packet types, carried inside an Engine.IO message.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

var errBadPacket = errors.New("relay: malformed packet")

type openPacket struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

// deadline is how long the server may stay silent before the connection
// counts as dead.
func (o openPacket) deadline() time.Duration {
	d := time.Duration(o.PingInterval+o.PingTimeout) * time.Millisecond
	if d <= 0 {
		return defaultReadTimeout
	}
	return d
}

func parseOpen(msg string) (openPacket, error) {
	var o openPacket
	if len(msg) == 0 || msg[0] != eioOpen {
		return o, fmt.Errorf("%w: expected open, got %q", errBadPacket, truncate(msg))
	}
	if err := json.Unmarshal([]byte(msg[1:]), &o); err != nil {
		return o, fmt.Errorf("%w: open: %v", errBadPacket, err)
	}
	return o, nil
}

// parseEvent decodes the body of a Socket.IO EVENT packet (everything
// after the type byte): an optional "/namespace," prefix, an optional ack
// id and a JSON array whose first element is the event name.
func parseEvent(body string) (name string, payload any, err error) {
	if strings.HasPrefix(body, "/") {
		i := strings.IndexByte(body, ',')
		if i < 0 {
			return "", nil, fmt.Errorf("%w: unterminated namespace", errBadPacket)
		}
		body = body[i+1:]
	}
	body = strings.TrimLeft(body, "0123456789")

	var args []json.RawMessage
	if err := json.Unmarshal([]byte(body), &args); err != nil {
		return "", nil, fmt.Errorf("%w: event: %v", errBadPacket, err)
	}
	if len(args) == 0 {
		return "", nil, fmt.Errorf("%w: event without name", errBadPacket)
	}
	if err := json.Unmarshal(args[0], &name); err != nil {
		return "", nil, fmt.Errorf("%w: event name: %v", errBadPacket, err)
	}
	if len(args) > 1 {
		if err := json.Unmarshal(args[1], &payload); err != nil {
			return "", nil, fmt.Errorf("%w: %s payload: %v", errBadPacket, name, err)
		}
	}
	return name, payload, nil
}

func truncate(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}
