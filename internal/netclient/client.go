// Package netclient maintains the websocket connection to the WorldSim
// backend: dialing, exponential-backoff reconnects, frame decoding into the
// snapshot store, and fire-and-forget control commands.
package netclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kestrelworks/worldview/internal/protocol"
	"github.com/kestrelworks/worldview/internal/state"
)

// Status is the observable connection state, driven by the client and read
// by the HUD connection badge.
type Status int32

const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
)

func (s Status) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ErrNotConnected is returned by outbound sends while the link is down.
// Control commands are suppressed, not queued, during an outage.
var ErrNotConnected = errors.New("not connected")

// FrameSink receives every raw inbound frame before decoding (used by the
// session journal). Errors are logged, never fatal.
type FrameSink interface {
	Record(frame []byte) error
}

// Options configures a Client.
type Options struct {
	URL          string
	Store        *state.Store
	ReconnectMin time.Duration
	ReconnectMax time.Duration
	PingInterval time.Duration
	Sink         FrameSink                // optional stream capture
	OnEvent      func(kind, detail string) // optional: control_ack / pong / error / connection notices
}

// Client owns one logical connection to the backend for its lifetime,
// reconnecting with capped exponential backoff whenever the link drops.
type Client struct {
	opts   Options
	status atomic.Int32

	writeMu sync.Mutex
	conn    *websocket.Conn
}

// New creates a client. Run must be called to start it.
func New(opts Options) *Client {
	if opts.ReconnectMin <= 0 {
		opts.ReconnectMin = 500 * time.Millisecond
	}
	if opts.ReconnectMax < opts.ReconnectMin {
		opts.ReconnectMax = 15 * time.Second
	}
	return &Client{opts: opts}
}

// Status returns the current connection state.
func (c *Client) Status() Status {
	return Status(c.status.Load())
}

// Connected reports whether outbound sends will currently be attempted.
func (c *Client) Connected() bool {
	return c.Status() == StatusConnected
}

// SetOnEvent installs the event callback. Must be called before Run; the
// callback fires on the reader goroutine.
func (c *Client) SetOnEvent(fn func(kind, detail string)) {
	c.opts.OnEvent = fn
}

// Run dials and serves the connection until ctx is cancelled, reconnecting
// on every failure. Intended to run on its own goroutine; decoded snapshots
// land in the store, which the frame driver polls.
func (c *Client) Run(ctx context.Context) {
	delay := c.opts.ReconnectMin
	for {
		if ctx.Err() != nil {
			return
		}
		c.status.Store(int32(StatusConnecting))
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.opts.URL, nil)
		if err != nil {
			c.status.Store(int32(StatusDisconnected))
			c.event("net", fmt.Sprintf("dial failed, retrying in %s", delay))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			delay = NextDelay(delay, c.opts.ReconnectMin, c.opts.ReconnectMax)
			continue
		}

		delay = c.opts.ReconnectMin
		c.setConn(conn)
		c.status.Store(int32(StatusConnected))
		c.event("net", "connected")

		// The snapshot held from before the outage keeps rendering, but it
		// is no merge baseline anymore: ask for a fresh full state and
		// reject deltas until it lands.
		c.opts.Store.InvalidateBaseline()
		if err := c.send(protocol.NewRequestState()); err != nil {
			log.Printf("netclient: request_state: %v", err)
		}

		c.serve(ctx, conn)

		c.setConn(nil)
		c.status.Store(int32(StatusDisconnected))
		c.event("net", "disconnected")
	}
}

// serve reads frames until the connection fails or ctx is cancelled.
func (c *Client) serve(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	stopPing := make(chan struct{})
	defer close(stopPing)
	if c.opts.PingInterval > 0 {
		go c.pingLoop(stopPing)
	}

	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stopPing:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.Printf("netclient: read: %v", err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

// handleFrame journals, decodes and applies one inbound frame. Every failure
// mode here is log-and-drop; the last-known-good snapshot keeps rendering.
func (c *Client) handleFrame(raw []byte) {
	if c.opts.Sink != nil {
		if err := c.opts.Sink.Record(raw); err != nil {
			log.Printf("netclient: journal: %v", err)
		}
	}

	env, err := protocol.Decode(raw)
	if err != nil {
		log.Printf("netclient: dropping frame: %v", err)
		return
	}

	switch env.Type {
	case protocol.TypeInitialState, protocol.TypeSimulationReset, protocol.TypeStateUpdate:
		p, err := protocol.DecodePayload(env)
		if err != nil {
			log.Printf("netclient: dropping %s: %v", env.Type, err)
			return
		}
		if p.Full != nil {
			c.opts.Store.ApplyFull(p.Full)
			return
		}
		if _, err := c.opts.Store.ApplyCompact(p.Compact); err != nil {
			// No baseline yet: wait for the next full snapshot.
			log.Printf("netclient: dropping delta: %v", err)
		}

	case protocol.TypeControlAck:
		c.event("control_ack", string(env.Data))
	case protocol.TypePong:
		c.event("pong", "")
	case protocol.TypeError:
		c.event("error", env.Message)
		log.Printf("netclient: backend error: %s", env.Message)
	}
}

func (c *Client) pingLoop(stop <-chan struct{}) {
	t := time.NewTicker(c.opts.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			if err := c.send(protocol.NewPing()); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

// SendControl issues a start/pause/reset command.
func (c *Client) SendControl(action string) error {
	return c.send(protocol.NewControl(action))
}

// RequestState asks for an immediate full snapshot.
func (c *Client) RequestState() error {
	return c.send(protocol.NewRequestState())
}

func (c *Client) send(msg any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.conn == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, b)
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.writeMu.Lock()
	c.conn = conn
	c.writeMu.Unlock()
}

func (c *Client) event(kind, detail string) {
	if c.opts.OnEvent != nil {
		c.opts.OnEvent(kind, detail)
	}
}

// NextDelay doubles a backoff delay up to the cap.
func NextDelay(cur, min, max time.Duration) time.Duration {
	next := cur * 2
	if next < min {
		next = min
	}
	if next > max {
		next = max
	}
	return next
}
