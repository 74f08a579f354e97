// Package consult is the client side of a consultation: the signaling
// channel, checkout and verification, the acceptance handshake, media
// sessions and chat.
package consult

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"lawdesk/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Pseudo events delivered to On handlers when the connection changes state.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

var (
	ErrNotConnected = errors.New("signaling channel is not connected")
	ErrClosed       = errors.New("signaling channel is closed")
)

// Status is the connection state of a Channel.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusDisconnected Status = "disconnected"
	StatusFailed       Status = "failed"
)

// Credentials identify the local participant to the signaling server. ID is
// the lawyer id for lawyers and the account id for clients.
type Credentials struct {
	URL   string
	Token string
	ID    string
	Role  string
}

// Options tune reconnection.
type Options struct {
	MaxAttempts int
	Backoff     time.Duration
	Dialer      *websocket.Dialer
	Logger      *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 5
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Handler receives the raw data of an inbound event.
type Handler func(data json.RawMessage)

type subscription struct {
	id int
	fn Handler
}

// Channel owns one signaling connection. Handlers run on the read goroutine,
// one at a time, in arrival order.
type Channel struct {
	creds Credentials
	opts  Options

	mu       sync.Mutex
	status   Status
	conn     *websocket.Conn
	handlers map[string][]subscription
	nextID   int

	writeMu   sync.Mutex
	ready     chan struct{}
	readyOnce sync.Once
	failed    chan struct{}
	cancel    context.CancelFunc
	done      chan struct{}

	dispatching atomic.Bool
}

// Dial starts connecting in the background and returns at once. Use Ready or
// Wait to learn when the channel is usable.
func Dial(ctx context.Context, creds Credentials, opts Options) (*Channel, error) {
	if creds.URL == "" {
		return nil, errors.New("signaling url is required")
	}
	if creds.Role != models.RoleLawyer && creds.Role != models.RoleClient {
		return nil, errors.New("role must be lawyer or client")
	}
	ctx, cancel := context.WithCancel(ctx)
	c := &Channel{
		creds:    creds,
		opts:     opts.withDefaults(),
		status:   StatusConnecting,
		handlers: make(map[string][]subscription),
		ready:    make(chan struct{}),
		failed:   make(chan struct{}),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go c.run(ctx)
	return c, nil
}

// Ready is closed once, on the first successful connect.
func (c *Channel) Ready() <-chan struct{} { return c.ready }

// Wait blocks until the channel has connected once, has given up, or ctx ends.
func (c *Channel) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-c.failed:
		return ErrNotConnected
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Channel) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Channel) setStatus(s Status) {
	c.mu.Lock()
	c.status = s
	c.mu.Unlock()
}

// On subscribes fn to event and returns a function that removes it.
func (c *Channel) On(event string, fn Handler) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.handlers[event] = append(c.handlers[event], subscription{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		subs := c.handlers[event]
		for i, s := range subs {
			if s.id == id {
				c.handlers[event] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Emit sends one event. There is no acknowledgement.
func (c *Channel) Emit(event string, payload interface{}) error {
	env, err := models.NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	status := c.status
	c.mu.Unlock()
	if conn == nil || status != StatusConnected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, frame)
}

// Done is closed once the channel has stopped for good.
func (c *Channel) Done() <-chan struct{} { return c.done }

// Disconnect closes the connection and stops reconnecting, then waits for the
// read goroutine to exit. While a handler is running it returns without
// waiting, so handlers may call it; Done reports when the channel has stopped.
func (c *Channel) Disconnect() {
	c.cancel()
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
	if c.dispatching.Load() {
		return
	}
	<-c.done
}

func (c *Channel) run(ctx context.Context) {
	defer close(c.done)
	attempts := 0
	for {
		conn, err := c.dial(ctx)
		if err != nil {
			if ctx.Err() != nil {
				c.setStatus(StatusDisconnected)
				return
			}
			attempts++
			c.opts.Logger.Warn("signaling connect failed", zap.Int("attempt", attempts), zap.Error(err))
			if attempts >= c.opts.MaxAttempts {
				c.setStatus(StatusFailed)
				close(c.failed)
				return
			}
			if !wait(ctx, c.opts.Backoff) {
				c.setStatus(StatusDisconnected)
				return
			}
			continue
		}
		attempts = 0

		c.mu.Lock()
		c.conn = conn
		c.status = StatusConnected
		c.mu.Unlock()

		c.announce()
		c.readyOnce.Do(func() { close(c.ready) })
		c.dispatch(EventConnect, nil)

		c.readLoop(conn)

		c.mu.Lock()
		c.conn = nil
		c.status = StatusConnecting
		c.mu.Unlock()
		_ = conn.Close()
		c.dispatch(EventDisconnect, nil)

		if ctx.Err() != nil {
			c.setStatus(StatusDisconnected)
			return
		}
	}
}

func (c *Channel) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if c.creds.Token != "" {
		header.Set("Authorization", "Bearer "+c.creds.Token)
	}
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.creds.URL, header)
	return conn, err
}

// announce joins the identity room so the server can target this participant.
func (c *Channel) announce() {
	event := models.EventJoinUser
	if c.creds.Role == models.RoleLawyer {
		event = models.EventJoinLawyer
	}
	if err := c.Emit(event, models.JoinPayload{ID: c.creds.ID}); err != nil {
		c.opts.Logger.Warn("identity announce failed", zap.Error(err))
	}
}

func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var env models.Envelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.opts.Logger.Debug("ignoring malformed frame")
			continue
		}
		c.dispatch(env.Event, env.Data)
	}
}

func (c *Channel) dispatch(event string, data json.RawMessage) {
	c.mu.Lock()
	subs := append([]subscription(nil), c.handlers[event]...)
	c.mu.Unlock()
	if len(subs) == 0 {
		return
	}
	c.dispatching.Store(true)
	defer c.dispatching.Store(false)
	for _, s := range subs {
		s.fn(data)
	}
}

func wait(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
