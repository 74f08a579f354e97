// Package signaling runs the websocket rooms that carry booking events between
// clients and lawyers.
package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"lawdesk/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrForbiddenRoom = errors.New("not allowed to join room")
	ErrHubClosed     = errors.New("signaling hub closed")
)

// Identity is the authenticated owner of a connection.
type Identity struct {
	AccountID string
	Role      string
	LawyerID  string
	Name      string
}

// HomeRoom is the room a connection joins automatically.
func (id Identity) HomeRoom() string {
	if id.Role == models.RoleLawyer && id.LawyerID != "" {
		return LawyerRoom(id.LawyerID)
	}
	return UserRoom(id.AccountID)
}

func LawyerRoom(lawyerID string) string   { return "lawyer:" + lawyerID }
func UserRoom(userID string) string       { return "user:" + userID }
func BookingRoom(bookingID string) string { return "booking:" + bookingID }

// BookingAuthorizer decides whether id may join a booking room.
type BookingAuthorizer func(ctx context.Context, id Identity, bookingID string) error

// InboundHandler processes a validated event sent by a connection.
type InboundHandler func(ctx context.Context, from Identity, payload interface{}) error

// Hub maintains rooms of connected clients and fans events out to them.
type Hub struct {
	mu       sync.RWMutex
	rooms    map[string]map[*Client]struct{}
	handlers map[string]InboundHandler

	instanceID string
	bus        Bus
	authorize  BookingAuthorizer
	logger     *zap.Logger
	ctx        context.Context
}

type Option func(*Hub)

// WithBus fans events out to other server instances.
func WithBus(b Bus) Option { return func(h *Hub) { h.bus = b } }

// WithAuthorizer guards join-booking.
func WithAuthorizer(a BookingAuthorizer) Option { return func(h *Hub) { h.authorize = a } }

func WithLogger(l *zap.Logger) Option { return func(h *Hub) { h.logger = l } }

func NewHub(opts ...Option) *Hub {
	h := &Hub{
		rooms:      make(map[string]map[*Client]struct{}),
		handlers:   make(map[string]InboundHandler),
		instanceID: uuid.NewString(),
		logger:     zap.L().Named("signaling"),
		ctx:        context.Background(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetAuthorizer installs the join-booking guard after construction.
func (h *Hub) SetAuthorizer(a BookingAuthorizer) {
	h.mu.Lock()
	h.authorize = a
	h.mu.Unlock()
}

// Handle registers fn for an inbound event. Events without a handler are
// relayed to the booking room they name.
func (h *Hub) Handle(event string, fn InboundHandler) {
	h.mu.Lock()
	h.handlers[event] = fn
	h.mu.Unlock()
}

// Run consumes events published by other instances until ctx is done.
func (h *Hub) Run(ctx context.Context) error {
	h.mu.Lock()
	h.ctx = ctx
	h.mu.Unlock()
	if h.bus == nil {
		<-ctx.Done()
		return nil
	}
	return h.bus.Subscribe(ctx, func(f Frame) {
		if f.Origin == h.instanceID {
			return
		}
		h.deliver(f.Room, f.Payload, nil)
	})
}

// Emit validates payload against event and delivers it to every member of room
// on every instance.
func (h *Hub) Emit(ctx context.Context, room, event string, payload interface{}) error {
	env, err := models.NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	if _, err := models.DecodeEvent(event, env.Data); err != nil {
		h.logger.Error("refusing to emit invalid event", zap.String("event", event), zap.String("room", room), zap.Error(err))
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.deliver(room, frame, nil)
	if h.bus != nil {
		if err := h.bus.Publish(ctx, Frame{Origin: h.instanceID, Room: room, Payload: frame}); err != nil {
			h.logger.Warn("fan-out publish failed", zap.String("room", room), zap.String("event", event), zap.Error(err))
		}
	}
	return nil
}

// Online reports whether any local connection is in room.
func (h *Hub) Online(room string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room]) > 0
}

// Members returns the number of local connections in room.
func (h *Hub) Members(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	h.logger.Debug("joined room", zap.String("room", room), zap.String("account", c.identity.AccountID))
}

// unregister removes c from all rooms and closes its send channel once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for room := range c.rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	close(c.send)
}

// deliver queues frame to every local member of room except skip. Members
// whose buffer is full are disconnected.
func (h *Hub) deliver(room string, frame []byte, skip *Client) {
	var slow []*Client

	h.mu.RLock()
	for c := range h.rooms[room] {
		if c == skip || c.closed {
			continue
		}
		select {
		case c.send <- frame:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.logger.Warn("dropping slow client", zap.String("account", c.identity.AccountID), zap.String("room", room))
		h.unregister(c)
	}
}

// sendTo queues frame for a single connection.
func (h *Hub) sendTo(c *Client, frame []byte) {
	dropped := false
	h.mu.RLock()
	if !c.closed {
		select {
		case c.send <- frame:
		default:
			dropped = true
		}
	}
	h.mu.RUnlock()
	if dropped {
		h.unregister(c)
	}
}

func (h *Hub) sendError(c *Client, event string, err error) {
	env, _ := models.NewEnvelope(models.EventError, models.ErrorPayload{Event: event, Message: err.Error()})
	frame, _ := json.Marshal(env)
	h.sendTo(c, frame)
}

// dispatch handles one inbound frame from c.
func (h *Hub) dispatch(c *Client, raw []byte) {
	var env models.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.sendError(c, "", fmt.Errorf("%w: malformed frame", models.ErrInvalidEvent))
		return
	}
	payload, err := models.DecodeEvent(env.Event, env.Data)
	if err != nil {
		h.sendError(c, env.Event, err)
		return
	}

	h.mu.RLock()
	base := h.ctx
	handler := h.handlers[env.Event]
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(base, 10*time.Second)
	defer cancel()

	switch p := payload.(type) {
	case *models.JoinPayload:
		err = h.joinIdentity(c, env.Event, p.ID)
	case *models.JoinBookingPayload:
		err = h.joinBooking(ctx, c, p.BookingID)
	default:
		if handler != nil {
			err = handler(ctx, c.identity, payload)
		} else {
			err = h.relay(ctx, c, env.Event, payload)
		}
	}
	if err != nil {
		h.logger.Debug("inbound event refused", zap.String("event", env.Event), zap.String("account", c.identity.AccountID), zap.Error(err))
		h.sendError(c, env.Event, err)
	}
}

func (h *Hub) joinIdentity(c *Client, event, id string) error {
	var room string
	switch {
	case event == models.EventJoinLawyer && c.identity.Role == models.RoleLawyer && id == c.identity.LawyerID:
		room = LawyerRoom(id)
	case event == models.EventJoinUser && id == c.identity.AccountID:
		room = UserRoom(id)
	default:
		return ErrForbiddenRoom
	}
	h.join(c, room)
	return nil
}

func (h *Hub) joinBooking(ctx context.Context, c *Client, bookingID string) error {
	h.mu.RLock()
	authorize := h.authorize
	h.mu.RUnlock()
	if authorize != nil {
		if err := authorize(ctx, c.identity, bookingID); err != nil {
			return fmt.Errorf("%w: %v", ErrForbiddenRoom, err)
		}
	}
	h.join(c, BookingRoom(bookingID))
	return nil
}

// relay forwards an unhandled event to the other members of its booking room.
// The sender must already be in that room. The frame is re-encoded with the
// sender stamped from the connection identity.
func (h *Hub) relay(ctx context.Context, c *Client, event string, payload interface{}) error {
	bookingID := bookingOf(payload)
	if bookingID == "" {
		return fmt.Errorf("%w: %s cannot be relayed", models.ErrInvalidEvent, event)
	}
	room := BookingRoom(bookingID)
	h.mu.RLock()
	_, member := c.rooms[room]
	h.mu.RUnlock()
	if !member {
		return ErrForbiddenRoom
	}

	switch p := payload.(type) {
	case *models.TypingPayload:
		p.SenderID = c.identity.AccountID
	case *models.Message:
		p.SenderID = c.identity.AccountID
		p.SenderRole = c.identity.Role
	}
	env, err := models.NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode frame: %w", err)
	}

	h.deliver(room, frame, c)
	if h.bus != nil {
		if err := h.bus.Publish(ctx, Frame{Origin: h.instanceID, Room: room, Payload: frame}); err != nil {
			h.logger.Warn("fan-out publish failed", zap.String("room", room), zap.String("event", event), zap.Error(err))
		}
	}
	return nil
}

func bookingOf(payload interface{}) string {
	switch p := payload.(type) {
	case *models.TypingPayload:
		return p.BookingID
	case *models.Message:
		return p.BookingID
	case *models.EndSessionPayload:
		return p.BookingID
	case *models.CallStatusPayload:
		return p.BookingID
	case *models.BookingAcceptedPayload:
		return p.BookingID
	}
	return ""
}
