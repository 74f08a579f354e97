package consult

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"lawdesk/models"
	"lawdesk/services/lifecycle"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultTypingTimeout is how long a typing indicator stays up without a refresh.
const DefaultTypingTimeout = 2 * time.Second

var ErrSessionLocked = errors.New("chat session has ended")

// MessageStore persists messages and loads history.
type MessageStore interface {
	SendMessage(ctx context.Context, msg models.Message) (*models.Message, error)
	History(ctx context.Context, bookingID string) ([]models.Message, error)
}

// TokenSource issues hosted chat tokens.
type TokenSource interface {
	ChatToken(ctx context.Context, username string) (*models.ChatToken, error)
}

// Transport is the optional hosted chat service.
type Transport interface {
	Connect(ctx context.Context, token *models.ChatToken) error
	Send(ctx context.Context, msg models.Message) error
	OnMessage(fn func(models.Message))
	Close() error
}

// Participant is the local sender.
type Participant struct {
	ID   string
	Name string
	Role string
}

// ChatConfig wires a ChatSession. Transport, Tokens and Ticks are optional.
type ChatConfig struct {
	Booking       models.Booking
	Self          Participant
	Duration      int
	Signal        Signal
	Store         MessageStore
	Transport     Transport
	Tokens        TokenSource
	Ticks         <-chan time.Time
	TypingTimeout time.Duration
	Now           func() time.Time
	Logger        *zap.Logger
}

// ChatSession is the live view of one chat consultation.
type ChatSession struct {
	cfg   ChatConfig
	timer *lifecycle.Timer

	mu        sync.Mutex
	status    string
	messages  []models.Message
	seen      map[string]struct{}
	typing    map[string]*time.Timer
	transport Transport
	unsubs    []func()
	cancel    context.CancelFunc
}

func NewChatSession(cfg ChatConfig) *ChatSession {
	if cfg.Duration <= 0 {
		cfg.Duration = models.DefaultSessionSeconds
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.TypingTimeout <= 0 {
		cfg.TypingTimeout = DefaultTypingTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &ChatSession{
		cfg:    cfg,
		timer:  lifecycle.NewTimer(cfg.Duration),
		status: models.StatusActive,
		seen:   make(map[string]struct{}),
		typing: make(map[string]*time.Timer),
	}
}

// Start loads history, connects a transport and starts the countdown.
func (s *ChatSession) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	history, err := s.cfg.Store.History(ctx, s.cfg.Booking.ID)
	if err != nil {
		s.cfg.Logger.Warn("chat history unavailable", zap.Error(err))
	}
	for _, m := range history {
		s.receive(m)
	}

	s.connectTransport(ctx)

	unsubs := []func(){
		s.cfg.Signal.On(models.EventNewMessage, s.onSignal(models.EventNewMessage)),
		s.cfg.Signal.On(models.EventTyping, s.onSignal(models.EventTyping)),
		s.cfg.Signal.On(models.EventSessionEnded, s.onSignal(models.EventSessionEnded)),
		s.cfg.Signal.On(models.EventCallStatus, s.onSignal(models.EventCallStatus)),
	}
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubs...)
	s.mu.Unlock()

	s.timer.OnExpire(s.expire)
	s.timer.Start()
	go s.timer.Run(ctx, s.cfg.Ticks)
	return nil
}

// connectTransport prefers the hosted transport and falls back to signaling
// when its token exchange fails.
func (s *ChatSession) connectTransport(ctx context.Context) {
	if s.cfg.Transport == nil || s.cfg.Tokens == nil {
		return
	}
	token, err := s.cfg.Tokens.ChatToken(ctx, s.cfg.Self.ID)
	if err == nil {
		err = s.cfg.Transport.Connect(ctx, token)
	}
	if err != nil {
		s.cfg.Logger.Info("hosted chat unavailable, using signaling", zap.Error(err))
		return
	}
	s.cfg.Transport.OnMessage(func(m models.Message) {
		if m.BookingID == s.cfg.Booking.ID {
			s.receive(m)
		}
	})
	s.mu.Lock()
	s.transport = s.cfg.Transport
	s.mu.Unlock()
}

// UsingTransport reports whether the hosted transport is active.
func (s *ChatSession) UsingTransport() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transport != nil
}

func (s *ChatSession) onSignal(event string) Handler {
	return func(data json.RawMessage) {
		payload, err := models.DecodeEvent(event, data)
		if err != nil {
			return
		}
		switch p := payload.(type) {
		case *models.Message:
			if p.BookingID == s.cfg.Booking.ID {
				s.receive(*p)
			}
		case *models.TypingPayload:
			if p.BookingID == s.cfg.Booking.ID && p.SenderID != s.cfg.Self.ID {
				s.setTyping(p.SenderID, p.Typing)
			}
		case *models.SessionEndedPayload:
			if p.BookingID == s.cfg.Booking.ID {
				s.lock()
			}
		case *models.CallStatusPayload:
			if p.BookingID == s.cfg.Booking.ID && p.Status == models.CallEnded {
				s.lock()
			}
		}
	}
}

// receive adds m unless a message with the same id is already shown.
func (s *ChatSession) receive(m models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		return false
	}
	if _, ok := s.seen[m.ID]; ok {
		return false
	}
	s.seen[m.ID] = struct{}{}
	s.messages = append(s.messages, m)
	models.SortMessages(s.messages)
	if t, ok := s.typing[m.SenderID]; ok {
		t.Stop()
		delete(s.typing, m.SenderID)
	}
	return true
}

// Send shows the message at once, then delivers it over the active transport
// and persists it. The returned message keeps the same id in every copy.
func (s *ChatSession) Send(ctx context.Context, text string, files ...models.FileAttach) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && len(files) == 0 {
		return nil, errors.New("message is empty")
	}
	s.mu.Lock()
	locked := s.status != models.StatusActive
	transport := s.transport
	s.mu.Unlock()
	if locked {
		return nil, ErrSessionLocked
	}

	msg := models.Message{
		ID:         uuid.NewString(),
		BookingID:  s.cfg.Booking.ID,
		SenderID:   s.cfg.Self.ID,
		SenderName: s.cfg.Self.Name,
		SenderRole: s.cfg.Self.Role,
		Type:       models.MessageText,
		Content:    text,
		Files:      files,
		Timestamp:  s.cfg.Now(),
	}
	if len(files) > 0 {
		msg.Type = models.MessageFile
	}
	s.receive(msg)

	var sendErr error
	if transport != nil {
		sendErr = transport.Send(ctx, msg)
	} else {
		sendErr = s.cfg.Signal.Emit(models.EventChatMessage, msg)
	}
	if sendErr != nil {
		s.cfg.Logger.Warn("realtime delivery failed", zap.String("messageId", msg.ID), zap.Error(sendErr))
	}

	if _, err := s.cfg.Store.SendMessage(ctx, msg); err != nil {
		return &msg, err
	}
	return &msg, nil
}

// Typing tells the other side the local participant is typing.
func (s *ChatSession) Typing(typing bool) error {
	return s.cfg.Signal.Emit(models.EventTyping, models.TypingPayload{
		BookingID: s.cfg.Booking.ID,
		SenderID:  s.cfg.Self.ID,
		Typing:    typing,
	})
}

func (s *ChatSession) setTyping(senderID string, typing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.typing[senderID]; ok {
		t.Stop()
		delete(s.typing, senderID)
	}
	if !typing {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(s.cfg.TypingTimeout, func() {
		s.mu.Lock()
		if s.typing[senderID] == t {
			delete(s.typing, senderID)
		}
		s.mu.Unlock()
	})
	s.typing[senderID] = t
}

// TypingUsers lists the remote participants currently typing.
func (s *ChatSession) TypingUsers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.typing))
	for id := range s.typing {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *ChatSession) expire() {
	if s.lock() {
		if err := s.cfg.Signal.Emit(models.EventEndSession, models.EndSessionPayload{BookingID: s.cfg.Booking.ID}); err != nil {
			s.cfg.Logger.Warn("end-session not delivered", zap.Error(err))
		}
	}
}

// lock ends the session locally and reports whether it was still active.
func (s *ChatSession) lock() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != models.StatusActive {
		return false
	}
	s.status = models.StatusEnded
	s.timer.Stop()
	return true
}

// End closes the session before the countdown runs out.
func (s *ChatSession) End() error {
	if !s.lock() {
		return ErrSessionLocked
	}
	return s.cfg.Signal.Emit(models.EventEndSession, models.EndSessionPayload{BookingID: s.cfg.Booking.ID})
}

func (s *ChatSession) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *ChatSession) Remaining() int { return s.timer.Remaining() }

// Messages returns the conversation ordered by timestamp.
func (s *ChatSession) Messages() []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages...)
}

// Groups returns the conversation split by calendar day in loc.
func (s *ChatSession) Groups(loc *time.Location) []models.DayGroup {
	return models.GroupByDay(s.Messages(), loc)
}

// Close releases subscriptions, timers and the hosted transport.
func (s *ChatSession) Close() error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	for _, t := range s.typing {
		t.Stop()
	}
	s.typing = make(map[string]*time.Timer)
	transport := s.transport
	s.transport = nil
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()

	for _, u := range unsubs {
		u()
	}
	if transport != nil {
		return transport.Close()
	}
	return nil
}
