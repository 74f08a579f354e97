package consult

import (
	"context"
	"encoding/json"
	"sync"

	"lawdesk/models"
)

// StatusUpdater changes a booking's status through the REST API.
type StatusUpdater interface {
	UpdateBookingStatus(ctx context.Context, bookingID, status string) (*models.Booking, error)
}

// Request is a paid booking waiting for the lawyer.
type Request struct {
	BookingID  string
	ClientID   string
	ClientName string
	Mode       string
	Amount     string
	Duration   int
}

// Dashboard routes booking requests to a lawyer by consultation mode: chat
// requests to OnChatRequest, call and video to OnIncomingCall. Each booking is
// routed once even when both booking-notification and incoming-call arrive.
type Dashboard struct {
	channel  *Channel
	signal   Signal
	api      StatusUpdater
	lawyerID string

	OnChatRequest  func(Request)
	OnIncomingCall func(Request)

	mu     sync.Mutex
	routed map[string]struct{}
	unsubs []func()
}

// NewDashboard listens on signal for requests addressed to lawyerID. When
// signal is a *Channel, actions wait for it to be ready.
func NewDashboard(signal Signal, api StatusUpdater, lawyerID string) *Dashboard {
	d := &Dashboard{
		signal:   signal,
		api:      api,
		lawyerID: lawyerID,
		routed:   make(map[string]struct{}),
	}
	if ch, ok := signal.(*Channel); ok {
		d.channel = ch
	}
	d.unsubs = []func(){
		signal.On(models.EventBookingNotification, d.onEvent(models.EventBookingNotification)),
		signal.On(models.EventIncomingCall, d.onEvent(models.EventIncomingCall)),
	}
	return d
}

func (d *Dashboard) onEvent(event string) Handler {
	return func(data json.RawMessage) {
		payload, err := models.DecodeEvent(event, data)
		if err != nil {
			return
		}
		var req Request
		switch p := payload.(type) {
		case *models.BookingNotificationPayload:
			if p.LawyerID != d.lawyerID {
				return
			}
			req = Request{BookingID: p.BookingID, ClientID: p.ClientID, ClientName: p.ClientName, Mode: p.Mode, Amount: p.Amount, Duration: p.Duration}
		case *models.IncomingCallPayload:
			if p.LawyerID != d.lawyerID {
				return
			}
			req = Request{BookingID: p.BookingID, ClientID: p.ClientID, ClientName: p.ClientName, Mode: p.Mode}
		default:
			return
		}
		d.route(req)
	}
}

func (d *Dashboard) route(req Request) {
	d.mu.Lock()
	if _, done := d.routed[req.BookingID]; done {
		d.mu.Unlock()
		return
	}
	d.routed[req.BookingID] = struct{}{}
	chatFn, callFn := d.OnChatRequest, d.OnIncomingCall
	d.mu.Unlock()

	switch {
	case req.Mode == models.ModeChat && chatFn != nil:
		chatFn(req)
	case models.IsMediaMode(req.Mode) && callFn != nil:
		callFn(req)
	}
}

func (d *Dashboard) ready(ctx context.Context) error {
	if d.channel == nil {
		return nil
	}
	return d.channel.Wait(ctx)
}

// Accept accepts the booking and joins its room. The server starts the
// session and sends session-started to both sides.
func (d *Dashboard) Accept(ctx context.Context, req Request) (*models.Booking, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}
	b, err := d.api.UpdateBookingStatus(ctx, req.BookingID, models.StatusAccepted)
	if err != nil {
		return nil, err
	}
	if err := d.signal.Emit(models.EventJoinBooking, models.JoinBookingPayload{BookingID: req.BookingID}); err != nil {
		return b, err
	}
	duration := req.Duration
	if duration <= 0 {
		duration = models.DefaultSessionSeconds
	}
	err = d.signal.Emit(models.EventBookingAccepted, models.BookingAcceptedPayload{
		BookingID: req.BookingID,
		LawyerID:  d.lawyerID,
		UserID:    req.ClientID,
		Duration:  duration,
	})
	return b, err
}

// Reject declines the booking and tells the client.
func (d *Dashboard) Reject(ctx context.Context, req Request) (*models.Booking, error) {
	if err := d.ready(ctx); err != nil {
		return nil, err
	}
	b, err := d.api.UpdateBookingStatus(ctx, req.BookingID, models.StatusRejected)
	if err != nil {
		return nil, err
	}
	err = d.signal.Emit(models.EventCallStatus, models.CallStatusPayload{
		BookingID: req.BookingID,
		Status:    models.CallRejected,
		UserID:    req.ClientID,
	})
	return b, err
}

// End hangs up an active session.
func (d *Dashboard) End(ctx context.Context, bookingID, clientID string) error {
	if err := d.ready(ctx); err != nil {
		return err
	}
	return d.signal.Emit(models.EventCallStatus, models.CallStatusPayload{
		BookingID: bookingID,
		Status:    models.CallEnded,
		UserID:    clientID,
	})
}

// Close stops routing requests.
func (d *Dashboard) Close() {
	d.mu.Lock()
	unsubs := d.unsubs
	d.unsubs = nil
	d.mu.Unlock()
	for _, u := range unsubs {
		u()
	}
}
