package consult

import (
	"context"
	"encoding/json"
	"sync"

	"lawdesk/models"
	"lawdesk/services/lifecycle"
)

// Signal is the part of a Channel used by session components.
type Signal interface {
	On(event string, fn Handler) func()
	Emit(event string, payload interface{}) error
}

// Outcome is how the counterparty answered a booking.
type Outcome struct {
	Status      string
	Duration    int
	Credentials *models.MediaCredentials
}

// Acceptance waits for the lawyer's answer to one paid booking.
type Acceptance struct {
	signal  Signal
	booking models.Booking
	machine *lifecycle.Machine

	mu       sync.Mutex
	creds    *models.MediaCredentials
	duration int
	result   chan Outcome
	resolved bool
	unsubs   []func()
}

func NewAcceptance(signal Signal, paid PaidBooking) *Acceptance {
	return &Acceptance{
		signal:   signal,
		booking:  paid.Booking,
		machine:  lifecycle.NewMachine(paid.Booking.ID),
		creds:    paid.Credentials,
		duration: paid.Booking.DurationSeconds,
		result:   make(chan Outcome, 1),
	}
}

// Status is the local lifecycle status of the booking.
func (a *Acceptance) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.machine.Status()
}

// Await joins the booking room and blocks until the booking is active,
// rejected or ended. A media booking resolves as active only once its
// credentials are known.
func (a *Acceptance) Await(ctx context.Context) (*Outcome, error) {
	a.subscribe()
	defer a.unsubscribe()

	if err := a.signal.Emit(models.EventJoinBooking, models.JoinBookingPayload{BookingID: a.booking.ID}); err != nil {
		return nil, err
	}
	select {
	case out := <-a.result:
		return &out, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Acceptance) subscribe() {
	a.unsubs = []func(){
		a.signal.On(models.EventSessionStarted, a.onEvent(models.EventSessionStarted)),
		a.signal.On(models.EventCallStatus, a.onEvent(models.EventCallStatus)),
		a.signal.On(models.EventMediaCredentials, a.onEvent(models.EventMediaCredentials)),
		a.signal.On(models.EventSessionEnded, a.onEvent(models.EventSessionEnded)),
	}
}

func (a *Acceptance) unsubscribe() {
	for _, u := range a.unsubs {
		u()
	}
	a.unsubs = nil
}

func (a *Acceptance) onEvent(event string) Handler {
	return func(data json.RawMessage) {
		payload, err := models.DecodeEvent(event, data)
		if err != nil {
			return
		}
		a.handle(payload)
	}
}

func (a *Acceptance) handle(payload interface{}) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch p := payload.(type) {
	case *models.SessionStartedPayload:
		if p.BookingID != a.booking.ID {
			return
		}
		if err := a.machine.Start(); err != nil {
			// duplicate or late session-started
			return
		}
		if p.Duration > 0 {
			a.duration = p.Duration
		}
	case *models.MediaCredentialsPayload:
		if p.BookingID != a.booking.ID || p.Credentials == nil {
			return
		}
		a.creds = p.Credentials
	case *models.CallStatusPayload:
		if p.BookingID != a.booking.ID {
			return
		}
		switch p.Status {
		case models.CallRejected:
			if a.machine.Apply(models.StatusRejected) == nil {
				a.resolve(Outcome{Status: models.StatusRejected})
			}
		case models.CallEnded:
			a.end()
		}
		return
	case *models.SessionEndedPayload:
		if p.BookingID == a.booking.ID {
			a.end()
		}
		return
	default:
		return
	}

	if a.machine.Status() != models.StatusActive {
		return
	}
	if models.IsMediaMode(a.booking.Mode) && a.creds == nil {
		return
	}
	a.resolve(Outcome{Status: models.StatusActive, Duration: a.duration, Credentials: a.creds})
}

func (a *Acceptance) end() {
	if a.machine.Apply(models.StatusEnded) == nil {
		a.resolve(Outcome{Status: models.StatusEnded})
	}
}

func (a *Acceptance) resolve(out Outcome) {
	if a.resolved {
		return
	}
	a.resolved = true
	a.result <- out
}
