package booking

import (
	"context"
	"time"

	"lawdesk/models"
	"lawdesk/services/signaling"
)

// Actor is the authenticated caller of a booking operation.
type Actor = signaling.Identity

// OrderResult is returned when a booking and its gateway order were created.
type OrderResult struct {
	Booking *models.Booking `json:"booking"`
	Order   *models.Order   `json:"order"`
}

// VerifyResult is returned once a payment is confirmed.
type VerifyResult struct {
	Booking     *models.Booking          `json:"booking"`
	Credentials *models.MediaCredentials `json:"agora,omitempty"`
}

// BookingService manages paid consultations from order to session end.
type BookingService interface {
	CreateOrder(ctx context.Context, client Actor, lawyerID, mode string) (*OrderResult, error)
	VerifyPayment(ctx context.Context, client Actor, v models.PaymentVerification) (*VerifyResult, error)
	UpdateStatus(ctx context.Context, actor Actor, bookingID, status string) (*models.Booking, error)
	ExpireSession(ctx context.Context, bookingID string) error
	Get(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error)
	ListForClient(ctx context.Context, clientID string) ([]models.Booking, error)
	ListForLawyer(ctx context.Context, lawyerID string) ([]models.Booking, error)
	Authorize(ctx context.Context, actor Actor, bookingID string) error
}

// Signaler delivers events to signaling rooms.
type Signaler interface {
	Emit(ctx context.Context, room, event string, payload interface{}) error
	Online(room string) bool
}

// Pusher sends a device push notification.
type Pusher interface {
	Push(ctx context.Context, token, title, body string, data map[string]string) error
}

// EventPublisher records booking lifecycle events.
type EventPublisher interface {
	Publish(ctx context.Context, ev models.BookingEvent) error
}

// ExpiryScheduler arranges for ExpireSession to run at a given time.
type ExpiryScheduler interface {
	ScheduleExpiry(ctx context.Context, bookingID string, at time.Time) error
}

// SessionStore keeps a snapshot of live sessions.
type SessionStore interface {
	Save(ctx context.Context, b *models.Booking) error
	Delete(ctx context.Context, bookingID string) error
}
