package bookingRepo

import (
	"context"
	"errors"
	"time"

	"lawdesk/models"
)

// ErrNotFound is returned when no booking matches the lookup.
var ErrNotFound = errors.New("booking not found")

// ErrStatusConflict is returned when a conditional status update finds the
// booking in a different status than expected.
var ErrStatusConflict = errors.New("booking status changed concurrently")

// ErrAlreadyVerified is returned by MarkVerified when the booking was already paid.
var ErrAlreadyVerified = errors.New("booking already verified")

// StatusChange describes a conditional status write.
type StatusChange struct {
	From      string
	To        string
	StartedAt *time.Time
	EndedAt   *time.Time
}

// BookingRepository defines methods for booking data access.
type BookingRepository interface {
	// Create inserts a new booking record.
	Create(ctx context.Context, booking *models.Booking) error
	// GetByID retrieves a booking by its id.
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// GetByOrderID retrieves a booking by the gateway order id.
	GetByOrderID(ctx context.Context, orderID string) (*models.Booking, error)
	// UpdateStatus applies change only if the stored status still equals change.From.
	UpdateStatus(ctx context.Context, id string, change StatusChange) (*models.Booking, error)
	// MarkVerified records the captured payment id once. A booking that is
	// already verified is left untouched and ErrAlreadyVerified is returned.
	MarkVerified(ctx context.Context, id, paymentID string) (*models.Booking, error)
	// ListByClient returns the client's bookings, newest first.
	ListByClient(ctx context.Context, clientID string) ([]models.Booking, error)
	// ListByLawyer returns the lawyer's bookings, newest first.
	ListByLawyer(ctx context.Context, lawyerID string) ([]models.Booking, error)
}
