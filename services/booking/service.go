package booking

import (
	"context"
	"errors"
	"time"

	accountRepo "lawdesk/database/repository/account"
	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"
	"lawdesk/services/media"
	"lawdesk/services/payment"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Settings are the pricing and session parameters.
type Settings struct {
	DefaultFee     decimal.Decimal
	Currency       string
	SessionSeconds int
}

// Deps are the collaborators of DefaultBookingService. Pusher, Events, Expiry
// and Sessions are optional.
type Deps struct {
	Bookings bookingRepo.BookingRepository
	Lawyers  lawyerRepo.LawyerRepository
	Accounts accountRepo.AccountRepository
	Gateway  payment.Gateway
	Issuer   *media.Issuer
	Signaler Signaler
	Pusher   Pusher
	Events   EventPublisher
	Expiry   ExpiryScheduler
	Sessions SessionStore
	Logger   *zap.Logger
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Deps
	settings Settings
	now      func() time.Time
}

func NewDefaultBookingService(deps Deps, settings Settings) *DefaultBookingService {
	if settings.DefaultFee.IsZero() {
		settings.DefaultFee = decimal.NewFromInt(10)
	}
	if settings.Currency == "" {
		settings.Currency = "INR"
	}
	if settings.SessionSeconds <= 0 {
		settings.SessionSeconds = models.DefaultSessionSeconds
	}
	if deps.Logger == nil {
		deps.Logger = zap.L().Named("booking")
	}
	return &DefaultBookingService{Deps: deps, settings: settings, now: time.Now}
}

func (s *DefaultBookingService) load(ctx context.Context, id string) (*models.Booking, error) {
	b, err := s.Bookings.GetByID(ctx, id)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

func isClient(a Actor, b *models.Booking) bool { return a.AccountID == b.ClientID }

func isLawyer(a Actor, b *models.Booking) bool {
	return a.Role == models.RoleLawyer && a.LawyerID != "" && a.LawyerID == b.LawyerID
}

func isParticipant(a Actor, b *models.Booking) bool {
	return isClient(a, b) || isLawyer(a, b) || a.Role == models.RoleAdmin
}

// Authorize allows only the booking's client, lawyer or an admin.
func (s *DefaultBookingService) Authorize(ctx context.Context, actor Actor, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if !isParticipant(actor, b) {
		return ErrForbidden
	}
	return nil
}

func (s *DefaultBookingService) Get(ctx context.Context, actor Actor, bookingID string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, b) {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *DefaultBookingService) ListForClient(ctx context.Context, clientID string) ([]models.Booking, error) {
	return s.Bookings.ListByClient(ctx, clientID)
}

func (s *DefaultBookingService) ListForLawyer(ctx context.Context, lawyerID string) ([]models.Booking, error) {
	return s.Bookings.ListByLawyer(ctx, lawyerID)
}

// publish records ev when an event publisher is configured. Failures are logged only.
func (s *DefaultBookingService) publish(ctx context.Context, eventType string, b *models.Booking) {
	if s.Events == nil {
		return
	}
	ev := models.BookingEvent{
		Type:      eventType,
		BookingID: b.ID,
		ClientID:  b.ClientID,
		LawyerID:  b.LawyerID,
		Mode:      b.Mode,
		Status:    b.Status,
		At:        s.now(),
	}
	if err := s.Events.Publish(ctx, ev); err != nil {
		s.Logger.Warn("booking event not published", zap.String("bookingId", b.ID), zap.String("type", eventType), zap.Error(err))
	}
}

func (s *DefaultBookingService) emit(ctx context.Context, room, event string, payload interface{}) {
	if err := s.Signaler.Emit(ctx, room, event, payload); err != nil {
		s.Logger.Error("signal not delivered", zap.String("room", room), zap.String("event", event), zap.Error(err))
	}
}
