package booking

import (
	"context"
	"errors"
	"time"

	bookingRepo "lawdesk/database/repository/booking"
	"lawdesk/models"
	"lawdesk/services/lifecycle"
	"lawdesk/services/signaling"

	"go.uber.org/zap"
)

// UpdateStatus applies a participant's status change. Lawyers accept or
// reject; either side may end. Accepting starts the session at once.
func (s *DefaultBookingService) UpdateStatus(ctx context.Context, actor Actor, bookingID, status string) (*models.Booking, error) {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isParticipant(actor, b) {
		return nil, ErrForbidden
	}

	switch status {
	case models.StatusAccepted, models.StatusActive:
		if !isLawyer(actor, b) && actor.Role != models.RoleAdmin {
			return nil, ErrForbidden
		}
		return s.accept(ctx, b)
	case models.StatusRejected:
		if !isLawyer(actor, b) && actor.Role != models.RoleAdmin {
			return nil, ErrForbidden
		}
		return s.reject(ctx, b)
	case models.StatusEnded:
		return s.end(ctx, b, "ended by "+actor.Role)
	default:
		return nil, newBookingError("invalidStatus", "cannot set status %q", status)
	}
}

// transition moves b from its current status to next with a conditional write.
func (s *DefaultBookingService) transition(ctx context.Context, b *models.Booking, next string, change bookingRepo.StatusChange) (*models.Booking, error) {
	if err := lifecycle.Transition(b.Status, next); err != nil {
		return nil, err
	}
	change.From = b.Status
	change.To = next
	updated, err := s.Bookings.UpdateStatus(ctx, b.ID, change)
	if errors.Is(err, bookingRepo.ErrStatusConflict) {
		return nil, lifecycle.ErrInvalidTransition
	}
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return updated, err
}

func (s *DefaultBookingService) accept(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.Status == models.StatusActive {
		s.Logger.Debug("accept on active session ignored", zap.String("bookingId", b.ID))
		return b, lifecycle.ErrAlreadyActive
	}
	if !b.Verified {
		return nil, ErrPaymentPending
	}

	var err error
	if b.Status == models.StatusRequested {
		if b, err = s.transition(ctx, b, models.StatusAccepted, bookingRepo.StatusChange{}); err != nil {
			return nil, err
		}
		s.publish(ctx, models.BookingEventAccepted, b)
	}

	started := s.now()
	if b, err = s.transition(ctx, b, models.StatusActive, bookingRepo.StatusChange{StartedAt: &started}); err != nil {
		return nil, err
	}
	s.startSession(ctx, b, started)
	return b, nil
}

// startSession announces the active session and schedules its expiry.
func (s *DefaultBookingService) startSession(ctx context.Context, b *models.Booking, started time.Time) {
	announce := models.SessionStartedPayload{BookingID: b.ID, Duration: b.DurationSeconds, StartedAt: started}
	s.emit(ctx, signaling.BookingRoom(b.ID), models.EventSessionStarted, announce)
	s.emit(ctx, signaling.UserRoom(b.ClientID), models.EventSessionStarted, announce)

	if b.IsMediaMode() && s.Issuer != nil {
		s.sendCredentials(ctx, b, b.ClientID, signaling.UserRoom(b.ClientID))
		if acc := s.lawyerAccountID(ctx, b.LawyerID); acc != "" {
			s.sendCredentials(ctx, b, acc, signaling.LawyerRoom(b.LawyerID))
		}
	}

	if s.Expiry != nil {
		at := started.Add(time.Duration(b.DurationSeconds) * time.Second)
		if err := s.Expiry.ScheduleExpiry(ctx, b.ID, at); err != nil {
			s.Logger.Error("session expiry not scheduled", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	if s.Sessions != nil {
		if err := s.Sessions.Save(ctx, b); err != nil {
			s.Logger.Warn("session snapshot not cached", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	s.Logger.Info("session started", zap.String("bookingId", b.ID), zap.Int("duration", b.DurationSeconds))
}

func (s *DefaultBookingService) sendCredentials(ctx context.Context, b *models.Booking, participantID, room string) {
	creds, err := s.Issuer.Issue(b.ID, participantID, "publisher")
	if err != nil {
		s.Logger.Error("media credentials not issued", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	s.emit(ctx, room, models.EventMediaCredentials, models.MediaCredentialsPayload{BookingID: b.ID, Mode: b.Mode, Credentials: creds})
}

func (s *DefaultBookingService) lawyerAccountID(ctx context.Context, lawyerID string) string {
	lawyer, err := s.Lawyers.GetByLawyerID(ctx, lawyerID)
	if err != nil {
		return ""
	}
	return lawyer.AccountID
}

func (s *DefaultBookingService) reject(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	if b.Status == models.StatusRejected {
		return b, nil
	}
	ended := s.now()
	b, err := s.transition(ctx, b, models.StatusRejected, bookingRepo.StatusChange{EndedAt: &ended})
	if err != nil {
		return nil, err
	}
	payload := models.CallStatusPayload{BookingID: b.ID, Status: models.CallRejected, UserID: b.ClientID}
	s.emit(ctx, signaling.UserRoom(b.ClientID), models.EventCallStatus, payload)
	s.emit(ctx, signaling.BookingRoom(b.ID), models.EventCallStatus, payload)
	s.publish(ctx, models.BookingEventRejected, b)
	s.Logger.Info("booking rejected", zap.String("bookingId", b.ID))
	return b, nil
}

func (s *DefaultBookingService) end(ctx context.Context, b *models.Booking, reason string) (*models.Booking, error) {
	if b.Status == models.StatusEnded {
		return b, nil
	}
	ended := s.now()
	b, err := s.transition(ctx, b, models.StatusEnded, bookingRepo.StatusChange{EndedAt: &ended})
	if err != nil {
		return nil, err
	}

	payload := models.SessionEndedPayload{BookingID: b.ID, Reason: reason}
	s.emit(ctx, signaling.BookingRoom(b.ID), models.EventSessionEnded, payload)
	s.emit(ctx, signaling.UserRoom(b.ClientID), models.EventSessionEnded, payload)
	s.emit(ctx, signaling.LawyerRoom(b.LawyerID), models.EventSessionEnded, payload)
	if s.Sessions != nil {
		if err := s.Sessions.Delete(ctx, b.ID); err != nil {
			s.Logger.Warn("session snapshot not cleared", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	s.publish(ctx, models.BookingEventEnded, b)
	s.Logger.Info("session ended", zap.String("bookingId", b.ID), zap.String("reason", reason))
	return b, nil
}

// ExpireSession ends an active session whose time is up. Terminal bookings are
// left alone; a session that still has time is rescheduled.
func (s *DefaultBookingService) ExpireSession(ctx context.Context, bookingID string) error {
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return err
	}
	if b.Status != models.StatusActive {
		return nil
	}
	if left := b.RemainingSeconds(s.now()); left > 0 {
		if s.Expiry == nil {
			return nil
		}
		return s.Expiry.ScheduleExpiry(ctx, b.ID, s.now().Add(time.Duration(left)*time.Second))
	}
	_, err = s.end(ctx, b, "expired")
	return err
}

// RegisterSignalHandlers routes session events sent over signaling to the service.
func (s *DefaultBookingService) RegisterSignalHandlers(hub *signaling.Hub) {
	hub.Handle(models.EventEndSession, func(ctx context.Context, from signaling.Identity, payload interface{}) error {
		p := payload.(*models.EndSessionPayload)
		_, err := s.UpdateStatus(ctx, from, p.BookingID, models.StatusEnded)
		return err
	})
	hub.Handle(models.EventCallStatus, func(ctx context.Context, from signaling.Identity, payload interface{}) error {
		p := payload.(*models.CallStatusPayload)
		status := models.StatusEnded
		if p.Status == models.CallRejected {
			status = models.StatusRejected
		}
		_, err := s.UpdateStatus(ctx, from, p.BookingID, status)
		return err
	})
	hub.Handle(models.EventBookingAccepted, func(ctx context.Context, from signaling.Identity, payload interface{}) error {
		p := payload.(*models.BookingAcceptedPayload)
		_, err := s.UpdateStatus(ctx, from, p.BookingID, models.StatusAccepted)
		if errors.Is(err, lifecycle.ErrAlreadyActive) {
			return nil
		}
		return err
	})
}
