package booking

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"
	"lawdesk/services/payment"
	"lawdesk/services/signaling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateOrder prices the consultation, opens a gateway order and stores the
// booking as requested.
func (s *DefaultBookingService) CreateOrder(ctx context.Context, client Actor, lawyerID, mode string) (*OrderResult, error) {
	if !models.ValidMode(mode) {
		return nil, newBookingError("invalidMode", "mode must be chat, call or video, got %q", mode)
	}
	lawyer, err := s.Lawyers.GetByLawyerID(ctx, lawyerID)
	if errors.Is(err, lawyerRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	amount := lawyer.ConsultationFee
	if !amount.IsPositive() {
		amount = s.settings.DefaultFee
	}
	paise, err := payment.ToPaise(amount)
	if err != nil {
		return nil, newBookingError("invalidAmount", "%v", err)
	}

	b := &models.Booking{
		ID:              uuid.NewString(),
		ClientID:        client.AccountID,
		ClientName:      client.Name,
		LawyerID:        lawyer.LawyerID,
		Mode:            mode,
		Amount:          amount,
		AmountPaise:     paise,
		Currency:        s.settings.Currency,
		Status:          models.StatusRequested,
		DurationSeconds: s.settings.SessionSeconds,
	}

	order, err := s.Gateway.CreateOrder(ctx, models.OrderRequest{
		BookingID: b.ID,
		Amount:    amount,
		Currency:  b.Currency,
		Notes:     map[string]string{"lawyerId": lawyer.LawyerID, "service": mode, "lawyerName": lawyer.Name},
	})
	if err != nil {
		return nil, &OrderCreationError{BookingID: b.ID, Err: err}
	}
	if order == nil || order.ID == "" {
		return nil, &OrderCreationError{BookingID: b.ID, Err: errors.New("gateway returned no order id")}
	}
	b.GatewayOrderID = order.ID

	if err := s.Bookings.Create(ctx, b); err != nil {
		return nil, &OrderCreationError{BookingID: b.ID, Err: err}
	}

	s.Logger.Info("order created",
		zap.String("bookingId", b.ID),
		zap.String("orderId", order.ID),
		zap.String("lawyerId", b.LawyerID),
		zap.String("mode", mode),
		zap.String("amount", amount.String()))
	s.publish(ctx, models.BookingEventCreated, b)
	return &OrderResult{Booking: b, Order: order}, nil
}

// VerifyPayment confirms the checkout and notifies the lawyer. Verifying an
// already verified payment returns the same result without notifying again.
func (s *DefaultBookingService) VerifyPayment(ctx context.Context, client Actor, v models.PaymentVerification) (*VerifyResult, error) {
	b, err := s.load(ctx, v.BookingID)
	if err != nil {
		return nil, err
	}
	if !isClient(client, b) {
		return nil, ErrForbidden
	}
	if b.GatewayOrderID != v.OrderID {
		return nil, fmt.Errorf("%w: order does not belong to booking", ErrPaymentVerification)
	}

	if b.Verified {
		if b.GatewayPaymentID != v.PaymentID {
			return nil, fmt.Errorf("%w: booking already paid by another payment", ErrPaymentVerification)
		}
		return s.verifyResult(b, client)
	}

	if err := s.Gateway.VerifyPayment(ctx, v); err != nil {
		s.Logger.Warn("payment verification failed", zap.String("bookingId", b.ID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrPaymentVerification, err)
	}

	b, err = s.Bookings.MarkVerified(ctx, b.ID, v.PaymentID)
	if errors.Is(err, bookingRepo.ErrAlreadyVerified) {
		return s.alreadyVerified(ctx, client, v)
	}
	if err != nil {
		return nil, err
	}
	result, err := s.verifyResult(b, client)
	if err != nil {
		return nil, err
	}

	s.notifyLawyer(ctx, b)
	s.publish(ctx, models.BookingEventVerified, b)
	s.Logger.Info("payment verified", zap.String("bookingId", b.ID), zap.String("paymentId", v.PaymentID))
	return result, nil
}

// alreadyVerified answers a verification that lost the race to another one
// for the same booking. The winner has already notified the lawyer.
func (s *DefaultBookingService) alreadyVerified(ctx context.Context, client Actor, v models.PaymentVerification) (*VerifyResult, error) {
	b, err := s.load(ctx, v.BookingID)
	if err != nil {
		return nil, err
	}
	if b.GatewayPaymentID != v.PaymentID {
		return nil, fmt.Errorf("%w: booking already paid by another payment", ErrPaymentVerification)
	}
	return s.verifyResult(b, client)
}

func (s *DefaultBookingService) verifyResult(b *models.Booking, client Actor) (*VerifyResult, error) {
	result := &VerifyResult{Booking: b}
	if b.IsMediaMode() && s.Issuer != nil {
		creds, err := s.Issuer.Issue(b.ID, client.AccountID, "publisher")
		if err != nil {
			return nil, err
		}
		result.Credentials = creds
	}
	return result, nil
}

// notifyLawyer rings the lawyer room and falls back to a push when the lawyer
// has no live connection.
func (s *DefaultBookingService) notifyLawyer(ctx context.Context, b *models.Booking) {
	room := signaling.LawyerRoom(b.LawyerID)
	s.emit(ctx, room, models.EventBookingNotification, models.BookingNotificationPayload{
		BookingID:  b.ID,
		ClientID:   b.ClientID,
		ClientName: b.ClientName,
		LawyerID:   b.LawyerID,
		Mode:       b.Mode,
		Amount:     b.Amount.String(),
		Duration:   b.DurationSeconds,
	})
	if b.IsMediaMode() {
		s.emit(ctx, room, models.EventIncomingCall, models.IncomingCallPayload{
			BookingID:  b.ID,
			ClientID:   b.ClientID,
			ClientName: b.ClientName,
			LawyerID:   b.LawyerID,
			Mode:       b.Mode,
		})
	}

	if s.Pusher == nil || s.Signaler.Online(room) {
		return
	}
	token := s.lawyerPushToken(ctx, b.LawyerID)
	if token == "" {
		return
	}
	title := "New consultation request"
	if b.IsMediaMode() {
		title = "Incoming " + b.Mode + " consultation"
	}
	name := b.ClientName
	if name == "" {
		name = "A client"
	}
	data := map[string]string{"bookingId": b.ID, "mode": b.Mode, "role": models.RoleLawyer}
	if err := s.Pusher.Push(ctx, token, title, name+" is waiting for you.", data); err != nil {
		s.Logger.Warn("push not sent", zap.String("lawyerId", b.LawyerID), zap.Error(err))
	}
}

func (s *DefaultBookingService) lawyerPushToken(ctx context.Context, lawyerID string) string {
	lawyer, err := s.Lawyers.GetByLawyerID(ctx, lawyerID)
	if err != nil || lawyer.AccountID == "" || s.Accounts == nil {
		return ""
	}
	acc, err := s.Accounts.GetByID(ctx, lawyer.AccountID)
	if err != nil {
		return ""
	}
	return acc.FCMToken
}
