package consult

import (
	"context"
	"errors"
	"fmt"

	"lawdesk/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrCheckoutDismissed  = errors.New("checkout was dismissed")
)

// DefaultFee is charged when a lawyer has not set a consultation fee.
var DefaultFee = decimal.NewFromInt(10)

// OrderCreationError means the backend did not return both a gateway order
// id and a booking id.
type OrderCreationError struct {
	Err error
}

func (e *OrderCreationError) Error() string {
	if e.Err == nil {
		return "order creation failed"
	}
	return "order creation failed: " + e.Err.Error()
}

func (e *OrderCreationError) Unwrap() error { return e.Err }

// Contact prefills the checkout form.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// CheckoutRequest opens the hosted checkout overlay for an order.
type CheckoutRequest struct {
	OrderID     string
	AmountPaise int64
	Currency    string
	Description string
	Prefill     Contact
}

// CheckoutResult is what the overlay reports once the payment completed.
type CheckoutResult struct {
	PaymentID string
	OrderID   string
	Signature string
}

// Checkout is the hosted payment overlay.
type Checkout interface {
	Open(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

// PaidBooking is a verified booking ready for the acceptance handshake.
// SessionToken correlates the session across local components only.
type PaidBooking struct {
	Booking      models.Booking
	SessionToken string
	Credentials  *models.MediaCredentials
}

// Backend is the part of the REST API the payment flow needs.
type Backend interface {
	CreateOrder(ctx context.Context, lawyerID, mode string) (*OrderResponse, error)
	VerifyPayment(ctx context.Context, v models.PaymentVerification) (*VerifyResponse, error)
}

type PaymentFlow struct {
	Backend  Backend
	Checkout Checkout
	Contact  Contact
}

// Quote is the amount shown before checkout. The backend prices the order.
func Quote(lawyer models.Lawyer) decimal.Decimal {
	if lawyer.ConsultationFee.IsPositive() {
		return lawyer.ConsultationFee
	}
	return DefaultFee
}

// Pay runs order, checkout and verification for one consultation. Nothing is
// returned once ctx is done, even if a call completed late.
func (f *PaymentFlow) Pay(ctx context.Context, mode string, lawyer models.Lawyer) (*PaidBooking, error) {
	if !models.ValidMode(mode) {
		return nil, fmt.Errorf("unsupported consultation mode %q", mode)
	}

	order, err := f.Backend.CreateOrder(ctx, lawyer.LawyerID, mode)
	if err != nil {
		return nil, &OrderCreationError{Err: err}
	}
	if order.Order == nil || order.Order.ID == "" || order.Booking == nil || order.Booking.ID == "" {
		return nil, &OrderCreationError{Err: errors.New("missing order id or booking id")}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := f.Checkout.Open(ctx, CheckoutRequest{
		OrderID:     order.Order.ID,
		AmountPaise: order.Order.AmountPaise,
		Currency:    order.Order.Currency,
		Description: fmt.Sprintf("%s consultation with %s", mode, lawyer.Name),
		Prefill:     f.Contact,
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	verified, err := f.Backend.VerifyPayment(ctx, models.PaymentVerification{
		PaymentID: result.PaymentID,
		OrderID:   result.OrderID,
		Signature: result.Signature,
		BookingID: order.Booking.ID,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := *order.Booking
	if verified.Booking != nil {
		b = *verified.Booking
	}
	return &PaidBooking{
		Booking:      b,
		SessionToken: "session_" + uuid.NewString(),
		Credentials:  verified.Credentials,
	}, nil
}
