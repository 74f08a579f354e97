// Package payment creates gateway orders and verifies completed payments.
package payment

import (
	"context"
	"errors"
	"fmt"

	"lawdesk/config"
	"lawdesk/models"
)

var (
	// ErrVerificationFailed means the gateway did not confirm the payment.
	ErrVerificationFailed = errors.New("payment verification failed")
	// ErrInvalidAmount is returned for non-positive or sub-paisa amounts.
	ErrInvalidAmount = errors.New("invalid payment amount")
)

// Gateway is a hosted checkout provider.
type Gateway interface {
	// Name identifies the gateway in orders and logs.
	Name() string
	// CreateOrder registers a payable order for the booking.
	CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error)
	// VerifyPayment confirms that the checkout completed for the order.
	VerifyPayment(ctx context.Context, v models.PaymentVerification) error
}

// NewGateway builds the gateway selected by PAYMENT_GATEWAY.
func NewGateway(cfg config.Config) (Gateway, error) {
	switch cfg.PaymentGateway {
	case "", GatewayRazorpay:
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return nil, errors.New("razorpay keys are not configured")
		}
		return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), nil
	case GatewayStripe:
		if cfg.StripeKey == "" {
			return nil, errors.New("stripe key is not configured")
		}
		return NewStripeGateway(cfg.StripeKey), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.PaymentGateway)
	}
}
