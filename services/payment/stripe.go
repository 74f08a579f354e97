package payment

import (
	"context"
	"fmt"
	"strings"

	"lawdesk/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"go.uber.org/zap"
)

const GatewayStripe = "stripe"

// StripeGateway uses a PaymentIntent as the order.
type StripeGateway struct {
	newIntent func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	getIntent func(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	logger    *zap.Logger
}

func NewStripeGateway(key string) *StripeGateway {
	stripe.Key = key
	return &StripeGateway{
		newIntent: paymentintent.New,
		getIntent: paymentintent.Get,
		logger:    zap.L().Named("stripe"),
	}
}

func (g *StripeGateway) Name() string { return GatewayStripe }

func (g *StripeGateway) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	paise, err := ToPaise(req.Amount)
	if err != nil {
		return nil, err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(paise),
		Currency: stripe.String(strings.ToLower(req.Currency)),
	}
	params.Context = ctx
	params.AddMetadata("bookingId", req.BookingID)
	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	pi, err := g.newIntent(params)
	if err != nil {
		g.logger.Error("payment intent creation failed", zap.String("bookingId", req.BookingID), zap.Error(err))
		return nil, fmt.Errorf("stripe payment intent: %w", err)
	}
	return &models.Order{
		ID:           pi.ID,
		AmountPaise:  paise,
		Currency:     req.Currency,
		Gateway:      GatewayStripe,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// VerifyPayment fetches the intent named by the order id and requires it to have succeeded.
func (g *StripeGateway) VerifyPayment(ctx context.Context, v models.PaymentVerification) error {
	if v.OrderID == "" {
		return ErrVerificationFailed
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := g.getIntent(v.OrderID, params)
	if err != nil {
		g.logger.Warn("payment intent lookup failed", zap.String("orderId", v.OrderID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	if pi.ID != v.OrderID || pi.Status != stripe.PaymentIntentStatusSucceeded {
		return ErrVerificationFailed
	}
	return nil
}
