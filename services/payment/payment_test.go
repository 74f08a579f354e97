package payment

import (
	"context"
	"errors"
	"testing"

	"lawdesk/config"
	"lawdesk/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

type fakeOrders struct {
	got  map[string]interface{}
	resp map[string]interface{}
	err  error
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	return f.resp, f.err
}

func TestToPaise(t *testing.T) {
	p, err := ToPaise(decimal.NewFromInt(500))
	require.NoError(t, err)
	assert.Equal(t, int64(50000), p)

	p, err = ToPaise(decimal.RequireFromString("10.5"))
	require.NoError(t, err)
	assert.Equal(t, int64(1050), p)

	_, err = ToPaise(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ToPaise(decimal.RequireFromString("1.005"))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, "500", FromPaise(50000).String())
}

func TestRazorpayCreateOrder(t *testing.T) {
	orders := &fakeOrders{resp: map[string]interface{}{"id": "order_123"}}
	g := &RazorpayGateway{orders: orders, keySecret: "s3cret", logger: zap.NewNop()}

	order, err := g.CreateOrder(context.Background(), models.OrderRequest{
		BookingID: "bk-1",
		Amount:    decimal.NewFromInt(500),
		Currency:  "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, "order_123", order.ID)
	assert.Equal(t, int64(50000), order.AmountPaise)
	assert.Equal(t, int64(50000), orders.got["amount"])
	assert.Equal(t, "bk-1", orders.got["receipt"])
}

func TestRazorpayCreateOrderWithoutID(t *testing.T) {
	g := &RazorpayGateway{orders: &fakeOrders{resp: map[string]interface{}{}}, logger: zap.NewNop()}
	_, err := g.CreateOrder(context.Background(), models.OrderRequest{Amount: decimal.NewFromInt(10), Currency: "INR"})
	assert.Error(t, err)

	g.orders = &fakeOrders{err: errors.New("boom")}
	_, err = g.CreateOrder(context.Background(), models.OrderRequest{Amount: decimal.NewFromInt(10), Currency: "INR"})
	assert.Error(t, err)
}

func TestRazorpayVerifySignature(t *testing.T) {
	g := &RazorpayGateway{keySecret: "s3cret", logger: zap.NewNop()}
	v := models.PaymentVerification{
		OrderID:   "order_123",
		PaymentID: "pay_456",
		BookingID: "bk-1",
	}
	v.Signature = Sign("s3cret", v.OrderID, v.PaymentID)
	assert.NoError(t, g.VerifyPayment(context.Background(), v))

	v.Signature = Sign("other", v.OrderID, v.PaymentID)
	assert.ErrorIs(t, g.VerifyPayment(context.Background(), v), ErrVerificationFailed)

	v.Signature = ""
	assert.ErrorIs(t, g.VerifyPayment(context.Background(), v), ErrVerificationFailed)
}

func TestStripeGateway(t *testing.T) {
	var created *stripe.PaymentIntentParams
	status := stripe.PaymentIntentStatusRequiresPaymentMethod
	g := &StripeGateway{
		newIntent: func(p *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			created = p
			return &stripe.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
		},
		getIntent: func(id string, _ *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
			return &stripe.PaymentIntent{ID: id, Status: status}, nil
		},
		logger: zap.NewNop(),
	}

	order, err := g.CreateOrder(context.Background(), models.OrderRequest{
		BookingID: "bk-1",
		Amount:    decimal.NewFromInt(10),
		Currency:  "INR",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_1", order.ID)
	assert.Equal(t, "pi_1_secret", order.ClientSecret)
	assert.Equal(t, int64(1000), *created.Amount)
	assert.Equal(t, "inr", *created.Currency)

	v := models.PaymentVerification{OrderID: "pi_1", PaymentID: "pi_1", BookingID: "bk-1"}
	assert.ErrorIs(t, g.VerifyPayment(context.Background(), v), ErrVerificationFailed)

	status = stripe.PaymentIntentStatusSucceeded
	assert.NoError(t, g.VerifyPayment(context.Background(), v))
}

func TestNewGatewaySelection(t *testing.T) {
	_, err := NewGateway(config.Config{PaymentGateway: "razorpay"})
	assert.Error(t, err)

	g, err := NewGateway(config.Config{PaymentGateway: "razorpay", RazorpayKeyID: "k", RazorpayKeySecret: "s"})
	require.NoError(t, err)
	assert.Equal(t, GatewayRazorpay, g.Name())

	_, err = NewGateway(config.Config{PaymentGateway: "paypal"})
	assert.Error(t, err)
}
