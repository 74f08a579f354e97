package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"lawdesk/models"

	razorpay "github.com/razorpay/razorpay-go"
	"go.uber.org/zap"
)

const GatewayRazorpay = "razorpay"

// orderCreator is the part of the Razorpay orders resource we use.
type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayGateway creates Razorpay orders and checks checkout signatures.
type RazorpayGateway struct {
	orders    orderCreator
	keySecret string
	logger    *zap.Logger
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	client := razorpay.NewClient(keyID, keySecret)
	return &RazorpayGateway{orders: client.Order, keySecret: keySecret, logger: zap.L().Named("razorpay")}
}

func (g *RazorpayGateway) Name() string { return GatewayRazorpay }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req models.OrderRequest) (*models.Order, error) {
	paise, err := ToPaise(req.Amount)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := map[string]interface{}{"bookingId": req.BookingID}
	for k, v := range req.Notes {
		notes[k] = v
	}
	data := map[string]interface{}{
		"amount":   paise,
		"currency": req.Currency,
		"receipt":  req.BookingID,
		"notes":    notes,
	}

	body, err := g.orders.Create(data, nil)
	if err != nil {
		g.logger.Error("order creation failed", zap.String("bookingId", req.BookingID), zap.Error(err))
		return nil, fmt.Errorf("razorpay order: %w", err)
	}
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay order: response carried no id")
	}
	return &models.Order{ID: id, AmountPaise: paise, Currency: req.Currency, Gateway: GatewayRazorpay}, nil
}

// VerifyPayment checks the checkout signature, an HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the account secret.
func (g *RazorpayGateway) VerifyPayment(_ context.Context, v models.PaymentVerification) error {
	if v.OrderID == "" || v.PaymentID == "" || v.Signature == "" {
		return ErrVerificationFailed
	}
	expected := Sign(g.keySecret, v.OrderID, v.PaymentID)
	if !hmac.Equal([]byte(expected), []byte(v.Signature)) {
		g.logger.Warn("signature mismatch", zap.String("orderId", v.OrderID), zap.String("paymentId", v.PaymentID))
		return ErrVerificationFailed
	}
	return nil
}

// Sign computes the checkout signature for an order and payment.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
