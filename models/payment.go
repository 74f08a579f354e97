package models

import "github.com/shopspring/decimal"

// OrderRequest asks a payment gateway for an order.
type OrderRequest struct {
	BookingID string
	Amount    decimal.Decimal
	Currency  string
	Notes     map[string]string
}

// Order is what a gateway returns for a created order.
type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Gateway     string `json:"gateway"`
	// ClientSecret is only set by gateways whose checkout needs it.
	ClientSecret string `json:"clientSecret,omitempty"`
}

// PaymentVerification is posted by the checkout once the payment completes.
type PaymentVerification struct {
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature string `json:"razorpay_signature"`
	BookingID string `json:"bookingId" binding:"required"`
}
