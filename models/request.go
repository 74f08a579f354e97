package models

import "time"

// Consultation request statuses.
const (
	RequestPending  = "pending"
	RequestAccepted = "accepted"
	RequestRejected = "rejected"
)

// LawyerRequest is a client's free-text enquiry sent to a lawyer before any
// paid booking exists.
type LawyerRequest struct {
	ID          string    `bson:"id" json:"id"`
	ClientID    string    `bson:"client_id" json:"userId"`
	ClientName  string    `bson:"client_name,omitempty" json:"userName,omitempty"`
	ClientEmail string    `bson:"client_email,omitempty" json:"userEmail,omitempty"`
	LawyerID    string    `bson:"lawyer_id" json:"lawyerId"`
	Message     string    `bson:"message" json:"message"`
	Status      string    `bson:"status" json:"status"`
	CreatedAt   time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updatedAt"`
}

// Transaction is the payment view of a booking shown in lawyer histories.
type Transaction struct {
	BookingID     string    `json:"bookingId"`
	UserID        string    `json:"userId"`
	UserName      string    `json:"userName,omitempty"`
	LawyerID      string    `json:"lawyerId"`
	Mode          string    `json:"mode"`
	Amount        string    `json:"amount"`
	AmountPaise   int64     `json:"amountPaise"`
	Currency      string    `json:"currency"`
	OrderID       string    `json:"orderId"`
	PaymentID     string    `json:"paymentId,omitempty"`
	PaymentStatus string    `json:"paymentStatus"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Payment statuses reported on a Transaction.
const (
	PaymentPaid    = "paid"
	PaymentPending = "pending"
)

// TransactionFor projects b onto its payment fields.
func TransactionFor(b Booking) Transaction {
	status := PaymentPending
	if b.Verified {
		status = PaymentPaid
	}
	return Transaction{
		BookingID:     b.ID,
		UserID:        b.ClientID,
		UserName:      b.ClientName,
		LawyerID:      b.LawyerID,
		Mode:          b.Mode,
		Amount:        b.Amount.StringFixed(2),
		AmountPaise:   b.AmountPaise,
		Currency:      b.Currency,
		OrderID:       b.GatewayOrderID,
		PaymentID:     b.GatewayPaymentID,
		PaymentStatus: status,
		Status:        b.Status,
		CreatedAt:     b.CreatedAt,
	}
}
