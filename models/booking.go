package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Consultation modes.
const (
	ModeChat  = "chat"
	ModeCall  = "call"
	ModeVideo = "video"
)

// Booking lifecycle statuses.
const (
	StatusRequested = "requested"
	StatusAccepted  = "accepted"
	StatusActive    = "active"
	StatusRejected  = "rejected"
	StatusEnded     = "ended"
)

// DefaultSessionSeconds is the consultation length when none is configured.
const DefaultSessionSeconds = 900

// Booking is a single paid consultation between a client and a lawyer.
type Booking struct {
	ID               string          `bson:"id" json:"id"`
	ClientID         string          `bson:"client_id" json:"clientId"`
	ClientName       string          `bson:"client_name,omitempty" json:"clientName,omitempty"`
	LawyerID         string          `bson:"lawyer_id" json:"lawyerId"`
	Mode             string          `bson:"mode" json:"mode"`
	Amount           decimal.Decimal `bson:"amount" json:"amount"`
	AmountPaise      int64           `bson:"amount_paise" json:"amountPaise"`
	Currency         string          `bson:"currency" json:"currency"`
	Status           string          `bson:"status" json:"status"`
	GatewayOrderID   string          `bson:"gateway_order_id" json:"gatewayOrderId"`
	GatewayPaymentID string          `bson:"gateway_payment_id,omitempty" json:"gatewayPaymentId,omitempty"`
	Verified         bool            `bson:"verified" json:"verified"`
	DurationSeconds  int             `bson:"duration_seconds" json:"durationSeconds"`
	StartedAt        *time.Time      `bson:"started_at,omitempty" json:"startedAt,omitempty"`
	EndedAt          *time.Time      `bson:"ended_at,omitempty" json:"endedAt,omitempty"`
	CreatedAt        time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt        time.Time       `bson:"updated_at" json:"updatedAt"`
}

// IsMediaMode reports whether the booking needs a media room.
func (b *Booking) IsMediaMode() bool {
	return IsMediaMode(b.Mode)
}

// RemainingSeconds returns how much of the session is left at now.
// Sessions that have not started report their full duration.
func (b *Booking) RemainingSeconds(now time.Time) int {
	if b.StartedAt == nil {
		return b.DurationSeconds
	}
	left := b.DurationSeconds - int(now.Sub(*b.StartedAt).Seconds())
	if left < 0 {
		return 0
	}
	return left
}

// ValidMode reports whether mode is one of chat, call or video.
func ValidMode(mode string) bool {
	switch mode {
	case ModeChat, ModeCall, ModeVideo:
		return true
	}
	return false
}

// IsMediaMode reports whether mode is call or video.
func IsMediaMode(mode string) bool {
	return mode == ModeCall || mode == ModeVideo
}
