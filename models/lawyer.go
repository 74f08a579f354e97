package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Lawyer is the public listing of a lawyer who takes consultations.
type Lawyer struct {
	LawyerID        string          `bson:"lawyer_id" json:"lawyerId"`
	AccountID       string          `bson:"account_id" json:"accountId"`
	Name            string          `bson:"name" json:"name"`
	Email           string          `bson:"email" json:"email"`
	Specialization  string          `bson:"specialization" json:"specialization"`
	Experience      int             `bson:"experience" json:"experience"`
	City            string          `bson:"city" json:"city"`
	ConsultationFee decimal.Decimal `bson:"consultation_fee" json:"consultation_fees"`
	Status          string          `bson:"status" json:"status"`
	Verified        bool            `bson:"verified" json:"verified"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
}
