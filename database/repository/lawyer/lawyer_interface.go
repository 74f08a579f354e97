package lawyerRepo

import (
	"context"
	"errors"

	"lawdesk/models"

	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("lawyer not found")

// ListFilter narrows the lawyer directory.
type ListFilter struct {
	Specialization string
	City           string
	VerifiedOnly   bool
}

// LawyerUpdate carries the editable profile fields. Nil fields are left unchanged.
type LawyerUpdate struct {
	Name            *string          `json:"name"`
	Specialization  *string          `json:"specialization"`
	Experience      *int             `json:"experience"`
	City            *string          `json:"city"`
	ConsultationFee *decimal.Decimal `json:"consultation_fees"`
	Status          *string          `json:"status"`
}

// Empty reports whether u changes nothing.
func (u LawyerUpdate) Empty() bool {
	return u.Name == nil && u.Specialization == nil && u.Experience == nil &&
		u.City == nil && u.ConsultationFee == nil && u.Status == nil
}

// LawyerRepository defines methods for the lawyer directory.
type LawyerRepository interface {
	List(ctx context.Context, filter ListFilter) ([]models.Lawyer, error)
	GetByLawyerID(ctx context.Context, lawyerID string) (*models.Lawyer, error)
	// Update applies the non-nil fields of u and returns the stored lawyer.
	Update(ctx context.Context, lawyerID string, u LawyerUpdate) (*models.Lawyer, error)
	SetVerified(ctx context.Context, lawyerID string, verified bool) (*models.Lawyer, error)
	Delete(ctx context.Context, lawyerID string) error
}
