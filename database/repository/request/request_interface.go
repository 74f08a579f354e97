package requestRepo

import (
	"context"
	"errors"

	"lawdesk/models"
)

var (
	ErrNotFound       = errors.New("request not found")
	ErrStatusConflict = errors.New("request already answered")
)

// RequestRepository stores client enquiries addressed to lawyers.
type RequestRepository interface {
	Create(ctx context.Context, req *models.LawyerRequest) error
	GetByID(ctx context.Context, id string) (*models.LawyerRequest, error)
	ListByClient(ctx context.Context, clientID string) ([]models.LawyerRequest, error)
	ListByLawyer(ctx context.Context, lawyerID string) ([]models.LawyerRequest, error)
	// UpdateStatus answers a request still in status from. A request that was
	// answered in the meantime yields ErrStatusConflict.
	UpdateStatus(ctx context.Context, id, from, to string) (*models.LawyerRequest, error)
}
