// Package admin covers back-office management of lawyers and accounts.
package admin

import (
	"context"
	"errors"

	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"
	"lawdesk/services/signaling"
)

var (
	ErrForbidden     = errors.New("admin access required")
	ErrInvalidUpdate = errors.New("invalid lawyer update")
	ErrUnknownRole   = errors.New("unknown role")
)

// Actor is the authenticated caller.
type Actor = signaling.Identity

type AdminService interface {
	ListUsers(ctx context.Context, role string) ([]models.Account, error)
	VerifyLawyer(ctx context.Context, lawyerID string) (*models.Lawyer, error)
	UpdateLawyer(ctx context.Context, lawyerID string, u lawyerRepo.LawyerUpdate) (*models.Lawyer, error)
	DeleteLawyer(ctx context.Context, lawyerID string) error
	// LawyerTransactions is open to admins and to the lawyer it describes.
	LawyerTransactions(ctx context.Context, actor Actor, lawyerID string) ([]models.Transaction, error)
}
