package admin

import (
	"context"
	"fmt"
	"strings"

	accountRepo "lawdesk/database/repository/account"
	bookingRepo "lawdesk/database/repository/booking"
	lawyerRepo "lawdesk/database/repository/lawyer"
	"lawdesk/models"

	"go.uber.org/zap"
)

var lawyerStatuses = map[string]bool{"online": true, "offline": true}

type DefaultAdminService struct {
	Accounts accountRepo.AccountRepository
	Lawyers  lawyerRepo.LawyerRepository
	Bookings bookingRepo.BookingRepository
	Logger   *zap.Logger
}

func NewDefaultAdminService(accounts accountRepo.AccountRepository, lawyers lawyerRepo.LawyerRepository,
	bookings bookingRepo.BookingRepository, logger *zap.Logger) *DefaultAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultAdminService{Accounts: accounts, Lawyers: lawyers, Bookings: bookings, Logger: logger}
}

func (s *DefaultAdminService) ListUsers(ctx context.Context, role string) ([]models.Account, error) {
	switch role {
	case "", models.RoleClient, models.RoleLawyer, models.RoleAdmin:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
	return s.Accounts.List(ctx, role)
}

func (s *DefaultAdminService) VerifyLawyer(ctx context.Context, lawyerID string) (*models.Lawyer, error) {
	l, err := s.Lawyers.SetVerified(ctx, lawyerID, true)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("lawyer verified", zap.String("lawyerId", lawyerID))
	return l, nil
}

func (s *DefaultAdminService) UpdateLawyer(ctx context.Context, lawyerID string, u lawyerRepo.LawyerUpdate) (*models.Lawyer, error) {
	if err := validateUpdate(&u); err != nil {
		return nil, err
	}
	return s.Lawyers.Update(ctx, lawyerID, u)
}

func validateUpdate(u *lawyerRepo.LawyerUpdate) error {
	if u.Empty() {
		return fmt.Errorf("%w: no fields to update", ErrInvalidUpdate)
	}
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		if name == "" {
			return fmt.Errorf("%w: name cannot be empty", ErrInvalidUpdate)
		}
		u.Name = &name
	}
	if u.Experience != nil && *u.Experience < 0 {
		return fmt.Errorf("%w: experience cannot be negative", ErrInvalidUpdate)
	}
	if u.ConsultationFee != nil && !u.ConsultationFee.IsPositive() {
		return fmt.Errorf("%w: consultation fee must be positive", ErrInvalidUpdate)
	}
	if u.Status != nil && !lawyerStatuses[*u.Status] {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, *u.Status)
	}
	return nil
}

func (s *DefaultAdminService) DeleteLawyer(ctx context.Context, lawyerID string) error {
	if err := s.Lawyers.Delete(ctx, lawyerID); err != nil {
		return err
	}
	s.Logger.Info("lawyer deleted", zap.String("lawyerId", lawyerID))
	return nil
}

func (s *DefaultAdminService) LawyerTransactions(ctx context.Context, actor Actor, lawyerID string) ([]models.Transaction, error) {
	if actor.Role != models.RoleAdmin && (actor.Role != models.RoleLawyer || actor.LawyerID != lawyerID) {
		return nil, ErrForbidden
	}
	if _, err := s.Lawyers.GetByLawyerID(ctx, lawyerID); err != nil {
		return nil, err
	}
	bookings, err := s.Bookings.ListByLawyer(ctx, lawyerID)
	if err != nil {
		return nil, err
	}
	out := make([]models.Transaction, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, models.TransactionFor(b))
	}
	return out, nil
}
