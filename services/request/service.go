package request

import (
	"context"
	"fmt"
	"strings"
	"time"

	accountRepo "lawdesk/database/repository/account"
	lawyerRepo "lawdesk/database/repository/lawyer"
	requestRepo "lawdesk/database/repository/request"
	"lawdesk/models"
	"lawdesk/services/signaling"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRequestService stores requests and tells the other party about them.
// Signaler and Pusher are optional.
type DefaultRequestService struct {
	Requests requestRepo.RequestRepository
	Lawyers  lawyerRepo.LawyerRepository
	Accounts accountRepo.AccountRepository
	Signaler Signaler
	Pusher   Pusher
	Logger   *zap.Logger

	now func() time.Time
}

func NewDefaultRequestService(requests requestRepo.RequestRepository, lawyers lawyerRepo.LawyerRepository,
	accounts accountRepo.AccountRepository, signaler Signaler, pusher Pusher, logger *zap.Logger) *DefaultRequestService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultRequestService{
		Requests: requests,
		Lawyers:  lawyers,
		Accounts: accounts,
		Signaler: signaler,
		Pusher:   pusher,
		Logger:   logger,
		now:      time.Now,
	}
}

func (s *DefaultRequestService) Send(ctx context.Context, client Actor, lawyerID, message string) (*models.LawyerRequest, error) {
	if client.Role != models.RoleClient {
		return nil, ErrForbidden
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if len(message) > MaxMessageLength {
		return nil, fmt.Errorf("%w: at most %d characters", ErrLongMessage, MaxMessageLength)
	}
	lawyer, err := s.Lawyers.GetByLawyerID(ctx, lawyerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	req := &models.LawyerRequest{
		ID:         uuid.NewString(),
		ClientID:   client.AccountID,
		ClientName: client.Name,
		LawyerID:   lawyer.LawyerID,
		Message:    message,
		Status:     models.RequestPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if acc, err := s.Accounts.GetByID(ctx, client.AccountID); err == nil {
		req.ClientName = acc.Name
		req.ClientEmail = acc.Email
	}
	if err := s.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	s.emit(ctx, signaling.LawyerRoom(req.LawyerID), req)
	s.push(ctx, lawyer.AccountID, "New consultation request", req.ClientName+" sent you a request.", req)
	return req, nil
}

func (s *DefaultRequestService) ListForClient(ctx context.Context, actor Actor, clientID string) ([]models.LawyerRequest, error) {
	if actor.Role != models.RoleAdmin && actor.AccountID != clientID {
		return nil, ErrForbidden
	}
	return s.Requests.ListByClient(ctx, clientID)
}

func (s *DefaultRequestService) ListForLawyer(ctx context.Context, actor Actor, lawyerID string) ([]models.LawyerRequest, error) {
	if actor.Role != models.RoleAdmin && (actor.Role != models.RoleLawyer || actor.LawyerID != lawyerID) {
		return nil, ErrForbidden
	}
	return s.Requests.ListByLawyer(ctx, lawyerID)
}

// Respond accepts or rejects a pending request. Only the addressed lawyer may
// answer, and only once.
func (s *DefaultRequestService) Respond(ctx context.Context, lawyer Actor, requestID, status string) (*models.LawyerRequest, error) {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return nil, ErrInvalidStatus
	}
	req, err := s.Requests.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if lawyer.Role != models.RoleLawyer || lawyer.LawyerID != req.LawyerID {
		return nil, ErrForbidden
	}
	if req.Status == status {
		return req, nil
	}

	updated, err := s.Requests.UpdateStatus(ctx, requestID, models.RequestPending, status)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, signaling.UserRoom(updated.ClientID), updated)
	s.push(ctx, updated.ClientID, "Request "+status, "Your consultation request was "+status+".", updated)
	return updated, nil
}

func (s *DefaultRequestService) emit(ctx context.Context, room string, req *models.LawyerRequest) {
	if s.Signaler == nil {
		return
	}
	if err := s.Signaler.Emit(ctx, room, models.EventLawyerRequest, req); err != nil {
		s.Logger.Warn("request event not delivered", zap.String("room", room), zap.String("requestId", req.ID), zap.Error(err))
	}
}

func (s *DefaultRequestService) push(ctx context.Context, accountID, title, body string, req *models.LawyerRequest) {
	if s.Pusher == nil || accountID == "" {
		return
	}
	acc, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil || acc.FCMToken == "" {
		return
	}
	data := map[string]string{"type": models.EventLawyerRequest, "requestId": req.ID, "status": req.Status}
	if err := s.Pusher.Push(ctx, acc.FCMToken, title, body, data); err != nil {
		s.Logger.Warn("request push failed", zap.String("requestId", req.ID), zap.Error(err))
	}
}
