// Package account authenticates clients and lawyers and manages their devices.
package account

import (
	"context"
	"errors"
	"strings"
	"time"

	accountRepo "lawdesk/database/repository/account"
	"lawdesk/models"
	"lawdesk/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthResponse is returned on a successful login.
type AuthResponse struct {
	Token    string          `json:"token"`
	Account  *models.Account `json:"account"`
	LawyerID string          `json:"lawyerId,omitempty"`
}

type AccountService interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Get(ctx context.Context, id string) (*models.Account, error)
	UpdateFCMToken(ctx context.Context, id, token string) error
}

type DefaultAccountService struct {
	Repo     accountRepo.AccountRepository
	TokenTTL time.Duration
}

func NewDefaultAccountService(repo accountRepo.AccountRepository) *DefaultAccountService {
	return &DefaultAccountService{Repo: repo, TokenTTL: utils.AccessTokenTTL}
}

func (s *DefaultAccountService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	acc, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, accountRepo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		utils.GetLogger().Error("Login: failed to fetch account", zap.Error(err))
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(acc.ID, acc.Role, acc.LawyerID, s.TokenTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, Account: acc, LawyerID: acc.LawyerID}, nil
}

func (s *DefaultAccountService) Get(ctx context.Context, id string) (*models.Account, error) {
	return s.Repo.GetByID(ctx, id)
}

// UpdateFCMToken registers the device that receives consultation pushes.
func (s *DefaultAccountService) UpdateFCMToken(ctx context.Context, id, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("fcm token is required")
	}
	return s.Repo.UpdateFCMToken(ctx, id, token)
}
