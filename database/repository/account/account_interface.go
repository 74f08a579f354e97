package accountRepo

import (
	"context"
	"errors"

	"lawdesk/models"
)

var ErrNotFound = errors.New("account not found")

// AccountRepository defines methods for login accounts.
type AccountRepository interface {
	// GetByEmail retrieves an account by email address.
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id string) (*models.Account, error)
	// UpdateFCMToken stores the push token of the account's current device.
	UpdateFCMToken(ctx context.Context, id, token string) error
	// List returns accounts of the given role, or all accounts when role is empty.
	List(ctx context.Context, role string) ([]models.Account, error)
}
