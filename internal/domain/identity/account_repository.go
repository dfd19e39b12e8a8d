package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/physiomanager/backend/internal/domain/shared"
)

// AccountRepository defines the persistence contract for accounts
type AccountRepository interface {
	// FindByID finds an account by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)

	// FindByEmail finds an account by its (lowercased) email
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindAll returns all accounts matching the filter, newest first
	FindAll(ctx context.Context, filter shared.Filter) ([]Account, error)

	// Save creates or updates an account
	Save(ctx context.Context, account *Account) error

	// Delete removes an account. The account's clinical and billing
	// rows are tenant-scoped and become unreachable, not removed.
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts accounts
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
