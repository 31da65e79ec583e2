package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
)

// UserRepository defines account data operations. Balance mutations are
// guarded conditionally in the store so concurrent debits can never drive
// a balance negative.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error)
	GetByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	// DebitTokens atomically decrements the balance and increments the usage
	// total, refusing when the account is missing, deleted, or short. The
	// post-debit balance is returned.
	DebitTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// CreditTokens atomically increments the balance and the purchase total.
	CreditTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error)
	// MarkDeleted anonymizes the account row: terminal email, cleared
	// external refs, is_deleted flag, deletion timestamp. Numeric ledger
	// fields are left untouched.
	MarkDeleted(ctx context.Context, id uuid.UUID, anonymizedEmail string, at time.Time) error
}

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
