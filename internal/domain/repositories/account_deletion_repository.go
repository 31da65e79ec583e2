package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
)

// AccountDeletionRepository writes and reads the permanent deletion audit
// trail. The table is append-only; no update or delete path exists.
type AccountDeletionRepository interface {
	Create(ctx context.Context, record *entities.AccountDeletion) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.AccountDeletion, error)
	// FindByEmailHash detects re-registration after deletion without
	// storing the plaintext address
	FindByEmailHash(ctx context.Context, emailHash string) (*entities.AccountDeletion, error)
	// ListSince feeds the anonymization sweep with recent deletions whose
	// secondary passes may have been interrupted
	ListSince(ctx context.Context, since time.Time) ([]*entities.AccountDeletion, error)
}
