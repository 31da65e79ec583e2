package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
)

type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error)
	UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	// Deactivate flips is_active off. Rows are never deleted.
	Deactivate(ctx context.Context, id uuid.UUID) error
	// DeactivateAllForUser revokes every active key of the user and returns
	// how many were flipped
	DeactivateAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
