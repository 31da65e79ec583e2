package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/domain/repositories"
	"wtyczki.backend/pkg/crypto"
)

// ApiKeyUsecase manages long-lived API keys. The plaintext key exists in
// memory exactly once, at creation; only the SHA-256 is stored.
type ApiKeyUsecase struct {
	apiKeyRepo repositories.ApiKeyRepository
	userRepo   repositories.UserRepository
}

// NewApiKeyUsecase creates a new API key usecase
func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	userRepo repositories.UserRepository,
) *ApiKeyUsecase {
	return &ApiKeyUsecase{
		apiKeyRepo: apiKeyRepo,
		userRepo:   userRepo,
	}
}

// CreateApiKey mints a new key for the user and returns the plaintext once
func (u *ApiKeyUsecase) CreateApiKey(ctx context.Context, userID uuid.UUID, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, domainerrors.ErrAccountDeleted
	}
	if input.ExpiresAt != nil && input.ExpiresAt.Before(time.Now()) {
		return nil, domainerrors.BadRequest("expiry must be in the future")
	}

	plaintext, err := crypto.GenerateAPIKey()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	entity := &entities.ApiKey{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      input.Name,
		KeyPrefix: plaintext[:crypto.APIKeyDisplayLen],
		KeyHash:   crypto.HashAPIKey(plaintext),
		IsActive:  true,
		ExpiresAt: input.ExpiresAt,
		CreatedAt: time.Now(),
	}

	if err := u.apiKeyRepo.Create(ctx, entity); err != nil {
		return nil, err
	}

	return &entities.CreateApiKeyResponse{
		ID:        entity.ID,
		Name:      entity.Name,
		ApiKey:    plaintext, // shown once
		KeyPrefix: entity.KeyPrefix,
		ExpiresAt: entity.ExpiresAt,
		CreatedAt: entity.CreatedAt,
	}, nil
}

// ListApiKeys lists the user's keys, prefixes only
func (u *ApiKeyUsecase) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	return u.apiKeyRepo.FindByUserID(ctx, userID)
}

// RevokeApiKey deactivates a key the user owns
func (u *ApiKeyUsecase) RevokeApiKey(ctx context.Context, userID uuid.UUID, id uuid.UUID) error {
	key, err := u.apiKeyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if key.UserID != userID {
		return domainerrors.Forbidden("not owner of api key")
	}

	return u.apiKeyRepo.Deactivate(ctx, id)
}
