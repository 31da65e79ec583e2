package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/infrastructure/models"
)

// ApiKeyRepository implements API key data operations
type ApiKeyRepository struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new API key repository
func NewApiKeyRepository(db *gorm.DB) *ApiKeyRepository {
	return &ApiKeyRepository{db: db}
}

// Create creates a new API key
func (r *ApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	m := &models.ApiKey{
		ID:         apiKey.ID,
		UserID:     apiKey.UserID,
		Name:       apiKey.Name,
		KeyPrefix:  apiKey.KeyPrefix,
		KeyHash:    apiKey.KeyHash,
		IsActive:   apiKey.IsActive,
		LastUsedAt: apiKey.LastUsedAt,
		ExpiresAt:  apiKey.ExpiresAt,
		CreatedAt:  apiKey.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// FindByKeyHash looks a key up by the hash of its secret
func (r *ApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("key_hash = ?", keyHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApiKeyEntity(&m), nil
}

// FindByUserID lists all keys of a user, newest first
func (r *ApiKeyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	var keyModels []models.ApiKey
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&keyModels).Error
	if err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(keyModels))
	for i := range keyModels {
		keys = append(keys, toApiKeyEntity(&keyModels[i]))
	}
	return keys, nil
}

// FindByID gets a key by its ID
func (r *ApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toApiKeyEntity(&m), nil
}

// UpdateLastUsed bumps last_used_at
func (r *ApiKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("id = ?", id).
		Update("last_used_at", at).Error
}

// Deactivate flips is_active off, preserving the row
func (r *ApiKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DeactivateAllForUser revokes every active key of the user
func (r *ApiKeyRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.ApiKey{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}

func toApiKeyEntity(m *models.ApiKey) *entities.ApiKey {
	return &entities.ApiKey{
		ID:         m.ID,
		UserID:     m.UserID,
		Name:       m.Name,
		KeyPrefix:  m.KeyPrefix,
		KeyHash:    m.KeyHash,
		IsActive:   m.IsActive,
		LastUsedAt: m.LastUsedAt,
		ExpiresAt:  m.ExpiresAt,
		CreatedAt:  m.CreatedAt,
	}
}
