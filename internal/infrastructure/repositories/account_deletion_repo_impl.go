package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/infrastructure/models"
)

// AccountDeletionRepository implements the append-only deletion audit trail.
// No method issues UPDATE or DELETE against the table.
type AccountDeletionRepository struct {
	db *gorm.DB
}

// NewAccountDeletionRepository creates a new account deletion repository
func NewAccountDeletionRepository(db *gorm.DB) *AccountDeletionRepository {
	return &AccountDeletionRepository{db: db}
}

// Create inserts the permanent audit record
func (r *AccountDeletionRepository) Create(ctx context.Context, record *entities.AccountDeletion) error {
	m := &models.AccountDeletion{
		DeletionID:              record.DeletionID,
		UserID:                  record.UserID,
		OriginalEmail:           record.OriginalEmail,
		EmailHash:               record.EmailHash,
		TokensForfeited:         record.TokensForfeited,
		TotalTokensPurchased:    record.TotalTokensPurchased,
		TotalTokensUsed:         record.TotalTokensUsed,
		BillingCustomerID:       record.BillingCustomerID.Ptr(),
		BillingDeleted:          record.BillingDeleted,
		BillingError:            record.BillingError.Ptr(),
		McpActionsAnonymized:    record.McpActionsAnonymized,
		FailedDeductionsCleaned: record.FailedDeductionsCleaned,
		AcknowledgedForfeiture:  record.AcknowledgedForfeiture,
		DeletionReason:          record.DeletionReason.Ptr(),
		DeletedAt:               record.DeletedAt,
		DeletedByIP:             record.DeletedByIP.Ptr(),
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByUserID returns the most recent deletion record for a user
func (r *AccountDeletionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.AccountDeletion, error) {
	var m models.AccountDeletion
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("deleted_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountDeletionEntity(&m), nil
}

// FindByEmailHash returns the most recent deletion whose original email
// hashes to the given value
func (r *AccountDeletionRepository) FindByEmailHash(ctx context.Context, emailHash string) (*entities.AccountDeletion, error) {
	var m models.AccountDeletion
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("email_hash = ?", emailHash).
		Order("deleted_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toAccountDeletionEntity(&m), nil
}

// ListSince lists deletions performed at or after the given time
func (r *AccountDeletionRepository) ListSince(ctx context.Context, since time.Time) ([]*entities.AccountDeletion, error) {
	var recordModels []models.AccountDeletion
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("deleted_at >= ?", since).
		Order("deleted_at ASC").
		Find(&recordModels).Error
	if err != nil {
		return nil, err
	}

	records := make([]*entities.AccountDeletion, 0, len(recordModels))
	for i := range recordModels {
		records = append(records, toAccountDeletionEntity(&recordModels[i]))
	}
	return records, nil
}

func toAccountDeletionEntity(m *models.AccountDeletion) *entities.AccountDeletion {
	return &entities.AccountDeletion{
		DeletionID:              m.DeletionID,
		UserID:                  m.UserID,
		OriginalEmail:           m.OriginalEmail,
		EmailHash:               m.EmailHash,
		TokensForfeited:         m.TokensForfeited,
		TotalTokensPurchased:    m.TotalTokensPurchased,
		TotalTokensUsed:         m.TotalTokensUsed,
		BillingCustomerID:       null.StringFromPtr(m.BillingCustomerID),
		BillingDeleted:          m.BillingDeleted,
		BillingError:            null.StringFromPtr(m.BillingError),
		McpActionsAnonymized:    m.McpActionsAnonymized,
		FailedDeductionsCleaned: m.FailedDeductionsCleaned,
		AcknowledgedForfeiture:  m.AcknowledgedForfeiture,
		DeletionReason:          null.StringFromPtr(m.DeletionReason),
		DeletedAt:               m.DeletedAt,
		DeletedByIP:             null.StringFromPtr(m.DeletedByIP),
	}
}
