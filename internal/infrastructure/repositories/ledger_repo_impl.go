package repositories

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/infrastructure/models"
)

// LedgerRepository implements the append-only token ledger
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append writes one ledger entry. There is no update or delete counterpart.
func (r *LedgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	m := &models.TokenTransaction{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Type:         string(entry.Type),
		TokenAmount:  entry.TokenAmount,
		BalanceAfter: entry.BalanceAfter,
		Description:  entry.Description,
		PaymentRef:   entry.PaymentRef.Ptr(),
		ActionRef:    entry.ActionRef.Ptr(),
		CreatedAt:    entry.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// FindByPaymentRef returns the purchase entry for an external payment id
func (r *LedgerRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*entities.LedgerEntry, error) {
	var m models.TokenTransaction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("payment_ref = ?", paymentRef).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toLedgerEntity(&m), nil
}

// FindByActionRef returns the usage entry for a billed action id
func (r *LedgerRepository) FindByActionRef(ctx context.Context, actionID string) (*entities.LedgerEntry, error) {
	var m models.TokenTransaction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("action_ref = ?", actionID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toLedgerEntity(&m), nil
}

// ListByUser lists a user's ledger entries, newest first
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	var txModels []models.TokenTransaction
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&txModels).Error; err != nil {
		return nil, err
	}

	entries := make([]*entities.LedgerEntry, 0, len(txModels))
	for i := range txModels {
		entries = append(entries, toLedgerEntity(&txModels[i]))
	}
	return entries, nil
}

func toLedgerEntity(m *models.TokenTransaction) *entities.LedgerEntry {
	return &entities.LedgerEntry{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         entities.TransactionType(m.Type),
		TokenAmount:  m.TokenAmount,
		BalanceAfter: m.BalanceAfter,
		Description:  m.Description,
		PaymentRef:   null.StringFromPtr(m.PaymentRef),
		ActionRef:    null.StringFromPtr(m.ActionRef),
		CreatedAt:    m.CreatedAt,
	}
}
