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

// UserRepository implements account data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:                   user.ID,
		Email:                user.Email,
		CurrentTokenBalance:  user.CurrentTokenBalance,
		TotalTokensPurchased: user.TotalTokensPurchased,
		TotalTokensUsed:      user.TotalTokensUsed,
		BillingCustomerID:    user.BillingCustomerID.Ptr(),
		IdentityUserID:       user.IdentityUserID.Ptr(),
		CreatedAt:            user.CreatedAt,
		LastLoginAt:          user.LastLoginAt,
	}

	if err := GetDB(ctx, r.db).WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	return nil
}

// GetByID gets a user by ID. Deleted accounts are returned too; callers
// decide what a terminal account means for them.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toUserEntity(&m), nil
}

// UpdateLastLogin bumps last_login_at
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// DebitTokens debits the balance with a conditional update: the WHERE
// clause re-checks existence, liveness, and sufficiency in the same
// statement, so two concurrent debits can never overdraw even without
// serializable isolation.
func (r *UserRepository) DebitTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	result := db.Model(&models.User{}).
		Where("id = ? AND is_deleted = ? AND current_token_balance >= ?", id, false, amount).
		Updates(map[string]interface{}{
			"current_token_balance": gorm.Expr("current_token_balance - ?", amount),
			"total_tokens_used":     gorm.Expr("total_tokens_used + ?", amount),
		})
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected == 0 {
		// Disambiguate why the guard refused
		var m models.User
		if err := db.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, domainerrors.ErrAccountNotFound
			}
			return 0, err
		}
		if m.IsDeleted {
			return 0, domainerrors.ErrAccountDeleted
		}
		return m.CurrentTokenBalance, domainerrors.ErrInsufficientBalance
	}

	var m models.User
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return 0, err
	}
	return m.CurrentTokenBalance, nil
}

// CreditTokens credits a completed purchase
func (r *UserRepository) CreditTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	result := db.Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"current_token_balance":  gorm.Expr("current_token_balance + ?", amount),
			"total_tokens_purchased": gorm.Expr("total_tokens_purchased + ?", amount),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		var m models.User
		if err := db.Where("id = ?", id).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, domainerrors.ErrAccountNotFound
			}
			return 0, err
		}
		return 0, domainerrors.ErrAccountDeleted
	}

	var m models.User
	if err := db.Where("id = ?", id).First(&m).Error; err != nil {
		return 0, err
	}
	return m.CurrentTokenBalance, nil
}

// MarkDeleted anonymizes the account row. The numeric ledger columns are
// deliberately absent from the update; they remain as the forfeited-balance
// audit trail.
func (r *UserRepository) MarkDeleted(ctx context.Context, id uuid.UUID, anonymizedEmail string, at time.Time) error {
	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", id, false).
		Updates(map[string]interface{}{
			"email":               anonymizedEmail,
			"billing_customer_id": nil,
			"identity_user_id":    nil,
			"is_deleted":          true,
			"deleted_at":          at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func toUserEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:                   m.ID,
		Email:                m.Email,
		CurrentTokenBalance:  m.CurrentTokenBalance,
		TotalTokensPurchased: m.TotalTokensPurchased,
		TotalTokensUsed:      m.TotalTokensUsed,
		BillingCustomerID:    null.StringFromPtr(m.BillingCustomerID),
		IdentityUserID:       null.StringFromPtr(m.IdentityUserID),
		IsDeleted:            m.IsDeleted,
		DeletedAt:            m.DeletedAt,
		CreatedAt:            m.CreatedAt,
		LastLoginAt:          m.LastLoginAt,
	}
}
