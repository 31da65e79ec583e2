package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/infrastructure/models"
)

// FailedDeductionRepository implements storage of unresolved billing attempts
type FailedDeductionRepository struct {
	db *gorm.DB
}

// NewFailedDeductionRepository creates a new failed deduction repository
func NewFailedDeductionRepository(db *gorm.DB) *FailedDeductionRepository {
	return &FailedDeductionRepository{db: db}
}

// Create records a billing attempt that could not complete
func (r *FailedDeductionRepository) Create(ctx context.Context, deduction *entities.FailedDeduction) error {
	m := &models.FailedDeduction{
		ID:             deduction.ID,
		ActionID:       deduction.ActionID,
		UserID:         deduction.UserID,
		Parameters:     deduction.Parameters,
		ErrorMessage:   deduction.ErrorMessage,
		Resolved:       deduction.Resolved,
		ResolvedAt:     deduction.ResolvedAt,
		ResolutionNote: deduction.ResolutionNote.Ptr(),
		RetryCount:     deduction.RetryCount,
		CreatedAt:      deduction.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// CountUnresolvedByUser counts deductions still awaiting reconciliation
func (r *FailedDeductionRepository) CountUnresolvedByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.FailedDeduction{}).
		Where("user_id = ? AND resolved = ?", userID, false).
		Count(&count).Error
	return count, err
}

// ListByUser lists all deductions of a user, oldest first
func (r *FailedDeductionRepository) ListByUser(ctx context.Context, userID string) ([]*entities.FailedDeduction, error) {
	var dedModels []models.FailedDeduction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&dedModels).Error
	if err != nil {
		return nil, err
	}

	deductions := make([]*entities.FailedDeduction, 0, len(dedModels))
	for i := range dedModels {
		deductions = append(deductions, toFailedDeductionEntity(&dedModels[i]))
	}
	return deductions, nil
}

// ResolveForDeletedUser cancels reconciliation for every unresolved
// deduction of the user in one guarded statement. The resolved predicate
// keeps already-resolved rows untouched and makes the pass idempotent:
// a re-run matches zero rows.
func (r *FailedDeductionRepository) ResolveForDeletedUser(ctx context.Context, userID string) (int64, error) {
	now := time.Now()
	payload, _ := json.Marshal(entities.AnonymizedParameters{
		Anonymized:   true,
		AnonymizedAt: now.UTC().Format(time.RFC3339),
		Reason:       entities.AnonymizationReason,
	})

	result := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.FailedDeduction{}).
		Where("user_id = ? AND resolved = ?", userID, false).
		Updates(map[string]interface{}{
			"user_id":         entities.DeletedUserID,
			"parameters":      string(payload),
			"resolved":        true,
			"resolved_at":     now,
			"resolution_note": entities.ResolutionNoteAccountDeleted,
		})
	return result.RowsAffected, result.Error
}

func toFailedDeductionEntity(m *models.FailedDeduction) *entities.FailedDeduction {
	return &entities.FailedDeduction{
		ID:             m.ID,
		ActionID:       m.ActionID,
		UserID:         m.UserID,
		Parameters:     m.Parameters,
		ErrorMessage:   m.ErrorMessage,
		Resolved:       m.Resolved,
		ResolvedAt:     m.ResolvedAt,
		ResolutionNote: null.StringFromPtr(m.ResolutionNote),
		RetryCount:     m.RetryCount,
		CreatedAt:      m.CreatedAt,
	}
}
