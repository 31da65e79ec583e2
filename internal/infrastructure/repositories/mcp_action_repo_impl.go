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

// McpActionRepository implements the per-action usage log
type McpActionRepository struct {
	db *gorm.DB
}

// NewMcpActionRepository creates a new MCP action repository
func NewMcpActionRepository(db *gorm.DB) *McpActionRepository {
	return &McpActionRepository{db: db}
}

// Create records one billed action. The action_id primary key enforces
// global uniqueness of the idempotency key.
func (r *McpActionRepository) Create(ctx context.Context, action *entities.McpAction) error {
	m := &models.McpAction{
		ActionID:       action.ActionID,
		UserID:         action.UserID,
		ServerName:     action.ServerName,
		ToolName:       action.ToolName,
		Parameters:     action.Parameters,
		TokensConsumed: action.TokensConsumed,
		Success:        action.Success,
		ErrorMessage:   action.ErrorMessage.Ptr(),
		CreatedAt:      action.CreatedAt,
	}
	return GetDB(ctx, r.db).WithContext(ctx).Create(m).Error
}

// GetByActionID returns the recorded action for an idempotency key
func (r *McpActionRepository) GetByActionID(ctx context.Context, actionID string) (*entities.McpAction, error) {
	var m models.McpAction
	err := GetDB(ctx, r.db).WithContext(ctx).
		Where("action_id = ?", actionID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return toMcpActionEntity(&m), nil
}

// ListByUser lists a user's actions, newest first
func (r *McpActionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.McpAction, error) {
	var actionModels []models.McpAction
	q := GetDB(ctx, r.db).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&actionModels).Error; err != nil {
		return nil, err
	}

	actions := make([]*entities.McpAction, 0, len(actionModels))
	for i := range actionModels {
		actions = append(actions, toMcpActionEntity(&actionModels[i]))
	}
	return actions, nil
}

// CountByUser counts a user's actions
func (r *McpActionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).WithContext(ctx).
		Model(&models.McpAction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// AnonymizeForUser replaces every action's parameters with the anonymized
// payload while preserving the tool name. Row-by-row because the payload
// embeds original_tool. Idempotent; re-running after a partial failure
// re-covers the same rows.
func (r *McpActionRepository) AnonymizeForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	db := GetDB(ctx, r.db).WithContext(ctx)

	var actionModels []models.McpAction
	if err := db.Where("user_id = ?", userID).Find(&actionModels).Error; err != nil {
		return 0, err
	}

	now := time.Now()
	var anonymized int64
	for i := range actionModels {
		payload := entities.AnonymizedPayload(actionModels[i].ToolName, now)
		result := db.Model(&models.McpAction{}).
			Where("action_id = ?", actionModels[i].ActionID).
			Update("parameters", payload)
		if result.Error != nil {
			return anonymized, result.Error
		}
		anonymized += result.RowsAffected
	}
	return anonymized, nil
}

func toMcpActionEntity(m *models.McpAction) *entities.McpAction {
	return &entities.McpAction{
		ActionID:       m.ActionID,
		UserID:         m.UserID,
		ServerName:     m.ServerName,
		ToolName:       m.ToolName,
		Parameters:     m.Parameters,
		TokensConsumed: m.TokensConsumed,
		Success:        m.Success,
		ErrorMessage:   null.StringFromPtr(m.ErrorMessage),
		CreatedAt:      m.CreatedAt,
	}
}
