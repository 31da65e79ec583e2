package repositories

import (
	"context"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
)

// LedgerRepository appends to and reads the append-only token ledger
type LedgerRepository interface {
	Append(ctx context.Context, entry *entities.LedgerEntry) error
	// FindByPaymentRef returns the purchase entry recorded for an external
	// payment identifier, or ErrNotFound. Purchase idempotency hangs off it.
	FindByPaymentRef(ctx context.Context, paymentRef string) (*entities.LedgerEntry, error)
	// FindByActionRef returns the usage entry recorded for an action id, or
	// ErrNotFound. Replays report the balance recorded here, not the live one.
	FindByActionRef(ctx context.Context, actionID string) (*entities.LedgerEntry, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error)
}

// McpActionRepository stores the per-action usage log
type McpActionRepository interface {
	Create(ctx context.Context, action *entities.McpAction) error
	// GetByActionID returns the recorded action for an idempotency key, or
	// ErrNotFound
	GetByActionID(ctx context.Context, actionID string) (*entities.McpAction, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.McpAction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	// AnonymizeForUser replaces every action's parameters with the fixed
	// anonymized payload, preserving the tool name. Idempotent; safe to
	// re-run after a partial failure.
	AnonymizeForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// FailedDeductionRepository stores unresolved billing attempts awaiting
// reconciliation
type FailedDeductionRepository interface {
	Create(ctx context.Context, deduction *entities.FailedDeduction) error
	CountUnresolvedByUser(ctx context.Context, userID string) (int64, error)
	ListByUser(ctx context.Context, userID string) ([]*entities.FailedDeduction, error)
	// ResolveForDeletedUser cancels reconciliation for every unresolved
	// deduction of the user. Rows already resolved are not touched.
	ResolveForDeletedUser(ctx context.Context, userID string) (int64, error)
}
