package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/domain/repositories"
	"wtyczki.backend/pkg/crypto"
	"wtyczki.backend/pkg/logger"
	"wtyczki.backend/pkg/metrics"
	redispkg "wtyczki.backend/pkg/redis"
)

// AccountDeletionUsecase runs the cascading erasure workflow. The account
// row flip and the audit record are atomic; everything after them is
// idempotent and re-runnable, so a crash mid-cascade loses nothing.
type AccountDeletionUsecase struct {
	uow          repositories.UnitOfWork
	userRepo     repositories.UserRepository
	actionRepo   repositories.McpActionRepository
	failedRepo   repositories.FailedDeductionRepository
	deletionRepo repositories.AccountDeletionRepository
	apiKeyRepo   repositories.ApiKeyRepository
	billing      repositories.BillingProvider
	sessions     *redispkg.SessionStore
	tokens       *redispkg.TokenStore
	anonDomain   string
}

// NewAccountDeletionUsecase creates a new account deletion usecase
func NewAccountDeletionUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	actionRepo repositories.McpActionRepository,
	failedRepo repositories.FailedDeductionRepository,
	deletionRepo repositories.AccountDeletionRepository,
	apiKeyRepo repositories.ApiKeyRepository,
	billing repositories.BillingProvider,
	sessions *redispkg.SessionStore,
	tokens *redispkg.TokenStore,
	anonDomain string,
) *AccountDeletionUsecase {
	return &AccountDeletionUsecase{
		uow:          uow,
		userRepo:     userRepo,
		actionRepo:   actionRepo,
		failedRepo:   failedRepo,
		deletionRepo: deletionRepo,
		apiKeyRepo:   apiKeyRepo,
		billing:      billing,
		sessions:     sessions,
		tokens:       tokens,
		anonDomain:   anonDomain,
	}
}

// DeleteAccount anonymizes the account and cascades across every store
// that references it. Remaining tokens are forfeited; the caller must have
// acknowledged that before the workflow starts.
func (u *AccountDeletionUsecase) DeleteAccount(ctx context.Context, input *entities.DeleteAccountInput) (*entities.DeleteAccountResult, error) {
	if !input.AcknowledgedForfeiture {
		return nil, domainerrors.BadRequest("deletion requires acknowledging that remaining tokens are forfeited")
	}

	user, err := u.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, domainerrors.ErrAlreadyDeleted
	}

	// snapshot the data the audit record needs before anything changes
	actionCount, err := u.actionRepo.CountByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	unresolvedCount, err := u.failedRepo.CountUnresolvedByUser(ctx, user.ID.String())
	if err != nil {
		return nil, err
	}

	// external billing cleanup is best-effort: its outcome is data on the
	// audit record, never a reason to keep the account
	billingDeleted := false
	var billingError null.String
	if user.BillingCustomerID.Valid {
		if err := u.billing.DeleteCustomer(ctx, user.BillingCustomerID.String); err != nil {
			billingError = null.StringFrom(err.Error())
			metrics.BillingCleanupFailures.Inc()
			logger.Warn(ctx, "billing customer deletion failed",
				zap.String("user_id", user.ID.String()), zap.Error(err))
		} else {
			billingDeleted = true
		}
	}

	now := time.Now()
	record := &entities.AccountDeletion{
		DeletionID:              uuid.New(),
		UserID:                  user.ID,
		OriginalEmail:           user.Email,
		EmailHash:               crypto.HashEmail(user.Email),
		TokensForfeited:         user.CurrentTokenBalance,
		TotalTokensPurchased:    user.TotalTokensPurchased,
		TotalTokensUsed:         user.TotalTokensUsed,
		BillingCustomerID:       user.BillingCustomerID,
		BillingDeleted:          billingDeleted,
		BillingError:            billingError,
		McpActionsAnonymized:    actionCount,
		FailedDeductionsCleaned: unresolvedCount,
		AcknowledgedForfeiture:  input.AcknowledgedForfeiture,
		DeletedAt:               now,
	}
	if input.Reason != "" {
		record.DeletionReason = null.StringFrom(input.Reason)
	}
	if input.RequesterIP != "" {
		record.DeletedByIP = null.StringFrom(input.RequesterIP)
	}

	// point of no return: the row flip and the audit record land together
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.userRepo.MarkDeleted(txCtx, user.ID, entities.AnonymizedEmail(user.ID, u.anonDomain), now); err != nil {
			return err
		}
		return u.deletionRepo.Create(txCtx, record)
	})
	if err != nil {
		return nil, err
	}

	// from here on the account is gone; the remaining passes are
	// idempotent and the sweep job re-runs them if any fails. The caller
	// may disconnect as soon as the transaction lands, so the cascade
	// must not die with the request context.
	cascadeCtx := context.WithoutCancel(ctx)
	u.runSecondaryPasses(cascadeCtx, user.ID)
	u.revokeCredentials(cascadeCtx, user.ID)

	metrics.AccountDeletions.Inc()
	logger.Info(ctx, "account deleted",
		zap.String("user_id", user.ID.String()),
		zap.String("deletion_id", record.DeletionID.String()),
		zap.Int64("tokens_forfeited", record.TokensForfeited))

	return &entities.DeleteAccountResult{
		Success:         true,
		TokensForfeited: record.TokensForfeited,
	}, nil
}

// RunSecondaryPasses re-runs the anonymization cascade for an already
// deleted account. Used by the background sweep; safe to call repeatedly.
func (u *AccountDeletionUsecase) RunSecondaryPasses(ctx context.Context, userID uuid.UUID) error {
	if _, err := u.deletionRepo.GetByUserID(ctx, userID); err != nil {
		return err
	}
	u.runSecondaryPasses(ctx, userID)
	u.revokeCredentials(ctx, userID)
	return nil
}

func (u *AccountDeletionUsecase) runSecondaryPasses(ctx context.Context, userID uuid.UUID) {
	if _, err := u.actionRepo.AnonymizeForUser(ctx, userID); err != nil {
		logger.Error(ctx, "usage anonymization pass failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	if _, err := u.failedRepo.ResolveForDeletedUser(ctx, userID.String()); err != nil {
		logger.Error(ctx, "failed deduction cleanup pass failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (u *AccountDeletionUsecase) revokeCredentials(ctx context.Context, userID uuid.UUID) {
	if _, err := u.sessions.RevokeAllForUser(ctx, userID.String()); err != nil {
		logger.Error(ctx, "session revocation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	if _, err := u.tokens.RevokeAllForUser(ctx, userID.String()); err != nil {
		logger.Error(ctx, "access token revocation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
	if _, err := u.apiKeyRepo.DeactivateAllForUser(ctx, userID); err != nil {
		logger.Error(ctx, "api key deactivation failed",
			zap.String("user_id", userID.String()), zap.Error(err))
	}
}

// GetDeletionRecord returns the audit record for a deleted account
func (u *AccountDeletionUsecase) GetDeletionRecord(ctx context.Context, userID uuid.UUID) (*entities.AccountDeletion, error) {
	return u.deletionRepo.GetByUserID(ctx, userID)
}
