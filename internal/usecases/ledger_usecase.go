package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/domain/repositories"
	"wtyczki.backend/pkg/logger"
	"wtyczki.backend/pkg/metrics"
)

// LedgerUsecase is the single writer of token balances. Debits and credits
// run inside one transaction each and are idempotent on caller-supplied
// identifiers, so a retried request can never bill twice.
type LedgerUsecase struct {
	uow        repositories.UnitOfWork
	userRepo   repositories.UserRepository
	ledgerRepo repositories.LedgerRepository
	actionRepo repositories.McpActionRepository
	failedRepo repositories.FailedDeductionRepository
}

// NewLedgerUsecase creates a new ledger usecase
func NewLedgerUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	ledgerRepo repositories.LedgerRepository,
	actionRepo repositories.McpActionRepository,
	failedRepo repositories.FailedDeductionRepository,
) *LedgerUsecase {
	return &LedgerUsecase{
		uow:        uow,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		actionRepo: actionRepo,
		failedRepo: failedRepo,
	}
}

// ConsumeTokens debits one tool invocation. Exactly-once semantics hang off
// the caller-supplied action ID: a replayed ID returns the recorded outcome
// without touching the balance again.
func (u *LedgerUsecase) ConsumeTokens(ctx context.Context, input *entities.ConsumeInput) (*entities.ConsumeResult, error) {
	if strings.TrimSpace(input.ActionID) == "" {
		return nil, domainerrors.BadRequest("action_id is required")
	}
	if input.Amount <= 0 {
		return nil, domainerrors.BadRequest("token amount must be positive")
	}
	if input.ServerName == "" || input.ToolName == "" {
		return nil, domainerrors.BadRequest("server_name and tool_name are required")
	}

	if replay, err := u.findReplay(ctx, input); replay != nil || err != nil {
		return replay, err
	}

	var newBalance int64
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		balance, err := u.userRepo.DebitTokens(txCtx, input.UserID, input.Amount)
		if err != nil {
			if errors.Is(err, domainerrors.ErrInsufficientBalance) {
				// the refusal carries the live balance so the caller can act
				return domainerrors.InsufficientBalanceFor(balance, input.Amount)
			}
			return err
		}
		newBalance = balance

		entry := &entities.LedgerEntry{
			ID:           uuid.New(),
			UserID:       input.UserID,
			Type:         entities.TransactionUsage,
			TokenAmount:  -input.Amount,
			BalanceAfter: balance,
			Description:  usageDescription(input),
			ActionRef:    null.StringFrom(input.ActionID),
			CreatedAt:    time.Now(),
		}
		if err := u.ledgerRepo.Append(txCtx, entry); err != nil {
			return err
		}

		action := &entities.McpAction{
			ActionID:       input.ActionID,
			UserID:         input.UserID,
			ServerName:     input.ServerName,
			ToolName:       input.ToolName,
			Parameters:     input.Parameters,
			TokensConsumed: input.Amount,
			Success:        input.Success,
			CreatedAt:      time.Now(),
		}
		if input.ErrorMsg != "" {
			action.ErrorMessage = null.StringFrom(input.ErrorMsg)
		}
		return u.actionRepo.Create(txCtx, action)
	})
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrInsufficientBalance):
			metrics.InsufficientBalanceRejections.Inc()
			return nil, err
		case errors.Is(err, domainerrors.ErrAccountNotFound),
			errors.Is(err, domainerrors.ErrAccountDeleted):
			return nil, err
		}

		// a concurrent request with the same action ID may have won the
		// insert race; resolve it as a replay
		if replay, rerr := u.findReplay(ctx, input); replay != nil && rerr == nil {
			return replay, nil
		}

		u.recordFailedDeduction(ctx, input, err)
		return nil, err
	}

	metrics.TokensConsumed.Add(float64(input.Amount))
	return &entities.ConsumeResult{Success: true, NewBalance: newBalance}, nil
}

// findReplay returns the recorded outcome when the action ID was already
// billed, nil when it is fresh.
func (u *LedgerUsecase) findReplay(ctx context.Context, input *entities.ConsumeInput) (*entities.ConsumeResult, error) {
	recorded, err := u.actionRepo.GetByActionID(ctx, input.ActionID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if recorded.UserID != input.UserID {
		// action IDs are globally unique; a different owner is a misuse,
		// not a replay
		return nil, domainerrors.NewError("action_id already used", domainerrors.ErrDuplicateAction)
	}

	// report the balance recorded after the original debit; the live
	// balance may have moved since and is not this action's outcome
	entry, err := u.ledgerRepo.FindByActionRef(ctx, input.ActionID)
	if err != nil {
		return nil, err
	}
	metrics.DuplicateActions.Inc()
	return &entities.ConsumeResult{
		Success:    recorded.Success,
		NewBalance: entry.BalanceAfter,
		Replayed:   true,
	}, nil
}

// recordFailedDeduction captures a billing attempt that the store refused
// for later reconciliation. Best-effort: the original error is what the
// caller needs to see.
func (u *LedgerUsecase) recordFailedDeduction(ctx context.Context, input *entities.ConsumeInput, cause error) {
	deduction := &entities.FailedDeduction{
		ID:           uuid.New(),
		ActionID:     input.ActionID,
		UserID:       input.UserID.String(),
		Parameters:   input.Parameters,
		ErrorMessage: cause.Error(),
		CreatedAt:    time.Now(),
	}
	if err := u.failedRepo.Create(ctx, deduction); err != nil {
		logger.Error(ctx, "failed to record failed deduction",
			zap.String("action_id", input.ActionID), zap.Error(err))
	}
}

// CreditPurchase credits a completed purchase, idempotent on the external
// payment identifier.
func (u *LedgerUsecase) CreditPurchase(ctx context.Context, userID uuid.UUID, amount int64, paymentRef, description string) (*entities.CreditResult, error) {
	if amount <= 0 {
		return nil, domainerrors.BadRequest("token amount must be positive")
	}
	if paymentRef == "" {
		return nil, domainerrors.BadRequest("payment reference is required")
	}

	if recorded, err := u.ledgerRepo.FindByPaymentRef(ctx, paymentRef); err == nil {
		return &entities.CreditResult{NewBalance: recorded.BalanceAfter, Replayed: true}, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	var newBalance int64
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		balance, err := u.userRepo.CreditTokens(txCtx, userID, amount)
		if err != nil {
			return err
		}
		newBalance = balance

		return u.ledgerRepo.Append(txCtx, &entities.LedgerEntry{
			ID:           uuid.New(),
			UserID:       userID,
			Type:         entities.TransactionPurchase,
			TokenAmount:  amount,
			BalanceAfter: balance,
			Description:  description,
			PaymentRef:   null.StringFrom(paymentRef),
			CreatedAt:    time.Now(),
		})
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrAccountNotFound) || errors.Is(err, domainerrors.ErrAccountDeleted) {
			return nil, err
		}
		// the unique payment_ref index may have lost a race to a
		// concurrent credit of the same payment
		if recorded, rerr := u.ledgerRepo.FindByPaymentRef(ctx, paymentRef); rerr == nil {
			return &entities.CreditResult{NewBalance: recorded.BalanceAfter, Replayed: true}, nil
		}
		return nil, err
	}

	metrics.TokensPurchased.Add(float64(amount))
	return &entities.CreditResult{NewBalance: newBalance}, nil
}

// ListTransactions returns a user's ledger entries, newest first
func (u *LedgerUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	return u.ledgerRepo.ListByUser(ctx, userID, limit)
}

// ListUsage returns a user's recorded actions, newest first, with the total
func (u *LedgerUsecase) ListUsage(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.McpAction, int64, error) {
	actions, err := u.actionRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := u.actionRepo.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	return actions, total, nil
}

func usageDescription(input *entities.ConsumeInput) string {
	if input.Summary != "" {
		return input.Summary
	}
	return fmt.Sprintf("%s: %s", input.ServerName, input.ToolName)
}
