package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/usecases"
)

type ledgerFixture struct {
	userRepo   *MockUserRepository
	ledgerRepo *MockLedgerRepository
	actionRepo *MockMcpActionRepository
	failedRepo *MockFailedDeductionRepository
	uc         *usecases.LedgerUsecase
}

func newLedgerFixture() *ledgerFixture {
	f := &ledgerFixture{
		userRepo:   new(MockUserRepository),
		ledgerRepo: new(MockLedgerRepository),
		actionRepo: new(MockMcpActionRepository),
		failedRepo: new(MockFailedDeductionRepository),
	}
	f.uc = usecases.NewLedgerUsecase(passthroughUoW{}, f.userRepo, f.ledgerRepo, f.actionRepo, f.failedRepo)
	return f
}

func consumeInput(userID uuid.UUID) *entities.ConsumeInput {
	return &entities.ConsumeInput{
		UserID:     userID,
		Amount:     10,
		ServerName: "weather-mcp",
		ToolName:   "get_forecast",
		Parameters: `{"city":"Warsaw"}`,
		Success:    true,
		ActionID:   "act_123",
	}
}

func TestLedgerUsecase_ConsumeTokens(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()
	input := consumeInput(userID)

	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(nil, domainerrors.ErrNotFound).Once()
	f.userRepo.On("DebitTokens", mock.Anything, userID, int64(10)).Return(int64(90), nil)
	f.ledgerRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Type == entities.TransactionUsage && e.TokenAmount == -10 && e.BalanceAfter == 90
	})).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.McpAction) bool {
		return a.ActionID == "act_123" && a.TokensConsumed == 10 && a.Success
	})).Return(nil)

	result, err := f.uc.ConsumeTokens(ctx, input)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, int64(90), result.NewBalance)
	require.False(t, result.Replayed)

	f.userRepo.AssertExpectations(t)
	f.ledgerRepo.AssertExpectations(t)
	f.actionRepo.AssertExpectations(t)
}

func TestLedgerUsecase_ConsumeTokens_Replay(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()
	input := consumeInput(userID)

	recorded := &entities.McpAction{
		ActionID:       "act_123",
		UserID:         userID,
		ServerName:     "weather-mcp",
		ToolName:       "get_forecast",
		TokensConsumed: 10,
		Success:        true,
	}
	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(recorded, nil)
	f.ledgerRepo.On("FindByActionRef", mock.Anything, "act_123").Return(&entities.LedgerEntry{
		UserID:       userID,
		Type:         entities.TransactionUsage,
		TokenAmount:  -10,
		BalanceAfter: 90,
		ActionRef:    null.StringFrom("act_123"),
	}, nil)

	result, err := f.uc.ConsumeTokens(ctx, input)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.True(t, result.Replayed)

	// the reported balance is the one recorded after the original debit;
	// the live balance is never consulted
	require.Equal(t, int64(90), result.NewBalance)
	f.userRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)

	// the replay never touched the balance or the ledger
	f.userRepo.AssertNotCalled(t, "DebitTokens", mock.Anything, mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerUsecase_ConsumeTokens_ReplayWrongOwner(t *testing.T) {
	f := newLedgerFixture()
	userID := uuid.New()
	input := consumeInput(userID)

	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(&entities.McpAction{
		ActionID: "act_123",
		UserID:   uuid.New(),
	}, nil)

	_, err := f.uc.ConsumeTokens(context.Background(), input)
	require.ErrorIs(t, err, domainerrors.ErrDuplicateAction)
}

func TestLedgerUsecase_ConsumeTokens_Rejections(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()

	t.Run("missing action id", func(t *testing.T) {
		input := consumeInput(userID)
		input.ActionID = "  "
		_, err := f.uc.ConsumeTokens(ctx, input)
		require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		input := consumeInput(userID)
		input.Amount = 0
		_, err := f.uc.ConsumeTokens(ctx, input)
		require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})

	t.Run("missing tool", func(t *testing.T) {
		input := consumeInput(userID)
		input.ToolName = ""
		_, err := f.uc.ConsumeTokens(ctx, input)
		require.ErrorIs(t, err, domainerrors.ErrInvalidInput)
	})
}

func TestLedgerUsecase_ConsumeTokens_InsufficientBalance(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()
	input := consumeInput(userID)

	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("DebitTokens", mock.Anything, userID, int64(10)).
		Return(int64(3), domainerrors.ErrInsufficientBalance)

	_, err := f.uc.ConsumeTokens(ctx, input)
	require.ErrorIs(t, err, domainerrors.ErrInsufficientBalance)

	// the refusal carries the live balance and the requested amount
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, int64(3), appErr.Details["currentBalance"])
	require.Equal(t, int64(10), appErr.Details["requestedAmount"])

	// a clean rejection is not a failed deduction
	f.failedRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.ledgerRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestLedgerUsecase_ConsumeTokens_StoreFailureRecordsDeduction(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()
	input := consumeInput(userID)
	boom := errors.New("disk full")

	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("DebitTokens", mock.Anything, userID, int64(10)).Return(int64(0), boom)
	f.failedRepo.On("Create", mock.Anything, mock.MatchedBy(func(d *entities.FailedDeduction) bool {
		return d.ActionID == "act_123" && d.UserID == userID.String() && d.ErrorMessage == "disk full"
	})).Return(nil)

	_, err := f.uc.ConsumeTokens(ctx, input)
	require.ErrorIs(t, err, boom)
	f.failedRepo.AssertExpectations(t)
}

func TestLedgerUsecase_ConsumeTokens_InsertRaceResolvesAsReplay(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()
	input := consumeInput(userID)

	recorded := &entities.McpAction{ActionID: "act_123", UserID: userID, Success: true}
	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(nil, domainerrors.ErrNotFound).Once()
	f.userRepo.On("DebitTokens", mock.Anything, userID, int64(10)).Return(int64(90), nil)
	f.ledgerRepo.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.actionRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("UNIQUE constraint failed"))
	f.actionRepo.On("GetByActionID", mock.Anything, "act_123").Return(recorded, nil).Once()
	f.ledgerRepo.On("FindByActionRef", mock.Anything, "act_123").Return(&entities.LedgerEntry{
		UserID:       userID,
		BalanceAfter: 90,
		ActionRef:    null.StringFrom("act_123"),
	}, nil)

	result, err := f.uc.ConsumeTokens(ctx, input)
	require.NoError(t, err)
	require.True(t, result.Replayed)
	require.Equal(t, int64(90), result.NewBalance)
	f.failedRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLedgerUsecase_CreditPurchase(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.ledgerRepo.On("FindByPaymentRef", mock.Anything, "cs_test_1").Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("CreditTokens", mock.Anything, userID, int64(1000)).Return(int64(1000), nil)
	f.ledgerRepo.On("Append", mock.Anything, mock.MatchedBy(func(e *entities.LedgerEntry) bool {
		return e.Type == entities.TransactionPurchase &&
			e.TokenAmount == 1000 &&
			e.PaymentRef == null.StringFrom("cs_test_1")
	})).Return(nil)

	result, err := f.uc.CreditPurchase(ctx, userID, 1000, "cs_test_1", "Purchased 1000 tokens")
	require.NoError(t, err)
	require.Equal(t, int64(1000), result.NewBalance)
	require.False(t, result.Replayed)
}

func TestLedgerUsecase_CreditPurchase_Idempotent(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()

	f.ledgerRepo.On("FindByPaymentRef", mock.Anything, "cs_test_1").Return(&entities.LedgerEntry{
		UserID:       userID,
		Type:         entities.TransactionPurchase,
		TokenAmount:  1000,
		BalanceAfter: 1000,
		PaymentRef:   null.StringFrom("cs_test_1"),
	}, nil)

	result, err := f.uc.CreditPurchase(ctx, userID, 1000, "cs_test_1", "retry")
	require.NoError(t, err)
	require.True(t, result.Replayed)
	require.Equal(t, int64(1000), result.NewBalance)

	f.userRepo.AssertNotCalled(t, "CreditTokens", mock.Anything, mock.Anything, mock.Anything)
}

func TestLedgerUsecase_CreditPurchase_Rejections(t *testing.T) {
	f := newLedgerFixture()
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.uc.CreditPurchase(ctx, userID, 0, "cs_test_1", "")
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = f.uc.CreditPurchase(ctx, userID, 100, "", "")
	require.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	f.ledgerRepo.On("FindByPaymentRef", mock.Anything, "cs_test_2").Return(nil, domainerrors.ErrNotFound)
	f.userRepo.On("CreditTokens", mock.Anything, userID, int64(100)).
		Return(int64(0), domainerrors.ErrAccountDeleted)

	_, err = f.uc.CreditPurchase(ctx, userID, 100, "cs_test_2", "")
	require.ErrorIs(t, err, domainerrors.ErrAccountDeleted)
}
