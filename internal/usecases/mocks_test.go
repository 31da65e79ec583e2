package usecases_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/domain/repositories"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockUserRepository) DebitTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CreditTokens(ctx context.Context, id uuid.UUID, amount int64) (int64, error) {
	args := m.Called(ctx, id, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) MarkDeleted(ctx context.Context, id uuid.UUID, anonymizedEmail string, at time.Time) error {
	return m.Called(ctx, id, anonymizedEmail, at).Error(0)
}

type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	return m.Called(ctx, apiKey).Error(0)
}

func (m *MockApiKeyRepository) FindByKeyHash(ctx context.Context, keyHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByID(ctx context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) UpdateLastUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

func (m *MockApiKeyRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockApiKeyRepository) DeactivateAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, entry *entities.LedgerEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockLedgerRepository) FindByPaymentRef(ctx context.Context, paymentRef string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, paymentRef)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) FindByActionRef(ctx context.Context, actionID string) (*entities.LedgerEntry, error) {
	args := m.Called(ctx, actionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

type MockMcpActionRepository struct {
	mock.Mock
}

func (m *MockMcpActionRepository) Create(ctx context.Context, action *entities.McpAction) error {
	return m.Called(ctx, action).Error(0)
}

func (m *MockMcpActionRepository) GetByActionID(ctx context.Context, actionID string) (*entities.McpAction, error) {
	args := m.Called(ctx, actionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.McpAction), args.Error(1)
}

func (m *MockMcpActionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.McpAction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.McpAction), args.Error(1)
}

func (m *MockMcpActionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockMcpActionRepository) AnonymizeForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockFailedDeductionRepository struct {
	mock.Mock
}

func (m *MockFailedDeductionRepository) Create(ctx context.Context, deduction *entities.FailedDeduction) error {
	return m.Called(ctx, deduction).Error(0)
}

func (m *MockFailedDeductionRepository) CountUnresolvedByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockFailedDeductionRepository) ListByUser(ctx context.Context, userID string) ([]*entities.FailedDeduction, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.FailedDeduction), args.Error(1)
}

func (m *MockFailedDeductionRepository) ResolveForDeletedUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockAccountDeletionRepository struct {
	mock.Mock
}

func (m *MockAccountDeletionRepository) Create(ctx context.Context, record *entities.AccountDeletion) error {
	return m.Called(ctx, record).Error(0)
}

func (m *MockAccountDeletionRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.AccountDeletion, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountDeletion), args.Error(1)
}

func (m *MockAccountDeletionRepository) FindByEmailHash(ctx context.Context, emailHash string) (*entities.AccountDeletion, error) {
	args := m.Called(ctx, emailHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.AccountDeletion), args.Error(1)
}

func (m *MockAccountDeletionRepository) ListSince(ctx context.Context, since time.Time) ([]*entities.AccountDeletion, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.AccountDeletion), args.Error(1)
}

type MockBillingProvider struct {
	mock.Mock
}

func (m *MockBillingProvider) DeleteCustomer(ctx context.Context, customerID string) error {
	return m.Called(ctx, customerID).Error(0)
}

type MockIdentityVerifier struct {
	mock.Mock
}

func (m *MockIdentityVerifier) Verify(ctx context.Context, rawToken string) (*repositories.VerifiedIdentity, error) {
	args := m.Called(ctx, rawToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.VerifiedIdentity), args.Error(1)
}

// passthroughUoW runs the function directly; transactional behavior is
// covered by the repository-level tests.
type passthroughUoW struct{}

func (passthroughUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
