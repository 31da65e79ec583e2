package handlers

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	redispkg "wtyczki.backend/pkg/redis"
)

// In-memory repository fakes. Handler tests run real usecases on top of
// these, so a request exercises the full stack below the transport.

const testEncryptionKey = "0000000000000000000000000000000000000000000000000000000000000000"

func newTestStores(t *testing.T) (*redispkg.SessionStore, *redispkg.TokenStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	sessions, err := redispkg.NewSessionStore(rdb, testEncryptionKey)
	require.NoError(t, err)
	return sessions, redispkg.NewTokenStore(rdb)
}

type passUoW struct{}

func (passUoW) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entities.User
}

func newMemUserRepo(users ...*entities.User) *memUserRepo {
	r := &memUserRepo{users: make(map[uuid.UUID]*entities.User)}
	for _, u := range users {
		clone := *u
		r.users[u.ID] = &clone
	}
	return r
}

func (r *memUserRepo) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email && !user.IsDeleted {
			clone := *user
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	user.LastLoginAt = at
	return nil
}

func (r *memUserRepo) DebitTokens(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.IsDeleted {
		return 0, domainerrors.ErrNotFound
	}
	if user.CurrentTokenBalance < amount {
		return user.CurrentTokenBalance, domainerrors.ErrInsufficientBalance
	}
	user.CurrentTokenBalance -= amount
	user.TotalTokensUsed += amount
	return user.CurrentTokenBalance, nil
}

func (r *memUserRepo) CreditTokens(_ context.Context, id uuid.UUID, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.IsDeleted {
		return 0, domainerrors.ErrNotFound
	}
	user.CurrentTokenBalance += amount
	user.TotalTokensPurchased += amount
	return user.CurrentTokenBalance, nil
}

func (r *memUserRepo) MarkDeleted(_ context.Context, id uuid.UUID, anonymizedEmail string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok || user.IsDeleted {
		return domainerrors.ErrNotFound
	}
	user.Email = anonymizedEmail
	user.IsDeleted = true
	user.DeletedAt = &at
	return nil
}

type memLedgerRepo struct {
	mu      sync.Mutex
	entries []*entities.LedgerEntry
}

func (r *memLedgerRepo) Append(_ context.Context, entry *entities.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if entry.PaymentRef.Valid && e.PaymentRef.Valid && e.PaymentRef.String == entry.PaymentRef.String {
			return domainerrors.ErrAlreadyExists
		}
		if entry.ActionRef.Valid && e.ActionRef.Valid && e.ActionRef.String == entry.ActionRef.String {
			return domainerrors.ErrAlreadyExists
		}
	}
	clone := *entry
	r.entries = append(r.entries, &clone)
	return nil
}

func (r *memLedgerRepo) FindByPaymentRef(_ context.Context, paymentRef string) (*entities.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.PaymentRef.Valid && e.PaymentRef.String == paymentRef {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memLedgerRepo) FindByActionRef(_ context.Context, actionID string) (*entities.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ActionRef.Valid && e.ActionRef.String == actionID {
			clone := *e
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memLedgerRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.LedgerEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			clone := *e
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memActionRepo struct {
	mu      sync.Mutex
	actions map[string]*entities.McpAction
}

func newMemActionRepo() *memActionRepo {
	return &memActionRepo{actions: make(map[string]*entities.McpAction)}
}

func (r *memActionRepo) Create(_ context.Context, action *entities.McpAction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.actions[action.ActionID]; ok {
		return domainerrors.ErrAlreadyExists
	}
	clone := *action
	r.actions[action.ActionID] = &clone
	return nil
}

func (r *memActionRepo) GetByActionID(_ context.Context, actionID string) (*entities.McpAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	action, ok := r.actions[actionID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *action
	return &clone, nil
}

func (r *memActionRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entities.McpAction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.McpAction
	for _, a := range r.actions {
		if a.UserID == userID {
			clone := *a
			out = append(out, &clone)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memActionRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.actions {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memActionRepo) AnonymizeForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.actions {
		if a.UserID == userID {
			a.Parameters = entities.AnonymizedPayload(a.ToolName, time.Now())
			n++
		}
	}
	return n, nil
}

type memFailedRepo struct {
	mu         sync.Mutex
	deductions []*entities.FailedDeduction
}

func (r *memFailedRepo) Create(_ context.Context, deduction *entities.FailedDeduction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *deduction
	r.deductions = append(r.deductions, &clone)
	return nil
}

func (r *memFailedRepo) CountUnresolvedByUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.deductions {
		if d.UserID == userID && !d.Resolved {
			n++
		}
	}
	return n, nil
}

func (r *memFailedRepo) ListByUser(_ context.Context, userID string) ([]*entities.FailedDeduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.FailedDeduction
	for _, d := range r.deductions {
		if d.UserID == userID {
			clone := *d
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memFailedRepo) ResolveForDeletedUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, d := range r.deductions {
		if d.UserID == userID && !d.Resolved {
			d.UserID = entities.DeletedUserID
			d.Resolved = true
			n++
		}
	}
	return n, nil
}

type memDeletionRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*entities.AccountDeletion
}

func newMemDeletionRepo() *memDeletionRepo {
	return &memDeletionRepo{records: make(map[uuid.UUID]*entities.AccountDeletion)}
}

func (r *memDeletionRepo) Create(_ context.Context, record *entities.AccountDeletion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *record
	r.records[record.UserID] = &clone
	return nil
}

func (r *memDeletionRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*entities.AccountDeletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[userID]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *record
	return &clone, nil
}

func (r *memDeletionRepo) FindByEmailHash(_ context.Context, emailHash string) (*entities.AccountDeletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range r.records {
		if record.EmailHash == emailHash {
			clone := *record
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memDeletionRepo) ListSince(_ context.Context, since time.Time) ([]*entities.AccountDeletion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.AccountDeletion
	for _, record := range r.records {
		if record.DeletedAt.After(since) {
			clone := *record
			out = append(out, &clone)
		}
	}
	return out, nil
}

type memApiKeyRepo struct {
	mu   sync.Mutex
	keys map[uuid.UUID]*entities.ApiKey
}

func newMemApiKeyRepo() *memApiKeyRepo {
	return &memApiKeyRepo{keys: make(map[uuid.UUID]*entities.ApiKey)}
}

func (r *memApiKeyRepo) Create(_ context.Context, apiKey *entities.ApiKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *apiKey
	r.keys[apiKey.ID] = &clone
	return nil
}

func (r *memApiKeyRepo) FindByKeyHash(_ context.Context, keyHash string) (*entities.ApiKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.keys {
		if key.KeyHash == keyHash {
			clone := *key
			return &clone, nil
		}
	}
	return nil, domainerrors.ErrNotFound
}

func (r *memApiKeyRepo) FindByUserID(_ context.Context, userID uuid.UUID) ([]*entities.ApiKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.ApiKey
	for _, key := range r.keys {
		if key.UserID == userID {
			clone := *key
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *memApiKeyRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.ApiKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok {
		return nil, domainerrors.ErrNotFound
	}
	clone := *key
	return &clone, nil
}

func (r *memApiKeyRepo) UpdateLastUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok {
		return domainerrors.ErrNotFound
	}
	key.LastUsedAt = &at
	return nil
}

func (r *memApiKeyRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key, ok := r.keys[id]
	if !ok || !key.IsActive {
		return domainerrors.ErrNotFound
	}
	key.IsActive = false
	return nil
}

func (r *memApiKeyRepo) DeactivateAllForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, key := range r.keys {
		if key.UserID == userID && key.IsActive {
			key.IsActive = false
			n++
		}
	}
	return n, nil
}
