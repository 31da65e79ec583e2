package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"wtyczki.backend/internal/domain/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_busy_timeout=5000", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		current_token_balance INTEGER NOT NULL DEFAULT 0,
		total_tokens_purchased INTEGER NOT NULL DEFAULT 0,
		total_tokens_used INTEGER NOT NULL DEFAULT 0,
		billing_customer_id TEXT,
		identity_user_id TEXT,
		is_deleted BOOLEAN NOT NULL DEFAULT 0,
		deleted_at DATETIME,
		created_at DATETIME,
		last_login_at DATETIME
	);`)
}

func createAPIKeyTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE api_keys (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		key_prefix TEXT NOT NULL,
		key_hash TEXT NOT NULL UNIQUE,
		is_active BOOLEAN NOT NULL,
		last_used_at DATETIME,
		expires_at DATETIME,
		created_at DATETIME
	);`)
}

func createTokenTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE token_transactions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		token_amount INTEGER NOT NULL,
		balance_after INTEGER NOT NULL,
		description TEXT,
		payment_ref TEXT UNIQUE,
		action_ref TEXT UNIQUE,
		created_at DATETIME
	);`)
}

func createMcpActionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE mcp_actions (
		action_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		server_name TEXT NOT NULL,
		tool_name TEXT NOT NULL,
		parameters TEXT,
		tokens_consumed INTEGER NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		created_at DATETIME
	);`)
}

func createFailedDeductionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE failed_deductions (
		id TEXT PRIMARY KEY,
		action_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		parameters TEXT,
		error_message TEXT,
		resolved BOOLEAN NOT NULL DEFAULT 0,
		resolved_at DATETIME,
		resolution_note TEXT,
		retry_count INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}

func createAccountDeletionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE account_deletions (
		deletion_id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		original_email TEXT NOT NULL,
		email_hash TEXT NOT NULL,
		tokens_forfeited INTEGER NOT NULL,
		total_tokens_purchased INTEGER NOT NULL,
		total_tokens_used INTEGER NOT NULL,
		billing_customer_id TEXT,
		billing_deleted BOOLEAN NOT NULL,
		billing_error TEXT,
		mcp_actions_anonymized INTEGER NOT NULL DEFAULT 0,
		failed_deductions_cleaned INTEGER NOT NULL DEFAULT 0,
		acknowledged_forfeiture BOOLEAN NOT NULL,
		deletion_reason TEXT,
		deleted_at DATETIME NOT NULL,
		deleted_by_ip TEXT
	);`)
}

func createAllTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createAPIKeyTable(t, db)
	createTokenTransactionTable(t, db)
	createMcpActionTable(t, db)
	createFailedDeductionTable(t, db)
	createAccountDeletionTable(t, db)
}

func seedUser(t *testing.T, db *gorm.DB, balance int64) *entities.User {
	t.Helper()
	user := &entities.User{
		ID:                   uuid.New(),
		Email:                fmt.Sprintf("%s@example.com", uuid.NewString()[:8]),
		CurrentTokenBalance:  balance,
		TotalTokensPurchased: balance,
		CreatedAt:            time.Now(),
		LastLoginAt:          time.Now(),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}
