package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// TransactionType represents the direction of a ledger entry
type TransactionType string

const (
	TransactionPurchase TransactionType = "purchase"
	TransactionUsage    TransactionType = "usage"
)

// LedgerEntry is one append-only row of the token ledger. Entries are never
// mutated or deleted, including after account deletion.
type LedgerEntry struct {
	ID           uuid.UUID       `json:"transactionId"`
	UserID       uuid.UUID       `json:"userId"`
	Type         TransactionType `json:"type"`
	TokenAmount  int64           `json:"tokenAmount"` // signed; negative for usage
	BalanceAfter int64           `json:"balanceAfter"`
	Description  string          `json:"description"`
	PaymentRef   null.String     `json:"paymentRef,omitempty"` // external payment id for purchases
	ActionRef    null.String     `json:"actionRef,omitempty"`  // action id for usage debits
	CreatedAt    time.Time       `json:"createdAt"`
}

// ConsumeResult is the outcome of a ledger debit. Replayed says the call
// matched an already-recorded action and nothing was debited again.
type ConsumeResult struct {
	Success    bool  `json:"success"`
	NewBalance int64 `json:"newBalance"`
	Replayed   bool  `json:"replayed,omitempty"`
}

// CreditResult is the outcome of a purchase credit. Replayed says the
// payment reference was already recorded and nothing was credited again.
type CreditResult struct {
	NewBalance int64 `json:"newBalance"`
	Replayed   bool  `json:"replayed,omitempty"`
}

// ConsumeInput carries one billable action into the ledger
type ConsumeInput struct {
	UserID     uuid.UUID
	Amount     int64
	ServerName string
	ToolName   string
	Parameters string // opaque structured payload, stored as given
	Summary    string
	Success    bool
	ErrorMsg   string
	ActionID   string // caller-supplied idempotency key, globally unique
}
