package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AccountDeletion is the permanent audit record written inside the core
// deletion transaction. It is append-only and never mutated or deleted,
// even when the secondary anonymization passes fail afterwards.
type AccountDeletion struct {
	DeletionID              uuid.UUID   `json:"deletionId"`
	UserID                  uuid.UUID   `json:"userId"`
	OriginalEmail           string      `json:"originalEmail"`
	EmailHash               string      `json:"emailHash"` // SHA-256, enables re-registration detection
	TokensForfeited         int64       `json:"tokensForfeited"`
	TotalTokensPurchased    int64       `json:"totalTokensPurchased"`
	TotalTokensUsed         int64       `json:"totalTokensUsed"`
	BillingCustomerID       null.String `json:"billingCustomerId,omitempty"`
	BillingDeleted          bool        `json:"billingDeleted"`
	BillingError            null.String `json:"billingError,omitempty"`
	McpActionsAnonymized    int64       `json:"mcpActionsAnonymized"`
	FailedDeductionsCleaned int64       `json:"failedDeductionsCleaned"`
	AcknowledgedForfeiture  bool        `json:"acknowledgedForfeiture"`
	DeletionReason          null.String `json:"deletionReason,omitempty"`
	DeletedAt               time.Time   `json:"deletedAt"`
	DeletedByIP             null.String `json:"deletedByIp,omitempty"`
}

// DeleteAccountInput represents a deletion request
type DeleteAccountInput struct {
	UserID                 uuid.UUID
	Reason                 string
	RequesterIP            string
	AcknowledgedForfeiture bool
}

// DeleteAccountResult is returned to the caller on success
type DeleteAccountResult struct {
	Success         bool  `json:"success"`
	TokensForfeited int64 `json:"tokensForfeited"`
}
