package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// User represents a marketplace account. Accounts are created on first
// successful authentication by email and are never physically removed;
// deletion is a terminal soft-delete that anonymizes the row.
type User struct {
	ID                   uuid.UUID   `json:"id"`
	Email                string      `json:"email"`
	CurrentTokenBalance  int64       `json:"currentTokenBalance"`
	TotalTokensPurchased int64       `json:"totalTokensPurchased"`
	TotalTokensUsed      int64       `json:"totalTokensUsed"`
	BillingCustomerID    null.String `json:"billingCustomerId,omitempty"`
	IdentityUserID       null.String `json:"identityUserId,omitempty"`
	IsDeleted            bool        `json:"isDeleted"`
	DeletedAt            *time.Time  `json:"deletedAt,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	LastLoginAt          time.Time   `json:"lastLoginAt"`
}

// BalanceConsistent reports whether the running balance matches the
// purchase/usage totals. Holds for every account that never had tokens
// forfeited outside deletion.
func (u *User) BalanceConsistent() bool {
	return u.CurrentTokenBalance == u.TotalTokensPurchased-u.TotalTokensUsed
}

// AnonymizedEmail returns the terminal email assigned at deletion
func AnonymizedEmail(userID uuid.UUID, domain string) string {
	return "deleted+" + userID.String() + "@" + domain
}
