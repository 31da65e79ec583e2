package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

const (
	// DeletedUserID replaces the owner on unresolved deductions cleaned up
	// during account deletion
	DeletedUserID = "DELETED"
	// ResolutionNoteAccountDeleted marks deductions cancelled by deletion
	ResolutionNoteAccountDeleted = "User account deleted - reconciliation cancelled"
)

// FailedDeduction records a billing attempt that could not complete and
// awaits reconciliation. The user reference is a plain string because
// deletion replaces it with the DELETED sentinel.
type FailedDeduction struct {
	ID             uuid.UUID   `json:"id"`
	ActionID       string      `json:"actionId"`
	UserID         string      `json:"userId"`
	Parameters     string      `json:"parameters"`
	ErrorMessage   string      `json:"errorMessage"`
	Resolved       bool        `json:"resolved"`
	ResolvedAt     *time.Time  `json:"resolvedAt,omitempty"`
	ResolutionNote null.String `json:"resolutionNote,omitempty"`
	RetryCount     int         `json:"retryCount"`
	CreatedAt      time.Time   `json:"createdAt"`
}
