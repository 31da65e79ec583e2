package entities

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
)

// AnonymizationReason is recorded in anonymized payloads after deletion
const AnonymizationReason = "account_deleted"

// McpAction logs one billed tool invocation against an MCP server. The
// action ID is supplied by the caller and globally unique; it is the
// ledger's exactly-once guard.
type McpAction struct {
	ActionID       string      `json:"actionId"`
	UserID         uuid.UUID   `json:"userId"`
	ServerName     string      `json:"serverName"`
	ToolName       string      `json:"toolName"`
	Parameters     string      `json:"parameters"` // opaque JSON payload
	TokensConsumed int64       `json:"tokensConsumed"`
	Success        bool        `json:"success"`
	ErrorMessage   null.String `json:"errorMessage,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// AnonymizedParameters is the fixed payload that replaces action parameters
// when the owning account is deleted. The original tool name is preserved;
// everything else about the invocation's inputs is gone.
type AnonymizedParameters struct {
	Anonymized   bool   `json:"anonymized"`
	AnonymizedAt string `json:"anonymized_at"`
	Reason       string `json:"reason"`
	OriginalTool string `json:"original_tool,omitempty"`
}

// AnonymizedPayload renders the replacement parameters for an action
func AnonymizedPayload(originalTool string, at time.Time) string {
	payload, _ := json.Marshal(AnonymizedParameters{
		Anonymized:   true,
		AnonymizedAt: at.UTC().Format(time.RFC3339),
		Reason:       AnonymizationReason,
		OriginalTool: originalTool,
	})
	return string(payload)
}
