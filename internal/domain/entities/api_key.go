package entities

import (
	"time"

	"github.com/google/uuid"
)

// ApiKey represents a long-lived API key owned by exactly one account.
// Revocation flips is_active; rows are never deleted so history survives.
type ApiKey struct {
	ID         uuid.UUID  `json:"id"`
	UserID     uuid.UUID  `json:"userId"`
	Name       string     `json:"name"`
	KeyPrefix  string     `json:"keyPrefix"` // first chars of the key, for display
	KeyHash    string     `json:"-"`         // SHA-256 of the full key
	IsActive   bool       `json:"isActive"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Expired reports whether the key has an expiry in the past
func (k *ApiKey) Expired(now time.Time) bool {
	return k.ExpiresAt != nil && now.After(*k.ExpiresAt)
}

// CreateApiKeyInput represents input for creating an API key
type CreateApiKeyInput struct {
	Name      string     `json:"name" binding:"required,min=1,max=100"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// CreateApiKeyResponse carries the plaintext key exactly once, at creation
type CreateApiKeyResponse struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ApiKey    string     `json:"apiKey"` // shown once, only the hash is stored
	KeyPrefix string     `json:"keyPrefix"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}
