package entities

import (
	"wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/pkg/crypto"
)

// CredentialKind tags which of the three auth channels a credential came from
type CredentialKind string

const (
	CredentialSession     CredentialKind = "session"
	CredentialAccessToken CredentialKind = "oauth_token"
	CredentialAPIKey      CredentialKind = "api_key"
)

// Credential is a parsed, tagged credential. The kind is decided once from
// the credential's shape before any store lookup; the three kinds are never
// ambiguous (sessions arrive via a dedicated cookie, bearer values are
// disambiguated by prefix).
type Credential struct {
	Kind  CredentialKind
	Value string
}

// ParseBearer classifies an Authorization bearer value as an API key or an
// OAuth access token by its fixed textual prefix
func ParseBearer(raw string) (Credential, error) {
	switch {
	case crypto.IsAPIKeyFormat(raw):
		return Credential{Kind: CredentialAPIKey, Value: raw}, nil
	case crypto.IsAccessTokenFormat(raw):
		return Credential{Kind: CredentialAccessToken, Value: raw}, nil
	default:
		return Credential{}, errors.ErrInvalidCredential
	}
}

// SessionCredential wraps a session cookie value
func SessionCredential(sessionID string) Credential {
	return Credential{Kind: CredentialSession, Value: sessionID}
}
