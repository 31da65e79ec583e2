package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// APIKeyPrefix is the fixed textual prefix of marketplace API keys
	APIKeyPrefix = "wtyk_"
	// AccessTokenPrefix is the fixed textual prefix of OAuth access tokens
	AccessTokenPrefix = "wtyo_"
	// APIKeySecretHexLen is the number of hex chars after the prefix
	APIKeySecretHexLen = 64
	// APIKeyDisplayLen is how much of the key is kept for display ("wtyk_a7f3k9m2p5q")
	APIKeyDisplayLen = 16
)

var randomRead = rand.Read

// Sha256Hex returns the hex-encoded SHA-256 digest of data
func Sha256Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HashEmail hashes a normalized (lowercased, trimmed) email address.
// Used by the deletion audit trail to detect re-registration without
// keeping the plaintext address around.
func HashEmail(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return Sha256Hex([]byte(normalized))
}

// VerifyEmailHash reports whether email produces the given hash
func VerifyEmailHash(email, hash string) bool {
	return HashEmail(email) == hash
}

// HashAPIKey hashes a presented API key secret. Plaintext keys are never
// stored or compared; lookup is always by this hash.
func HashAPIKey(apiKey string) string {
	return Sha256Hex([]byte(apiKey))
}

// GenerateRandomHex generates n random hex characters
func GenerateRandomHex(n int) (string, error) {
	bytes := make([]byte, n/2) // n is hex chars, so bytes is n/2
	if _, err := randomRead(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// GenerateAPIKey generates a new API key: wtyk_ + 64 hex chars
func GenerateAPIKey() (string, error) {
	raw, err := GenerateRandomHex(APIKeySecretHexLen)
	if err != nil {
		return "", err
	}
	return APIKeyPrefix + raw, nil
}

// GenerateAccessToken generates a new opaque OAuth access token: wtyo_ + 64 hex chars
func GenerateAccessToken() (string, error) {
	raw, err := GenerateRandomHex(APIKeySecretHexLen)
	if err != nil {
		return "", err
	}
	return AccessTokenPrefix + raw, nil
}

// GenerateSessionID generates an opaque session identifier
func GenerateSessionID() (string, error) {
	return GenerateRandomHex(64)
}

// GenerateAuthCode generates an OAuth authorization code
func GenerateAuthCode() (string, error) {
	return GenerateRandomHex(32)
}

// IsAPIKeyFormat reports whether a bearer credential looks like an API key
func IsAPIKeyFormat(credential string) bool {
	return strings.HasPrefix(credential, APIKeyPrefix) &&
		len(credential) == len(APIKeyPrefix)+APIKeySecretHexLen
}

// IsAccessTokenFormat reports whether a bearer credential looks like an OAuth access token
func IsAccessTokenFormat(credential string) bool {
	return strings.HasPrefix(credential, AccessTokenPrefix)
}
