package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
)

// PKCE code challenge methods per RFC 7636
const (
	CodeChallengePlain = "plain"
	CodeChallengeS256  = "S256"
)

// ComputeCodeChallenge derives the challenge a client would send for the
// given verifier and method. Unknown methods return the empty string.
func ComputeCodeChallenge(verifier, method string) string {
	switch method {
	case CodeChallengePlain:
		return verifier
	case CodeChallengeS256:
		sum := sha256.Sum256([]byte(verifier))
		return base64.RawURLEncoding.EncodeToString(sum[:])
	default:
		return ""
	}
}

// VerifyCodeChallenge checks a PKCE verifier against the challenge recorded
// at authorization time. plain requires byte equality; S256 requires
// base64url(SHA-256(verifier)) == challenge. A challenge produced under one
// method never validates under the other. Empty verifiers are hashed like
// any other input.
func VerifyCodeChallenge(verifier, challenge, method string) bool {
	switch method {
	case CodeChallengePlain:
		return subtle.ConstantTimeCompare([]byte(verifier), []byte(challenge)) == 1
	case CodeChallengeS256:
		sum := sha256.Sum256([]byte(verifier))
		expected := base64.RawURLEncoding.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(expected), []byte(challenge)) == 1
	default:
		return false
	}
}
