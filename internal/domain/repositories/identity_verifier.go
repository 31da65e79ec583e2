package repositories

import "context"

// VerifiedIdentity is the outcome of checking an external identity assertion.
type VerifiedIdentity struct {
	Subject string
	Email   string
}

// IdentityVerifier validates identity assertions issued by the external
// identity provider during login.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawToken string) (*VerifiedIdentity, error)
}
