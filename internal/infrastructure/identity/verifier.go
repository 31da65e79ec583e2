// Package identity verifies login assertions from the external identity
// provider. Assertions are RS256 JWTs; signing keys come from the provider's
// JWKS endpoint and are cached between logins.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v3"
	"github.com/go-jose/go-jose/v3/jwt"
	"wtyczki.backend/internal/domain/repositories"
)

// ErrInvalidAssertion is returned when a token fails signature or claim checks.
var ErrInvalidAssertion = errors.New("invalid identity assertion")

// Verifier checks identity-provider JWTs against the provider's JWKS.
type Verifier struct {
	jwksURL    string
	issuer     string
	audience   string
	httpClient *http.Client

	mu        sync.RWMutex
	keySet    *jose.JSONWebKeySet
	fetchedAt time.Time
	cacheTTL  time.Duration
}

// VerifierConfig holds configuration for the identity verifier.
type VerifierConfig struct {
	// JWKSURL is the provider's key-set endpoint
	JWKSURL string

	// Issuer is the required iss claim
	Issuer string

	// Audience is the required aud claim
	Audience string

	// CacheTTL is how long fetched keys stay valid (default: 10m)
	CacheTTL time.Duration

	// Timeout is the HTTP request timeout (default: 10s)
	Timeout time.Duration
}

// NewVerifier creates a new identity verifier.
func NewVerifier(cfg VerifierConfig) *Verifier {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Verifier{
		jwksURL:  cfg.JWKSURL,
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		cacheTTL: cfg.CacheTTL,
	}
}

type assertionClaims struct {
	jwt.Claims
	Email string `json:"email"`
}

// Verify checks the assertion's signature and claims and returns the
// asserted identity.
func (v *Verifier) Verify(ctx context.Context, rawToken string) (*repositories.VerifiedIdentity, error) {
	tok, err := jwt.ParseSigned(rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}

	keySet, err := v.keys(ctx)
	if err != nil {
		return nil, err
	}

	var claims assertionClaims
	if err := v.claimsWithAnyKey(tok, keySet, &claims); err != nil {
		return nil, err
	}

	expected := jwt.Expected{
		Issuer:   v.issuer,
		Audience: jwt.Audience{v.audience},
		Time:     time.Now(),
	}
	if err := claims.Validate(expected); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAssertion, err)
	}
	if claims.Email == "" || claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject or email claim", ErrInvalidAssertion)
	}

	return &repositories.VerifiedIdentity{
		Subject: claims.Subject,
		Email:   claims.Email,
	}, nil
}

func (v *Verifier) claimsWithAnyKey(tok *jwt.JSONWebToken, keySet *jose.JSONWebKeySet, dest *assertionClaims) error {
	if len(tok.Headers) == 0 {
		return fmt.Errorf("%w: no signature header", ErrInvalidAssertion)
	}

	candidates := keySet.Keys
	if kid := tok.Headers[0].KeyID; kid != "" {
		candidates = keySet.Key(kid)
	}
	for i := range candidates {
		if err := tok.Claims(candidates[i].Key, dest); err == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: no key verified the signature", ErrInvalidAssertion)
}

func (v *Verifier) keys(ctx context.Context) (*jose.JSONWebKeySet, error) {
	v.mu.RLock()
	if v.keySet != nil && time.Since(v.fetchedAt) < v.cacheTTL {
		keySet := v.keySet
		v.mu.RUnlock()
		return keySet, nil
	}
	v.mu.RUnlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWKS request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("JWKS fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var keySet jose.JSONWebKeySet
	if err := json.NewDecoder(resp.Body).Decode(&keySet); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	v.mu.Lock()
	v.keySet = &keySet
	v.fetchedAt = time.Now()
	v.mu.Unlock()

	return &keySet, nil
}
