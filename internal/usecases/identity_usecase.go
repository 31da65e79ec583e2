package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/domain/repositories"
	"wtyczki.backend/pkg/crypto"
	"wtyczki.backend/pkg/logger"
	redispkg "wtyczki.backend/pkg/redis"
)

// IdentityUsecase resolves credentials from any of the three auth channels
// to the one canonical account, and handles login/logout against the
// external identity provider.
type IdentityUsecase struct {
	userRepo     repositories.UserRepository
	apiKeyRepo   repositories.ApiKeyRepository
	deletionRepo repositories.AccountDeletionRepository
	sessions     *redispkg.SessionStore
	tokens       *redispkg.TokenStore
	verifier     repositories.IdentityVerifier
	sessionTTL   time.Duration
}

// NewIdentityUsecase creates a new identity usecase
func NewIdentityUsecase(
	userRepo repositories.UserRepository,
	apiKeyRepo repositories.ApiKeyRepository,
	deletionRepo repositories.AccountDeletionRepository,
	sessions *redispkg.SessionStore,
	tokens *redispkg.TokenStore,
	verifier repositories.IdentityVerifier,
	sessionTTL time.Duration,
) *IdentityUsecase {
	return &IdentityUsecase{
		userRepo:     userRepo,
		apiKeyRepo:   apiKeyRepo,
		deletionRepo: deletionRepo,
		sessions:     sessions,
		tokens:       tokens,
		verifier:     verifier,
		sessionTTL:   sessionTTL,
	}
}

// LoginResult is returned after a successful identity-provider login
type LoginResult struct {
	User      *entities.User
	SessionID string
	ExpiresAt time.Time
}

// Resolve maps a parsed credential to its owning account. All three
// channels converge on the same user ID for one account.
func (u *IdentityUsecase) Resolve(ctx context.Context, cred entities.Credential) (*entities.User, error) {
	switch cred.Kind {
	case entities.CredentialSession:
		return u.resolveSession(ctx, cred.Value)
	case entities.CredentialAccessToken:
		return u.resolveAccessToken(ctx, cred.Value)
	case entities.CredentialAPIKey:
		return u.resolveAPIKey(ctx, cred.Value)
	default:
		return nil, domainerrors.ErrInvalidCredential
	}
}

func (u *IdentityUsecase) resolveSession(ctx context.Context, sessionID string) (*entities.User, error) {
	data, err := u.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redispkg.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredential
		}
		if errors.Is(err, redispkg.ErrExpired) {
			return nil, domainerrors.ErrSessionExpired
		}
		return nil, err
	}

	user, err := u.liveAccount(ctx, data.UserID)
	if err != nil {
		// a session pointing at a dead or missing account is revoked on
		// sight, never re-created
		_ = u.sessions.Delete(ctx, sessionID)
		return nil, err
	}
	return user, nil
}

func (u *IdentityUsecase) resolveAccessToken(ctx context.Context, token string) (*entities.User, error) {
	data, err := u.tokens.GetAccessToken(ctx, token)
	if err != nil {
		if errors.Is(err, redispkg.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredential
		}
		if errors.Is(err, redispkg.ErrExpired) {
			return nil, domainerrors.ErrTokenExpired
		}
		return nil, err
	}

	user, err := u.liveAccount(ctx, data.UserID)
	if err != nil {
		_ = u.tokens.DeleteAccessToken(ctx, token)
		return nil, err
	}
	return user, nil
}

func (u *IdentityUsecase) resolveAPIKey(ctx context.Context, key string) (*entities.User, error) {
	if !crypto.IsAPIKeyFormat(key) {
		return nil, domainerrors.ErrInvalidCredential
	}

	apiKey, err := u.apiKeyRepo.FindByKeyHash(ctx, crypto.HashAPIKey(key))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredential
		}
		return nil, err
	}
	if !apiKey.IsActive || apiKey.Expired(time.Now()) {
		return nil, domainerrors.ErrInvalidCredential
	}

	user, err := u.liveAccount(ctx, apiKey.UserID.String())
	if err != nil {
		return nil, err
	}

	// usage bookkeeping must not slow down or fail the request
	keyID := apiKey.ID
	bgCtx := context.WithoutCancel(ctx)
	go func() {
		if err := u.apiKeyRepo.UpdateLastUsed(bgCtx, keyID, time.Now()); err != nil {
			logger.Warn(bgCtx, "failed to update api key last_used_at",
				zap.String("key_id", keyID.String()), zap.Error(err))
		}
	}()

	return user, nil
}

// liveAccount loads the account and rejects deleted or vanished ones
func (u *IdentityUsecase) liveAccount(ctx context.Context, userID string) (*entities.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredential
	}

	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, domainerrors.ErrAccountDeleted
	}
	return user, nil
}

// Login verifies an identity-provider assertion, gets or creates the
// account for the asserted email, and issues a session.
func (u *IdentityUsecase) Login(ctx context.Context, assertion string) (*LoginResult, error) {
	identity, err := u.verifier.Verify(ctx, assertion)
	if err != nil {
		return nil, domainerrors.NewError("identity assertion rejected", domainerrors.ErrInvalidCredential)
	}

	now := time.Now()
	user, err := u.userRepo.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		if user.IsDeleted {
			// unreachable for anonymized rows; guards direct email reuse
			return nil, domainerrors.ErrAccountDeleted
		}
		if err := u.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
			return nil, err
		}
		user.LastLoginAt = now
	case errors.Is(err, domainerrors.ErrNotFound):
		if prior, derr := u.deletionRepo.FindByEmailHash(ctx, crypto.HashEmail(identity.Email)); derr == nil {
			logger.Info(ctx, "previously deleted account re-registering",
				zap.String("deletion_id", prior.DeletionID.String()))
		}
		user = &entities.User{
			ID:             uuid.New(),
			Email:          identity.Email,
			IdentityUserID: null.StringFrom(identity.Subject),
			CreatedAt:      now,
			LastLoginAt:    now,
		}
		if err := u.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	sessionID, err := crypto.GenerateSessionID()
	if err != nil {
		return nil, err
	}

	expiresAt := now.Add(u.sessionTTL)
	data := &redispkg.SessionData{
		UserID:    user.ID.String(),
		Email:     user.Email,
		IssuedAt:  now.Unix(),
		ExpiresAt: expiresAt.Unix(),
	}
	if err := u.sessions.Create(ctx, sessionID, data, u.sessionTTL); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, SessionID: sessionID, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session
func (u *IdentityUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessions.Delete(ctx, sessionID)
}

// GetUserByID gets a user by ID
func (u *IdentityUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, id)
}
