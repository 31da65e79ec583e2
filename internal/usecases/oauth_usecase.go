package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/domain/repositories"
	"wtyczki.backend/pkg/crypto"
	"wtyczki.backend/pkg/jwt"
	redispkg "wtyczki.backend/pkg/redis"
)

// OAuthUsecase implements the authorization-code core: short-lived one-time
// codes bound to a PKCE challenge, exchanged for an opaque access token
// plus a signed id_token.
type OAuthUsecase struct {
	userRepo       repositories.UserRepository
	tokens         *redispkg.TokenStore
	idTokens       *jwt.IDTokenService
	authCodeTTL    time.Duration
	accessTokenTTL time.Duration
}

// NewOAuthUsecase creates a new OAuth usecase
func NewOAuthUsecase(
	userRepo repositories.UserRepository,
	tokens *redispkg.TokenStore,
	idTokens *jwt.IDTokenService,
	authCodeTTL time.Duration,
	accessTokenTTL time.Duration,
) *OAuthUsecase {
	return &OAuthUsecase{
		userRepo:       userRepo,
		tokens:         tokens,
		idTokens:       idTokens,
		authCodeTTL:    authCodeTTL,
		accessTokenTTL: accessTokenTTL,
	}
}

// Authorize issues a one-time authorization code for a logged-in user
func (u *OAuthUsecase) Authorize(ctx context.Context, userID uuid.UUID, input *entities.AuthorizeInput) (string, error) {
	method := input.CodeChallengeMethod
	if method == "" {
		method = crypto.CodeChallengeS256
	}
	if method != crypto.CodeChallengePlain && method != crypto.CodeChallengeS256 {
		return "", domainerrors.BadRequest("unsupported code challenge method")
	}
	if input.CodeChallenge == "" {
		return "", domainerrors.BadRequest("code challenge is required")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.ErrAccountNotFound
		}
		return "", err
	}
	if user.IsDeleted {
		return "", domainerrors.ErrAccountDeleted
	}

	code, err := crypto.GenerateAuthCode()
	if err != nil {
		return "", domainerrors.InternalError(err)
	}

	data := &redispkg.AuthCodeData{
		UserID:              user.ID.String(),
		ClientID:            input.ClientID,
		RedirectURI:         input.RedirectURI,
		CodeChallenge:       input.CodeChallenge,
		CodeChallengeMethod: method,
		ExpiresAt:           time.Now().Add(u.authCodeTTL).Unix(),
	}
	if err := u.tokens.PutAuthCode(ctx, code, data, u.authCodeTTL); err != nil {
		return "", err
	}

	return code, nil
}

// Exchange trades a code plus its PKCE verifier for tokens. The code is
// consumed before any check, so a failed exchange burns it.
func (u *OAuthUsecase) Exchange(ctx context.Context, input *entities.TokenExchangeInput) (*entities.TokenResponse, error) {
	data, err := u.tokens.ConsumeAuthCode(ctx, input.Code)
	if err != nil {
		if errors.Is(err, redispkg.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredential
		}
		return nil, err
	}

	if time.Now().Unix() >= data.ExpiresAt {
		return nil, domainerrors.ErrTokenExpired
	}
	if data.ClientID != input.ClientID || data.RedirectURI != input.RedirectURI {
		return nil, domainerrors.ErrInvalidCredential
	}
	if !crypto.VerifyCodeChallenge(input.CodeVerifier, data.CodeChallenge, data.CodeChallengeMethod) {
		return nil, domainerrors.ErrInvalidCredential
	}

	userID, err := uuid.Parse(data.UserID)
	if err != nil {
		return nil, domainerrors.ErrInvalidCredential
	}
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrAccountNotFound
		}
		return nil, err
	}
	if user.IsDeleted {
		return nil, domainerrors.ErrAccountDeleted
	}

	accessToken, err := crypto.GenerateAccessToken()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	tokenData := &redispkg.AccessTokenData{
		UserID:    user.ID.String(),
		ClientID:  input.ClientID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(u.accessTokenTTL).Unix(),
	}
	if err := u.tokens.PutAccessToken(ctx, accessToken, tokenData, u.accessTokenTTL); err != nil {
		return nil, err
	}

	idToken, err := u.idTokens.Issue(user.ID.String(), user.Email, input.ClientID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   int64(u.accessTokenTTL.Seconds()),
		IDToken:     idToken,
	}, nil
}

// Revoke invalidates a single access token
func (u *OAuthUsecase) Revoke(ctx context.Context, accessToken string) error {
	return u.tokens.DeleteAccessToken(ctx, accessToken)
}
