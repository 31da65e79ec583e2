package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
	domainerrors "wtyczki.backend/internal/domain/errors"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
	"wtyczki.backend/pkg/logger"
	"wtyczki.backend/pkg/metrics"
)

const (
	// SessionCookieName is the browser session cookie
	SessionCookieName = "wtyczki_session"
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserKey is the gin context key for the resolved account
	UserKey = "authUser"
)

// identityResolver is the slice of IdentityUsecase the middleware needs
type identityResolver interface {
	Resolve(ctx context.Context, cred entities.Credential) (*entities.User, error)
}

var _ identityResolver = (*usecases.IdentityUsecase)(nil)

// AuthMiddleware resolves one of the three credential channels to the
// owning account. Bearer values (API key or OAuth access token) win over
// the session cookie so programmatic clients behind a browser session
// stay unambiguous.
func AuthMiddleware(identity identityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		cred, err := extractCredential(c)
		if err != nil {
			metrics.AuthFailures.WithLabelValues("missing").Inc()
			response.AbortError(c, err)
			return
		}

		user, err := identity.Resolve(c.Request.Context(), cred)
		if err != nil {
			metrics.AuthFailures.WithLabelValues(string(cred.Kind)).Inc()
			response.AbortError(c, err)
			return
		}

		c.Set(UserKey, user)

		// mirror into the request context so logger.WithContext picks it up
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, user.ID.String())
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func extractCredential(c *gin.Context) (entities.Credential, error) {
	authHeader := c.GetHeader(AuthorizationHeader)
	if authHeader != "" {
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			return entities.Credential{}, domainerrors.Unauthorized("invalid authorization format, use: Bearer <token>")
		}
		return entities.ParseBearer(strings.TrimPrefix(authHeader, BearerPrefix))
	}

	if sessionID, err := c.Cookie(SessionCookieName); err == nil && sessionID != "" {
		return entities.SessionCredential(sessionID), nil
	}

	return entities.Credential{}, domainerrors.Unauthorized("authentication required")
}

// GetUser returns the resolved account set by AuthMiddleware
func GetUser(c *gin.Context) (*entities.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*entities.User)
	return user, ok
}

// GetUserID returns the resolved account's ID
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	user, ok := GetUser(c)
	if !ok {
		return uuid.Nil, false
	}
	return user.ID, true
}

// RequireUser aborts with 401 when no account was resolved; handlers use
// it as a guard when reading the context directly
func RequireUser(c *gin.Context) (*entities.User, bool) {
	user, ok := GetUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"code":    "ERR_UNAUTHORIZED",
			"message": "user not authenticated",
		})
		return nil, false
	}
	return user, true
}
