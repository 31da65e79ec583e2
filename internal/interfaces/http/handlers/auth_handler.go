package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

type AuthHandler struct {
	identityUsecase *usecases.IdentityUsecase
	cookieSecure    bool
}

func NewAuthHandler(identityUsecase *usecases.IdentityUsecase, cookieSecure bool) *AuthHandler {
	return &AuthHandler{
		identityUsecase: identityUsecase,
		cookieSecure:    cookieSecure,
	}
}

type loginRequest struct {
	Assertion string `json:"assertion" binding:"required"`
}

// Login exchanges a verified identity assertion for a browser session.
// First login creates the account; later logins refresh last_login_at.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.identityUsecase.Login(c.Request.Context(), req.Assertion)
	if err != nil {
		response.Error(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, result.SessionID, maxAge, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, gin.H{
		"user":      result.User,
		"expiresAt": result.ExpiresAt,
	})
}

// Logout deletes the session server-side and clears the cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && sessionID != "" {
		if err := h.identityUsecase.Logout(c.Request.Context(), sessionID); err != nil {
			response.Error(c, err)
			return
		}
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GetMe returns the account resolved by the auth middleware
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}
