package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

type OAuthHandler struct {
	oauthUsecase *usecases.OAuthUsecase
}

func NewOAuthHandler(oauthUsecase *usecases.OAuthUsecase) *OAuthHandler {
	return &OAuthHandler{oauthUsecase: oauthUsecase}
}

type authorizeRequest struct {
	ClientID            string `json:"client_id" binding:"required"`
	RedirectURI         string `json:"redirect_uri" binding:"required"`
	CodeChallenge       string `json:"code_challenge" binding:"required"`
	CodeChallengeMethod string `json:"code_challenge_method"`
	Scope               string `json:"scope"`
}

// Authorize issues a one-time authorization code for the logged-in user.
// The consent UI posts here after the user approves the client.
func (h *OAuthHandler) Authorize(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req authorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	code, err := h.oauthUsecase.Authorize(c.Request.Context(), user.ID, &entities.AuthorizeInput{
		ClientID:            req.ClientID,
		RedirectURI:         req.RedirectURI,
		CodeChallenge:       req.CodeChallenge,
		CodeChallengeMethod: req.CodeChallengeMethod,
		Scopes:              strings.Fields(req.Scope),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": code})
}

type tokenRequest struct {
	GrantType    string `form:"grant_type" binding:"required"`
	Code         string `form:"code" binding:"required"`
	CodeVerifier string `form:"code_verifier" binding:"required"`
	ClientID     string `form:"client_id" binding:"required"`
	RedirectURI  string `form:"redirect_uri" binding:"required"`
}

// Token is the form-encoded token endpoint. The code is single-use: a
// failed exchange burns it.
func (h *OAuthHandler) Token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	if req.GrantType != "authorization_code" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported_grant_type"})
		return
	}

	tokens, err := h.oauthUsecase.Exchange(c.Request.Context(), &entities.TokenExchangeInput{
		Code:         req.Code,
		CodeVerifier: req.CodeVerifier,
		ClientID:     req.ClientID,
		RedirectURI:  req.RedirectURI,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

type revokeRequest struct {
	Token string `form:"token" binding:"required"`
}

// Revoke invalidates a single access token
func (h *OAuthHandler) Revoke(c *gin.Context) {
	var req revokeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	if err := h.oauthUsecase.Revoke(c.Request.Context(), req.Token); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "revoked"})
}
