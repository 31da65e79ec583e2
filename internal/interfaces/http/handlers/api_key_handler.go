package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

type ApiKeyHandler struct {
	apiKeyUsecase *usecases.ApiKeyUsecase
}

func NewApiKeyHandler(apiKeyUsecase *usecases.ApiKeyUsecase) *ApiKeyHandler {
	return &ApiKeyHandler{apiKeyUsecase: apiKeyUsecase}
}

// CreateApiKey mints a new key. The secret appears in this response and
// nowhere else; only its hash is stored.
func (h *ApiKeyHandler) CreateApiKey(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.apiKeyUsecase.CreateApiKey(c.Request.Context(), user.ID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// ListApiKeys lists the user's keys, display prefixes only
func (h *ApiKeyHandler) ListApiKeys(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	keys, err := h.apiKeyUsecase.ListApiKeys(c.Request.Context(), user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"apiKeys": keys})
}

// RevokeApiKey deactivates one of the user's keys
func (h *ApiKeyHandler) RevokeApiKey(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid api key id"})
		return
	}

	if err := h.apiKeyUsecase.RevokeApiKey(c.Request.Context(), user.ID, keyID); err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "api key revoked"})
}
