package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

type LedgerHandler struct {
	ledgerUsecase *usecases.LedgerUsecase
}

func NewLedgerHandler(ledgerUsecase *usecases.LedgerUsecase) *LedgerHandler {
	return &LedgerHandler{ledgerUsecase: ledgerUsecase}
}

type consumeRequest struct {
	ActionID     string `json:"actionId" binding:"required"`
	Amount       int64  `json:"amount" binding:"required"`
	ServerName   string `json:"serverName" binding:"required"`
	ToolName     string `json:"toolName" binding:"required"`
	Parameters   string `json:"parameters"`
	Summary      string `json:"summary"`
	Success      bool   `json:"success"`
	ErrorMessage string `json:"errorMessage"`
}

// Consume debits tokens for one tool invocation. Retrying with the same
// actionId replays the recorded outcome instead of debiting twice.
func (h *LedgerHandler) Consume(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	var req consumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.ledgerUsecase.ConsumeTokens(c.Request.Context(), &entities.ConsumeInput{
		UserID:     user.ID,
		Amount:     req.Amount,
		ServerName: req.ServerName,
		ToolName:   req.ToolName,
		Parameters: req.Parameters,
		Summary:    req.Summary,
		Success:    req.Success,
		ErrorMsg:   req.ErrorMessage,
		ActionID:   req.ActionID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
