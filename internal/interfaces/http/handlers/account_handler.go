package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"wtyczki.backend/internal/domain/entities"
	"wtyczki.backend/internal/interfaces/http/middleware"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

const defaultListLimit = 50

type AccountHandler struct {
	ledgerUsecase   *usecases.LedgerUsecase
	deletionUsecase *usecases.AccountDeletionUsecase
	cookieSecure    bool
}

func NewAccountHandler(ledgerUsecase *usecases.LedgerUsecase, deletionUsecase *usecases.AccountDeletionUsecase, cookieSecure bool) *AccountHandler {
	return &AccountHandler{
		ledgerUsecase:   ledgerUsecase,
		deletionUsecase: deletionUsecase,
		cookieSecure:    cookieSecure,
	}
}

// GetBalance returns the account's balance and totals
func (h *AccountHandler) GetBalance(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"currentTokenBalance":  user.CurrentTokenBalance,
		"totalTokensPurchased": user.TotalTokensPurchased,
		"totalTokensUsed":      user.TotalTokensUsed,
	})
}

// ListUsage returns the account's tool invocation history, newest first
func (h *AccountHandler) ListUsage(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	actions, total, err := h.ledgerUsecase.ListUsage(c.Request.Context(), user.ID, listLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"actions": actions,
		"total":   total,
	})
}

// ListTransactions returns the account's ledger entries, newest first
func (h *AccountHandler) ListTransactions(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	entries, err := h.ledgerUsecase.ListTransactions(c.Request.Context(), user.ID, listLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": entries})
}

type deleteAccountRequest struct {
	AcknowledgeForfeiture bool   `json:"acknowledgeForfeiture"`
	Reason                string `json:"reason"`
}

// DeleteAccount runs the full erasure workflow. Remaining tokens are
// forfeited; the request must say so explicitly.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	user, ok := middleware.RequireUser(c)
	if !ok {
		return
	}

	// absent body means nothing was acknowledged
	var req deleteAccountRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.deletionUsecase.DeleteAccount(c.Request.Context(), &entities.DeleteAccountInput{
		UserID:                 user.ID,
		Reason:                 req.Reason,
		RequesterIP:            c.ClientIP(),
		AcknowledgedForfeiture: req.AcknowledgeForfeiture,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	// the session this request rode in on is already revoked
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)

	c.JSON(http.StatusOK, result)
}

func listLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
