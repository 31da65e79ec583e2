package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wtyczki.backend/internal/interfaces/http/response"
	"wtyczki.backend/internal/usecases"
)

// WebhookSecretHeader authenticates the payment provider's callbacks
const WebhookSecretHeader = "X-Webhook-Secret"

type PurchaseHandler struct {
	ledgerUsecase *usecases.LedgerUsecase
	webhookSecret string
}

func NewPurchaseHandler(ledgerUsecase *usecases.LedgerUsecase, webhookSecret string) *PurchaseHandler {
	return &PurchaseHandler{
		ledgerUsecase: ledgerUsecase,
		webhookSecret: webhookSecret,
	}
}

type purchaseCompletedRequest struct {
	UserID      string `json:"userId" binding:"required"`
	Amount      int64  `json:"amount" binding:"required"`
	PaymentRef  string `json:"paymentRef" binding:"required"`
	Description string `json:"description"`
}

// PurchaseCompleted credits tokens after the payment provider confirms a
// purchase. The provider retries on timeouts, so the credit is idempotent
// on paymentRef.
func (h *PurchaseHandler) PurchaseCompleted(c *gin.Context) {
	secret := c.GetHeader(WebhookSecretHeader)
	if h.webhookSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.webhookSecret)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid webhook secret"})
		return
	}

	var req purchaseCompletedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	result, err := h.ledgerUsecase.CreditPurchase(c.Request.Context(), userID, req.Amount, req.PaymentRef, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
