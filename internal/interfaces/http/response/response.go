package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "wtyczki.backend/internal/domain/errors"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error maps a domain error to its HTTP shape. AppError carries its own
// status and code; bare sentinels get mapped here; anything else is a 500
// with the cause kept out of the body.
func Error(c *gin.Context, err error) {
	var appErr *domainerrors.AppError
	if !errors.As(err, &appErr) {
		appErr = fromSentinel(err)
	}

	body := gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	c.JSON(appErr.Status, body)
}

// AbortError is Error plus aborting the handler chain, for middleware
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

func fromSentinel(err error) *domainerrors.AppError {
	switch {
	case errors.Is(err, domainerrors.ErrInvalidCredential):
		return domainerrors.NewAppError(http.StatusUnauthorized, "ERR_INVALID_CREDENTIAL", "invalid credential", err)
	case errors.Is(err, domainerrors.ErrSessionExpired):
		return domainerrors.NewAppError(http.StatusUnauthorized, "ERR_SESSION_EXPIRED", "session expired", err)
	case errors.Is(err, domainerrors.ErrTokenExpired):
		return domainerrors.NewAppError(http.StatusUnauthorized, "ERR_TOKEN_EXPIRED", "token expired", err)
	case errors.Is(err, domainerrors.ErrAccountDeleted):
		return domainerrors.AccountDeleted("account deleted")
	case errors.Is(err, domainerrors.ErrAccountNotFound):
		return domainerrors.NewAppError(http.StatusUnauthorized, "ERR_ACCOUNT_NOT_FOUND", "account not found", err)
	case errors.Is(err, domainerrors.ErrAlreadyDeleted):
		return domainerrors.AlreadyDeleted("account already deleted")
	case errors.Is(err, domainerrors.ErrInsufficientBalance):
		return domainerrors.InsufficientBalance("insufficient token balance")
	case errors.Is(err, domainerrors.ErrInvalidInput):
		return domainerrors.BadRequest(err.Error())
	case errors.Is(err, domainerrors.ErrForbidden):
		return domainerrors.Forbidden("forbidden")
	case errors.Is(err, domainerrors.ErrNotFound):
		return domainerrors.NotFound("resource not found")
	case errors.Is(err, domainerrors.ErrUnauthorized):
		return domainerrors.Unauthorized("unauthorized")
	default:
		return domainerrors.InternalError(err)
	}
}
