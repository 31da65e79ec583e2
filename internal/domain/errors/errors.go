package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrSessionExpired      = errors.New("session expired")
	ErrTokenExpired        = errors.New("token expired")
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountDeleted      = errors.New("account deleted")
	ErrAlreadyDeleted      = errors.New("account already deleted")
	ErrInsufficientBalance = errors.New("insufficient token balance")
	ErrDuplicateAction     = errors.New("duplicate action")
)

// AppError represents application error with HTTP status
type AppError struct {
	Status  int                    `json:"-"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new app error
func NewAppError(status int, code, message string, err error) *AppError {
	return &AppError{
		Status:  status,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common error constructors

func NotFound(message string) *AppError {
	return NewAppError(http.StatusNotFound, "ERR_NOT_FOUND", message, ErrNotFound)
}

func BadRequest(message string) *AppError {
	return NewAppError(http.StatusBadRequest, "ERR_VALIDATION", message, ErrInvalidInput)
}

func Unauthorized(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "ERR_UNAUTHORIZED", message, ErrUnauthorized)
}

func Forbidden(message string) *AppError {
	return NewAppError(http.StatusForbidden, "ERR_FORBIDDEN", message, ErrForbidden)
}

func AccountDeleted(message string) *AppError {
	return NewAppError(http.StatusUnauthorized, "ERR_ACCOUNT_DELETED", message, ErrAccountDeleted)
}

func AlreadyDeleted(message string) *AppError {
	return NewAppError(http.StatusConflict, "ERR_ALREADY_DELETED", message, ErrAlreadyDeleted)
}

func InsufficientBalance(message string) *AppError {
	return NewAppError(http.StatusPaymentRequired, "ERR_INSUFFICIENT_BALANCE", message, ErrInsufficientBalance)
}

// InsufficientBalanceFor reports a refused debit together with the numbers
// the caller needs to act on the refusal
func InsufficientBalanceFor(current, requested int64) *AppError {
	e := InsufficientBalance(fmt.Sprintf("insufficient token balance: have %d, need %d", current, requested))
	e.Details = map[string]interface{}{
		"currentBalance":  current,
		"requestedAmount": requested,
	}
	return e
}

func InternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, "ERR_INTERNAL", "internal server error", err)
}

// NewError creates a new error with a custom message wrapping an existing error
func NewError(message string, err error) error {
	return &AppError{
		Status:  http.StatusBadRequest,
		Code:    "ERR_BAD_REQUEST",
		Message: message,
		Err:     err,
	}
}
