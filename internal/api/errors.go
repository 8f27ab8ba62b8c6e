package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Engine error taxonomy. Domain packages wrap these sentinels with
// fmt.Errorf("%w: ...") so handlers can map any error to a stable code
// with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrStateConflict       = errors.New("operation invalid for current state")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrConcurrencyConflict = errors.New("concurrent update conflict")
)

// CodeFor maps an error to its HTTP status and stable error code.
// Unrecognized errors map to a generic 500 so internals never leak.
func CodeFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest, "VALIDATION"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, ErrStateConflict):
		return http.StatusConflict, "STATE_CONFLICT"
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusPaymentRequired, "INSUFFICIENT_FUNDS"
	case errors.Is(err, ErrConcurrencyConflict):
		// Retryable: callers may re-fetch and retry on this code.
		return http.StatusConflict, "CONCURRENCY_CONFLICT"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}

// Fail writes the error envelope for err.
func Fail(c *gin.Context, err error) {
	status, code := CodeFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: msg}})
}

// OK writes the success envelope.
func OK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, DataResponse{Data: data})
}
