package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/trackmyhand/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeValidation     = "VALIDATION_FAILED"
	CodeUnknownPlayer  = "UNKNOWN_PLAYER"
	CodeInvalidState   = "INVALID_STATE"
	CodeNotReconciled  = "NOT_RECONCILED"
	CodeGameNotFound   = "GAME_NOT_FOUND"
	CodeUserNotFound   = "USER_NOT_FOUND"
	CodeUserExists     = "USER_EXISTS"
	CodeInvalidPIN     = "INVALID_PIN"
	CodeWrongPIN       = "WRONG_PIN"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeStorageFailed  = "STORAGE_FAILED"
	CodeInternalError  = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status WriteError would use for err
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError. Ledger errors carry their
// own detail, which is passed through as the message.
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrUserExists):
		return &httpError{http.StatusConflict, APIError{CodeUserExists, "User already exists"}}
	case errors.Is(err, model.ErrInvalidPIN):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidPIN, err.Error()}}
	case errors.Is(err, model.ErrWrongPIN):
		return &httpError{http.StatusUnauthorized, APIError{CodeWrongPIN, "Incorrect PIN"}}

	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeValidation, err.Error()}}
	case errors.Is(err, model.ErrReference):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeUnknownPlayer, err.Error()}}
	case errors.Is(err, model.ErrState):
		return &httpError{http.StatusConflict, APIError{CodeInvalidState, err.Error()}}
	case errors.Is(err, model.ErrReconciliation):
		return &httpError{http.StatusConflict, APIError{CodeNotReconciled, err.Error()}}
	case errors.Is(err, model.ErrPersistence):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStorageFailed, "Storage unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "PIN required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
