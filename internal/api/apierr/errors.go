package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/gamedb-go/internal/content"
	"github.com/mcoot/gamedb-go/internal/model"
	"github.com/mcoot/gamedb-go/internal/services/account"
	"github.com/mcoot/gamedb-go/internal/storeconn"
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

// Common error codes. Rejected player requests use the reject code itself.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidRank        = "INVALID_RANK"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeAccountNotFound    = "ACCOUNT_NOT_FOUND"
	CodeStoreUnavailable   = "STORE_UNAVAILABLE"
	CodeVerificationFailed = "VERIFICATION_FAILED"
	CodeInvalidContent     = "INVALID_CONTENT"
	CodeInternalError      = "INTERNAL_ERROR"
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

// Status returns the HTTP status an error is reported with
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}
	var ve *account.VerificationError
	if errors.As(err, &ve) {
		return &httpError{http.StatusInternalServerError, APIError{CodeVerificationFailed, "Password verification failed"}}
	}

	switch {
	case errors.Is(err, storeconn.ErrStoreUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeStoreUnavailable, "Store is not connected"}}
	case errors.Is(err, model.ErrAccountNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeAccountNotFound, "Account not found"}}
	case errors.Is(err, model.ErrInvalidRank):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRank, "Rank must be player, moderator, admin or banned"}}
	case errors.Is(err, content.ErrInvalidCoordinates):
		return &httpError{http.StatusInternalServerError, APIError{CodeInvalidContent, "Configured spawn point is invalid"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewRejectError reports a refused player request under its reject code
func NewRejectError(code account.RejectCode) error {
	switch code {
	case account.RejectInvalidLogin:
		return &httpError{http.StatusUnauthorized, APIError{string(code), "Invalid username or password"}}
	case account.RejectInvalidInput:
		return &httpError{http.StatusBadRequest, APIError{string(code), "Username, password or email is invalid"}}
	case account.RejectEmailExists:
		return &httpError{http.StatusConflict, APIError{string(code), "Email already registered"}}
	case account.RejectUserExists:
		return &httpError{http.StatusConflict, APIError{string(code), "Username already registered"}}
	default:
		return &httpError{http.StatusBadRequest, APIError{string(code), "Request rejected"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
