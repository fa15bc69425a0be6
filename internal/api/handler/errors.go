package handler

import (
	"net/http"

	"github.com/mcoot/gamedb-go/internal/api/apierr"
	"github.com/mcoot/gamedb-go/internal/services/account"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// NewRejectError reports a refused player request
func NewRejectError(code account.RejectCode) error {
	return apierr.NewRejectError(code)
}
