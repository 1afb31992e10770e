package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/desertthunder/moodmix/internal/shared"
)

// Error codes returned in [ErrorResponse.Code].
const (
	CodeUnknownEmotion = "unknown_emotion"
	CodeValidation     = "validation"
	CodeNotFound       = "not_found"
	CodeAuthentication = "authentication"
	CodeUpstream       = "upstream"
	CodeUnavailable    = "unavailable"
	CodeTimeout        = "timeout"
	CodeInternal       = "internal"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// StatusFor maps an error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, shared.ErrUnknownEmotion):
		return http.StatusBadRequest, CodeUnknownEmotion
	case errors.Is(err, shared.ErrValidation), errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest, CodeValidation
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, shared.ErrAuthentication), errors.Is(err, shared.ErrMissingCredentials):
		return http.StatusBadGateway, CodeAuthentication
	case errors.Is(err, shared.ErrUpstream):
		return http.StatusBadGateway, CodeUpstream
	case errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// errorMessage adds the credential hint to authentication failures that lack it.
func errorMessage(err error, code string) string {
	msg := err.Error()
	if code == CodeAuthentication && !strings.Contains(msg, shared.AuthenticationHint) {
		msg += " (" + shared.AuthenticationHint + ")"
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
