package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/docblog/internal/common"
)

// Error kinds reported in the "error" field of failure responses.
const (
	KindValidation         = "ValidationError"
	KindDuplicateEmail     = "DuplicateEmailError"
	KindInvalidCredentials = "InvalidCredentialsError"
	KindAuthRequired       = "AuthenticationRequiredError"
	KindInvalidToken       = "InvalidTokenError"
	KindNotAuthorized      = "NotAuthorizedError"
	KindNotFound           = "NotFoundError"
	KindInvalidID          = "InvalidIdError"
	KindUnsupportedMedia   = "UnsupportedMediaError"
	KindStoreTimeout       = "StoreTimeoutError"
	KindRateLimited        = "RateLimitedError"
	KindMethodNotAllowed   = "MethodNotAllowedError"
	KindInternal           = "InternalError"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type apiError struct {
	status   int
	kind     string
	sentinel error
	// generic replaces the error text as the message; the text then goes
	// to details outside production.
	generic string
}

var errorTable = []apiError{
	{http.StatusBadRequest, KindValidation, common.ErrValidation, ""},
	{http.StatusBadRequest, KindDuplicateEmail, common.ErrDuplicateEmail, ""},
	{http.StatusBadRequest, KindInvalidID, common.ErrInvalidID, ""},
	{http.StatusBadRequest, KindUnsupportedMedia, common.ErrUnsupportedMedia, ""},
	{http.StatusUnauthorized, KindInvalidCredentials, common.ErrInvalidCredentials, ""},
	{http.StatusUnauthorized, KindAuthRequired, common.ErrAuthRequired, "Authentication required"},
	{http.StatusUnauthorized, KindInvalidToken, common.ErrTokenExpired, "Token expired"},
	{http.StatusUnauthorized, KindInvalidToken, common.ErrInvalidToken, "Invalid token"},
	{http.StatusUnauthorized, KindInvalidToken, common.ErrMissingSecret, "Invalid token"},
	{http.StatusUnauthorized, KindNotAuthorized, common.ErrNotAuthorized, ""},
	{http.StatusNotFound, KindNotFound, common.ErrorNotFound, ""},
	{http.StatusServiceUnavailable, KindStoreTimeout, common.ErrStoreTimeout, "The data store did not respond in time, please retry"},
}

var internalError = apiError{http.StatusInternalServerError, KindInternal, common.ErrorInternal, "Internal server error"}

func classify(err error) apiError {
	for _, e := range errorTable {
		if errors.Is(err, e.sentinel) {
			return e
		}
	}
	return internalError
}

// message strips the sentinel prefix from a wrapped error so clients see
// "title must be at least 3 characters" rather than the whole chain.
func message(err error, e apiError) string {
	if e.generic != "" {
		return e.generic
	}
	msg := err.Error()
	prefix := e.sentinel.Error() + ": "
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimPrefix(msg, prefix)
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)

	resp := errorResponse{
		Error:   e.kind,
		Message: message(err, e),
	}
	if e.generic != "" && !s.production && err.Error() != resp.Message {
		resp.Details = err.Error()
	}

	if e.status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "kind", e.kind, "error", err, "path", r.URL.Path)
	}

	writeJSON(w, e.status, resp)
}

func (s *Server) writeKind(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: msg})
}
