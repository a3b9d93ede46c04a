package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
)

const (
	msgAuthenticationFailed = "Authentication failed"
	msgTooManyAttempts      = "Too many login attempts"
	msgInternal             = "internal error"
)

type messageResponse struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// problemResponse is the body of 401 and 403 answers for token-protected
// resources. Field order is part of the contract.
type problemResponse struct {
	Status    int    `json:"status"`
	Error     string `json:"error"`
	Path      string `json:"path"`
	Timestamp string `json:"timestamp"`
}

// writeError maps service errors to HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error, now time.Time) {
	var (
		verr *services.ValidationError
		derr *services.DuplicateError
	)

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: verr.Message})
	case errors.As(err, &derr):
		writeJSON(w, http.StatusConflict, messageResponse{Message: derr.Error(), Field: derr.Field})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, messageResponse{Message: msgAuthenticationFailed})
	case errors.Is(err, common.ErrRateLimited):
		writeJSON(w, http.StatusTooManyRequests, messageResponse{Message: msgTooManyAttempts})
	case errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenMismatch),
		errors.Is(err, common.ErrAccountNotFound):
		writeUnauthorized(w, r, now)
	default:
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: msgInternal})
	}
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request, now time.Time) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="api", error="invalid_token"`)
	writeProblem(w, r, http.StatusUnauthorized, now)
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, now time.Time) {
	writeJSON(w, status, problemResponse{
		Status:    status,
		Error:     http.StatusText(status),
		Path:      r.URL.Path,
		Timestamp: now.UTC().Format(time.RFC3339),
	})
}
