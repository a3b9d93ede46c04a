package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type accountResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Provider    string `json:"provider"`
}

func toAccountResponse(a *models.Account) accountResponse {
	return accountResponse{
		ID:          a.ID,
		Email:       a.Email,
		DisplayName: a.DisplayName,
		Role:        string(a.Role),
		Provider:    string(a.Provider),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var in services.RegisterInput
	if err := decodeJSON(r, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "malformed request body"})
		return
	}

	if _, err := s.users.Register(ctx, in); err != nil {
		if errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "registration failed", "error", err)
		}
		writeError(w, r, err, s.now())
		return
	}

	w.WriteHeader(http.StatusOK)
}

type reissueRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// handleReissue takes the refresh token from the cookie, or from the JSON
// body when no cookie is sent.
func (s *Server) handleReissue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	w.Header().Set("Cache-Control", "no-cache")

	token := refreshCookie(r)
	if token == "" {
		var req reissueRequest
		if err := decodeJSON(r, &req); err == nil {
			token = req.RefreshToken
		}
	}
	if token == "" {
		writeUnauthorized(w, r, s.now())
		return
	}

	pair, err := s.users.Reissue(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorInternal) {
			s.logger.Error(ctx, "reissue failed", "error", err)
		} else {
			s.logger.Info(ctx, "reissue rejected", "reason", err.Error(), "agent", r.UserAgent())
		}
		writeError(w, r, err, s.now())
		return
	}

	s.setRefreshCookie(w, pair.RefreshToken)
	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	a, ok := auth.FromContext(ctx).(auth.Authenticated)
	if !ok {
		writeUnauthorized(w, r, s.now())
		return
	}

	account, err := s.users.GetAccount(ctx, a.Principal.ID)
	if err != nil {
		writeError(w, r, err, s.now())
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleAdminAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	account, err := s.users.GetAccountByEmail(ctx, chi.URLParam(r, "email"))
	if err != nil {
		if errors.Is(err, common.ErrAccountNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "account not found"})
			return
		}
		writeError(w, r, err, s.now())
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}
