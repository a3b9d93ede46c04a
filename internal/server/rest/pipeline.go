package rest

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
)

// Stage is one step of the authentication pipeline. Handle runs only for
// requests Matches accepts; it either answers the request itself or calls
// next, possibly with an enriched request.
type Stage struct {
	Name    string
	Matches func(r *http.Request) bool
	Handle  func(w http.ResponseWriter, r *http.Request, next http.Handler)
}

// Pipeline runs its stages in order.
type Pipeline []Stage

// Middleware adapts the pipeline to the func(http.Handler) http.Handler shape.
func (p Pipeline) Middleware(final http.Handler) http.Handler {
	h := final
	for i := len(p) - 1; i >= 0; i-- {
		stage, next := p[i], h
		h = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !stage.Matches(r) {
				next.ServeHTTP(w, r)
				return
			}
			stage.Handle(w, r, next)
		})
	}
	return h
}

// Pipeline returns the server's stages: credential login first, then bearer
// token resolution.
func (s *Server) Pipeline() Pipeline {
	return Pipeline{s.loginStage(), s.bearerStage()}
}

type loginRequest struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
}

type tokenResponse struct {
	AccessToken string `json:"accessToken"`
}

func (s *Server) loginStage() Stage {
	return Stage{
		Name: "login",
		Matches: func(r *http.Request) bool {
			return r.Method == http.MethodPost && r.URL.Path == LoginPath
		},
		Handle: func(w http.ResponseWriter, r *http.Request, _ http.Handler) {
			ctx := r.Context()

			var req loginRequest
			if err := decodeJSON(r, &req); err != nil {
				s.logger.Warn(ctx, "Authentication failed",
					"user", logging.MaskEmail(""), "agent", r.UserAgent(), "reason", "unreadable request body")
				writeError(w, r, common.ErrInvalidCredentials, s.now())
				return
			}

			pair, err := s.users.Login(ctx, req.Email, req.Secret)
			if err != nil {
				if errors.Is(err, common.ErrorInternal) {
					s.logger.Error(ctx, "login failed", "user", logging.MaskEmail(req.Email), "error", err)
				} else {
					s.logger.Warn(ctx, "Authentication failed",
						"user", logging.MaskEmail(req.Email), "agent", r.UserAgent(), "reason", err.Error())
				}
				writeError(w, r, err, s.now())
				return
			}

			s.setRefreshCookie(w, pair.RefreshToken)
			writeJSON(w, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken})
		},
	}
}

// bearerStage never rejects a request. It attaches Authenticated when the
// Authorization header carries a valid access token for an existing account
// and Unauthenticated otherwise; the route decides whether that is enough.
func (s *Server) bearerStage() Stage {
	return Stage{
		Name:    "bearer",
		Matches: func(*http.Request) bool { return true },
		Handle: func(w http.ResponseWriter, r *http.Request, next http.Handler) {
			ctx := r.Context()

			token, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(auth.WithAuthentication(ctx, auth.Unauthenticated{})))
				return
			}

			authenticated, err := s.users.Authenticate(ctx, token)
			if err != nil {
				s.logger.Debug(ctx, "bearer token rejected", "path", r.URL.Path, "error", err)
				next.ServeHTTP(w, r.WithContext(auth.WithAuthentication(ctx, auth.Unauthenticated{Credentials: token})))
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithAuthentication(ctx, authenticated)))
		},
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(common.AuthorizationHeaderName)
	if len(h) <= len(common.BearerPrefix) || !strings.EqualFold(h[:len(common.BearerPrefix)], common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(h[len(common.BearerPrefix):])
	return token, token != ""
}
