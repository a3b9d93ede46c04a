package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// RequireAuthenticated answers 401 unless the pipeline attached an
// authenticated principal.
func (s *Server) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch auth.FromContext(r.Context()).(type) {
		case auth.Authenticated:
			next.ServeHTTP(w, r)
		case auth.Unauthenticated:
			writeUnauthorized(w, r, s.now())
		}
	})
}

// RequireRole answers 403 to principals without the role's authority.
func (s *Server) RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch a := auth.FromContext(r.Context()).(type) {
			case auth.Authenticated:
				if !a.HasAuthority(role.Authority()) {
					s.logger.Warn(r.Context(), "access denied", "account_id", a.Principal.ID, "path", r.URL.Path)
					writeProblem(w, r, http.StatusForbidden, s.now())
					return
				}
				next.ServeHTTP(w, r)
			case auth.Unauthenticated:
				writeUnauthorized(w, r, s.now())
			}
		})
	}
}
