package rest

import (
	"net/http"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// setRefreshCookie writes the refresh token cookie:
//
//	refreshToken=<v>; Path=/; Max-Age=<refresh ttl>; HttpOnly; Secure; SameSite=None
func (s *Server) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     common.RefreshTokenCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.opts.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	})
}

func refreshCookie(r *http.Request) string {
	c, err := r.Cookie(common.RefreshTokenCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
