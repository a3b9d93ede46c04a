package auth

import (
	"context"
	"slices"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Authentication is the per-request authentication state. It is either
// Unauthenticated or Authenticated.
type Authentication interface {
	isAuthentication()
}

// Unauthenticated carries whatever bearer credentials the request presented,
// possibly none.
type Unauthenticated struct {
	Credentials string
}

// Principal is the identity behind an authenticated request.
type Principal struct {
	ID          string
	Email       string
	DisplayName string
	Role        models.Role
}

type Authenticated struct {
	Principal   Principal
	Authorities []string
}

func (Unauthenticated) isAuthentication() {}
func (Authenticated) isAuthentication()   {}

// NewAuthenticated grants the authority derived from the principal's role.
func NewAuthenticated(p Principal) Authenticated {
	return Authenticated{Principal: p, Authorities: []string{p.Role.Authority()}}
}

func (a Authenticated) HasAuthority(authority string) bool {
	return slices.Contains(a.Authorities, authority)
}

type ctxKey struct{}

// WithAuthentication returns a child context carrying a.
func WithAuthentication(ctx context.Context, a Authentication) context.Context {
	return context.WithValue(ctx, ctxKey{}, a)
}

// FromContext returns the authentication stored in ctx, or an empty
// Unauthenticated when there is none.
func FromContext(ctx context.Context) Authentication {
	if a, ok := ctx.Value(ctxKey{}).(Authentication); ok && a != nil {
		return a
	}
	return Unauthenticated{}
}
