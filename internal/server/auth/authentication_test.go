package auth

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromContext_DefaultsToUnauthenticated(t *testing.T) {
	a := FromContext(context.Background())
	assert.Equal(t, Unauthenticated{}, a)
}

func TestWithAuthentication_RoundTrip(t *testing.T) {
	p := Principal{ID: "id-1", Email: "admin@example.com", DisplayName: "admin", Role: models.RoleAdmin}
	ctx := WithAuthentication(context.Background(), NewAuthenticated(p))

	switch a := FromContext(ctx).(type) {
	case Authenticated:
		assert.Equal(t, p, a.Principal)
		assert.Equal(t, []string{"ROLE_ADMIN"}, a.Authorities)
		assert.True(t, a.HasAuthority("ROLE_ADMIN"))
		assert.False(t, a.HasAuthority("ROLE_USER"))
	case Unauthenticated:
		require.Fail(t, "expected authenticated state")
	}
}

func TestWithAuthentication_Unauthenticated(t *testing.T) {
	ctx := WithAuthentication(context.Background(), Unauthenticated{Credentials: "garbage"})

	a, ok := FromContext(ctx).(Unauthenticated)
	require.True(t, ok)
	assert.Equal(t, "garbage", a.Credentials)
}
