package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestIssuer(t *testing.T, secret string, ttl time.Duration) (*Issuer, *Codec, *testClock) {
	t.Helper()
	key, err := NewSigningKey(secret)
	require.NoError(t, err)

	clock := &testClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	codec := NewCodec(key, WithClock(clock.Now))
	return NewIssuer(codec, ttl), codec, clock
}

func testAccount() *models.Account {
	return &models.Account{
		ID:          "6f1c1c0e-4a4b-4a55-9a47-3c2f7a4a0b11",
		Email:       "test@example.com",
		DisplayName: "tester",
		Role:        models.RoleUser,
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	issuer, codec, clock := newTestIssuer(t, testSecret, time.Hour)

	tok, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)
	assert.Len(t, strings.Split(tok, "."), 3)

	claims, err := codec.DecodeAccess(tok)
	require.NoError(t, err)

	assert.Equal(t, "6f1c1c0e-4a4b-4a55-9a47-3c2f7a4a0b11", claims.Subject)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "tester", claims.Nickname)
	assert.Equal(t, "USER", claims.Role)
	assert.True(t, clock.now.Equal(claims.IssuedAt.Time))
	assert.True(t, clock.now.Add(time.Hour).Equal(claims.ExpiresAt.Time))
}

func TestRefreshToken_RoundTrip(t *testing.T) {
	issuer, codec, clock := newTestIssuer(t, testSecret, time.Hour)

	tok, err := issuer.IssueRefreshToken(testAccount())
	require.NoError(t, err)

	claims, err := codec.DecodeRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, testAccount().ID, claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, clock.now.Add(7*time.Hour).Equal(claims.ExpiresAt.Time))
	assert.Equal(t, 7*time.Hour, issuer.RefreshTTL())
	assert.Equal(t, time.Hour, issuer.AccessTTL())
}

func TestRefreshTokens_AreUniqueWithinSameSecond(t *testing.T) {
	issuer, _, _ := newTestIssuer(t, testSecret, time.Hour)

	a, err := issuer.IssueRefreshToken(testAccount())
	require.NoError(t, err)
	b, err := issuer.IssueRefreshToken(testAccount())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDecode_ExpiryBoundary(t *testing.T) {
	issuer, codec, clock := newTestIssuer(t, testSecret, time.Hour)
	issuedAt := clock.now

	tok, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	clock.now = issuedAt.Add(time.Hour - time.Second)
	_, err = codec.DecodeAccess(tok)
	require.NoError(t, err, "token must be valid one second before exp")

	clock.now = issuedAt.Add(time.Hour)
	_, err = codec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken, "token must be expired at exp")

	clock.now = issuedAt.Add(2 * time.Hour)
	_, err = codec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_Tampered(t *testing.T) {
	issuer, codec, _ := newTestIssuer(t, testSecret, time.Hour)

	tok, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	payload := []byte(parts[1])
	mid := len(payload) / 2
	if payload[mid] == 'A' {
		payload[mid] = 'B'
	} else {
		payload[mid] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = codec.DecodeAccess(tampered)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_WrongKey(t *testing.T) {
	issuer, _, _ := newTestIssuer(t, testSecret, time.Hour)
	_, otherCodec, _ := newTestIssuer(t, "fedcba9876543210fedcba9876543210", time.Hour)

	tok, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	_, err = otherCodec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_UnexpectedAlgorithm(t *testing.T) {
	_, codec, clock := newTestIssuer(t, testSecret, time.Hour)

	// same secret, different HMAC variant
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "id",
			IssuedAt:  jwt.NewNumericDate(clock.now),
			ExpiresAt: jwt.NewNumericDate(clock.now.Add(time.Hour)),
		},
		Email: "test@example.com",
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = codec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_RequiresExpiry(t *testing.T) {
	_, codec, _ := newTestIssuer(t, testSecret, time.Hour)

	tok, err := codec.Encode(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "id"},
		Email:            "test@example.com",
	})
	require.NoError(t, err)

	_, err = codec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_IssuedInFuture(t *testing.T) {
	issuer, codec, clock := newTestIssuer(t, testSecret, time.Hour)

	tok, err := issuer.IssueAccessToken(testAccount())
	require.NoError(t, err)

	clock.now = clock.now.Add(-time.Minute)
	_, err = codec.DecodeAccess(tok)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestDecode_Malformed(t *testing.T) {
	_, codec, _ := newTestIssuer(t, testSecret, time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "abc", "a.b.c.d"} {
		_, err := codec.DecodeAccess(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", tok)
	}
}

func TestDecode_TokenKindsDoNotMix(t *testing.T) {
	issuer, codec, _ := newTestIssuer(t, testSecret, time.Hour)

	pair, err := issuer.IssuePair(testAccount())
	require.NoError(t, err)

	_, err = codec.DecodeAccess(pair.RefreshToken)
	require.ErrorIs(t, err, common.ErrInvalidToken, "refresh token must not pass as access token")

	_, err = codec.DecodeRefresh(pair.AccessToken)
	require.ErrorIs(t, err, common.ErrInvalidToken, "access token must not pass as refresh token")
}

func TestIssuer_RequiresAccountID(t *testing.T) {
	issuer, _, _ := newTestIssuer(t, testSecret, time.Hour)

	_, err := issuer.IssueAccessToken(nil)
	require.ErrorIs(t, err, common.ErrNoAccountID)

	_, err = issuer.IssueRefreshToken(&models.Account{Email: "x@y.z"})
	require.ErrorIs(t, err, common.ErrNoAccountID)

	_, err = issuer.IssuePair(&models.Account{})
	require.ErrorIs(t, err, common.ErrNoAccountID)
}
