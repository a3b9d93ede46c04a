package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Codec signs claims into compact JWS strings and verifies them back.
type Codec struct {
	key *SigningKey
	now func() time.Time
}

type CodecOption func(*Codec)

// WithClock replaces time.Now as the source of "now" for both issuing and
// expiry checks.
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		c.now = now
	}
}

func NewCodec(key *SigningKey, opts ...CodecOption) *Codec {
	c := &Codec{key: key, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the codec's current time.
func (c *Codec) Now() time.Time {
	return c.now()
}

// Encode signs claims with the configured key.
func (c *Codec) Encode(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(c.key.method, claims)

	s, err := token.SignedString(c.key.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return s, nil
}

// Decode verifies the signature, algorithm and expiry of token and fills
// claims. A token whose exp equals the current second is already expired.
// Every failure wraps common.ErrInvalidToken.
func (c *Codec) Decode(token string, claims jwt.Claims) error {
	if token == "" {
		return fmt.Errorf("%w: empty token", common.ErrInvalidToken)
	}

	parsed, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) {
			return c.key.key, nil
		},
		jwt.WithValidMethods([]string{c.key.Algorithm()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return common.ErrInvalidToken
	}

	return nil
}

// DecodeAccess decodes an access token. Tokens without an email claim, such
// as refresh tokens, are rejected.
func (c *Codec) DecodeAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := c.Decode(token, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.Email == "" {
		return nil, fmt.Errorf("%w: not an access token", common.ErrInvalidToken)
	}
	return claims, nil
}

// DecodeRefresh decodes a refresh token. Tokens without a jti are rejected.
func (c *Codec) DecodeRefresh(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := c.Decode(token, claims); err != nil {
		return nil, err
	}
	if claims.Subject == "" || claims.ID == "" {
		return nil, fmt.Errorf("%w: not a refresh token", common.ErrInvalidToken)
	}
	return claims, nil
}
