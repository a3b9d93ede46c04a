package auth

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer mints access and refresh tokens for accounts.
type Issuer struct {
	codec     *Codec
	accessTTL time.Duration
}

// NewIssuer returns an Issuer whose refresh tokens live
// common.RefreshTokenMultiplier times as long as access tokens.
func NewIssuer(codec *Codec, accessTTL time.Duration) *Issuer {
	return &Issuer{codec: codec, accessTTL: accessTTL}
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.accessTTL * common.RefreshTokenMultiplier
}

func (i *Issuer) IssueAccessToken(account *models.Account) (string, error) {
	if account == nil || account.ID == "" {
		return "", common.ErrNoAccountID
	}

	now := i.codec.Now()
	return i.codec.Encode(AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.AccessTTL())),
		},
		Role:     string(account.Role),
		Email:    account.Email,
		Nickname: account.DisplayName,
	})
}

// IssueRefreshToken mints a refresh token with a random jti, so two tokens
// issued within the same second still differ.
func (i *Issuer) IssueRefreshToken(account *models.Account) (string, error) {
	if account == nil || account.ID == "" {
		return "", common.ErrNoAccountID
	}

	jti, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}

	now := i.codec.Now()
	return i.codec.Encode(RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.RefreshTTL())),
		},
	})
}

func (i *Issuer) IssuePair(account *models.Account) (*TokenPair, error) {
	access, err := i.IssueAccessToken(account)
	if err != nil {
		return nil, err
	}
	refresh, err := i.IssueRefreshToken(account)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
