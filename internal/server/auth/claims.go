package auth

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are carried by access tokens: sub, iat, exp plus the profile
// fields needed to authorize a request without a lookup.
type AccessClaims struct {
	jwt.RegisteredClaims
	Role     string `json:"role,omitempty"`
	Email    string `json:"email,omitempty"`
	Nickname string `json:"nickname,omitempty"`
}

// RefreshClaims are carried by refresh tokens: sub, jti, iat, exp only.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or rotation hands back.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
