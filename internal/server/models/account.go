// Package models defines server-side data models persisted in the database.
package models

import "time"

// Role is the coarse authorization level of an account.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Authority returns the granted-authority string derived from the role,
// e.g. "ROLE_ADMIN".
func (r Role) Authority() string {
	return "ROLE_" + string(r)
}

// Provider records where an account's identity comes from. Only LOCAL
// accounts are created here; the others exist for federated sign-in records.
type Provider string

const (
	ProviderLocal  Provider = "LOCAL"
	ProviderGoogle Provider = "GOOGLE"
	ProviderKakao  Provider = "KAKAO"
	ProviderApple  Provider = "APPLE"
)

// Account is a registered identity.
//
// RefreshToken holds the single most recently issued refresh token, or is
// empty before the first login.
type Account struct {
	ID             string
	Email          string
	DisplayName    string
	SecretHash     string
	Role           Role
	Provider       Provider
	ProviderUserID string
	RefreshToken   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
