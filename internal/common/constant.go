package common

const (
	// RefreshTokenCookieName is the cookie carrying the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// AuthorizationHeaderName and BearerPrefix describe how access tokens
	// travel on inbound requests.
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "

	// RefreshTokenMultiplier is the refresh lifetime expressed in access lifetimes.
	RefreshTokenMultiplier = 7
)
