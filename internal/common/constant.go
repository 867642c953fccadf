package common

const (
	// TokenCookieName is the cookie carrying the bearer token for browser clients.
	TokenCookieName = "token"

	// AuthorizationHeaderName and BearerPrefix describe the header form of the token.
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
)
