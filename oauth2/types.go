package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// AuthorizationCodeGrant exchanges the code returned to the redirect URI for tokens.
	// Example: grant_type=authorization_code&code=ABC123&redirect_uri=...
	AuthorizationCodeGrant GrantType = "authorization_code"

	// RefreshTokenGrant trades a refresh token for a new access token.
	// Example: grant_type=refresh_token&refresh_token=AQB...
	RefreshTokenGrant GrantType = "refresh_token"

	// ClientCredentialsGrant obtains an application token with no user context.
	// Used for: catalogue lookups such as playlist search
	ClientCredentialsGrant GrantType = "client_credentials"
)
