package oauth2

import "time"

// TokenResponse represents the response from the provider's token endpoint.
// This is the standard OAuth2 token endpoint response format as defined in RFC 6749.
// It is transient: the handler folds it into a session and discards it.
type TokenResponse struct {
	// AccessToken is the opaque bearer credential used against the provider API.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	// Lifespan: Short-lived (typically 1 hour)
	AccessToken string `json:"access_token"`

	// TokenType indicates how to use the access token.
	// Example: "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token, counted from issuance.
	// Example: 3600
	ExpiresIn int `json:"expires_in"`

	// RefreshToken is an opaque long-lived token used to obtain new access tokens.
	// Usage: Send to the token endpoint with grant_type=refresh_token
	// Note: The provider does not rotate it; a refresh response may omit it.
	RefreshToken string `json:"refresh_token"`

	// Scope indicates the access token's granted permissions.
	// Example: "user-library-read"
	// Usage: Space-separated list of scopes
	Scope string `json:"scope"`
}

// ExpiresAt returns the absolute expiry of the access token when issued at now.
func (t TokenResponse) ExpiresAt(now time.Time) time.Time {
	return now.Add(time.Duration(t.ExpiresIn) * time.Second)
}
