package session

import "time"

// Session is the authenticated user's state. It lives only inside the signed
// cookie held by the client; the server keeps no copy.
type Session struct {
	UserID       string
	AccessToken  string
	RefreshToken string
	// ExpiresAt is when AccessToken stops being valid.
	ExpiresAt time.Time
}

// Expired reports whether the access token is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
