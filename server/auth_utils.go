package server

import (
	"net/http"
	"time"
)

const (
	// stateCookieName holds the anti-forgery state between login and callback
	stateCookieName = "state"
	// stateCookieMaxAge is long enough to complete the provider consent screen
	stateCookieMaxAge = 5 * time.Minute
)

// setCookie writes an http-only, secure, same-site=lax cookie. A negative
// maxAge deletes it.
func setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	seconds := int(maxAge.Seconds())
	if maxAge < 0 {
		seconds = -1
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   seconds,
	})
}

func (s *Server) SetStateCookie(w http.ResponseWriter, state string) {
	setCookie(w, stateCookieName, state, stateCookieMaxAge)
}

func (s *Server) ClearStateCookie(w http.ResponseWriter) {
	setCookie(w, stateCookieName, "", -1)
}

func (s *Server) SetSessionCookie(w http.ResponseWriter, blob string) {
	setCookie(w, s.config.Security.SessionCookieName, blob, s.config.Security.SessionMaxAge)
}

func (s *Server) ClearSessionCookie(w http.ResponseWriter) {
	setCookie(w, s.config.Security.SessionCookieName, "", -1)
}

// cookieValue returns the named cookie's value or "".
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
