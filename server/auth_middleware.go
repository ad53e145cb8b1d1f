package server

import (
	"context"
	"net/http"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/rs/zerolog"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyAccessToken stores a provider access token valid for this request
	ContextKeyAccessToken ContextKey = "access_token"
	// ContextKeyInput stores the validated request input
	ContextKeyInput ContextKey = "input"
)

// RequireSession decodes the session cookie and makes sure its access token
// is usable, refreshing it and re-setting the cookie when it has expired.
// A missing or invalid cookie is answered with 401 before any upstream call.
func (s *Server) RequireSession() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sess, err := s.auth.Session(cookieValue(r, s.config.Security.SessionCookieName))
			if err != nil {
				writeError(w, r, err)
				return
			}

			accessToken, refreshed, err := s.auth.GetValidToken(r.Context(), sess)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrInvalidRefreshToken) {
					// The session can never be refreshed again.
					s.ClearSessionCookie(w)
				}
				writeError(w, r, err)
				return
			}
			if refreshed != "" {
				s.SetSessionCookie(w, refreshed)
			}

			logger := zerolog.Ctx(r.Context()).With().Str("user_id", sess.UserID).Logger()
			ctx := logger.WithContext(r.Context())
			ctx = context.WithValue(ctx, ContextKeyAccessToken, accessToken)
			next(w, r.WithContext(ctx))
		}
	}
}

func accessTokenFrom(r *http.Request) string {
	token, _ := r.Context().Value(ContextKeyAccessToken).(string)
	return token
}
