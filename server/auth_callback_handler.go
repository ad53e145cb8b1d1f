package server

import (
	"fmt"
	"net/http"

	"github.com/moodtunes/mood-music-api/auth"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/rs/zerolog"
)

// SpotifyLoginHandler starts the authorization code flow: a fresh state goes
// into a short-lived cookie and the browser is sent to the consent screen.
func (s *Server) SpotifyLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := auth.NewState()
		if err != nil {
			writeError(w, r, err)
			return
		}
		s.SetStateCookie(w, state)
		http.Redirect(w, r, s.auth.AuthorizationURL(state), http.StatusFound)
	}
}

// OAuthCallbackHandler completes the login. The session cookie is only set
// once the code exchange and the profile lookup have both succeeded.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		storedState := cookieValue(r, stateCookieName)
		// The state is single use whatever the outcome.
		s.ClearStateCookie(w)

		if err := auth.VerifyState(storedState, q.Get("state")); err != nil {
			zerolog.Ctx(r.Context()).Warn().Bool("cookie_present", storedState != "").Msg("State verification failed")
			writeError(w, r, err)
			return
		}

		// Only a callback carrying our state may report a provider error
		if errorParam := q.Get("error"); errorParam != "" {
			writeError(w, r, fmt.Errorf("%w: %s", apperrors.ErrAuthorizationDenied, errorParam))
			return
		}

		code := q.Get("code")
		if code == "" {
			writeError(w, r, fmt.Errorf("%w: code is required", apperrors.ErrInvalidRequest))
			return
		}

		blob, user, err := s.auth.CompleteLogin(r.Context(), code)
		if err != nil {
			writeError(w, r, err)
			return
		}

		zerolog.Ctx(r.Context()).Info().Str("user_id", user.ID).Msg("Session issued")
		s.SetSessionCookie(w, blob)
		http.Redirect(w, r, s.config.Security.PostLoginRedirect, http.StatusFound)
	}
}

// LogoutHandler drops the session cookie. There is no server side state.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.ClearSessionCookie(w)
		w.WriteHeader(http.StatusNoContent)
	}
}
