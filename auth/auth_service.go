package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/internal/metrics"
	"github.com/moodtunes/mood-music-api/oauth2"
	"github.com/moodtunes/mood-music-api/session"
	"github.com/moodtunes/mood-music-api/spotify"
	"github.com/rs/zerolog/log"
)

// TokenClient talks to the provider's authorization and token endpoints.
type TokenClient interface {
	AuthorizationURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)
}

// ProfileFetcher resolves an access token to the user that owns it.
type ProfileFetcher interface {
	CurrentUser(ctx context.Context, accessToken string) (*spotify.User, error)
}

// Service ties the token client and the session codec together: it completes
// logins and keeps the access token inside a session fresh.
type Service struct {
	tokens   TokenClient
	profiles ProfileFetcher
	codec    *session.Codec
	metrics  *metrics.Metrics
	nowTime  func() time.Time // nowTime function (injectable for testing)
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// WithMetrics records refresh outcomes.
func WithMetrics(m *metrics.Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

// NewService initializes a Service with its required dependencies.
func NewService(tokens TokenClient, profiles ProfileFetcher, codec *session.Codec, options ...ServiceOption) (*Service, error) {
	if tokens == nil {
		return nil, errors.New("[NewService] token client is required")
	}
	if profiles == nil {
		return nil, errors.New("[NewService] profile fetcher is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] session codec is required")
	}

	s := &Service{
		tokens:   tokens,
		profiles: profiles,
		codec:    codec,
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// AuthorizationURL is the provider consent URL carrying state.
func (s *Service) AuthorizationURL(state string) string {
	return s.tokens.AuthorizationURL(state)
}

// CompleteLogin exchanges the authorization code, identifies the user and
// issues a session blob. Nothing is issued unless every step succeeds.
func (s *Service) CompleteLogin(ctx context.Context, code string) (string, *spotify.User, error) {
	tok, err := s.tokens.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, err
	}

	user, err := s.profiles.CurrentUser(ctx, tok.AccessToken)
	if err != nil {
		log.Error().Err(err).Msg("Fetching user profile failed")
		return "", nil, fmt.Errorf("[CompleteLogin] %w: fetching user profile", apperrors.ErrUpstream)
	}

	blob, err := s.codec.Create(user.ID, tok.AccessToken, tok.RefreshToken)
	if err != nil {
		return "", nil, apperrors.Wrapf(err, "[CompleteLogin] issuing session for %s", user.ID)
	}
	log.Info().Str("user_id", user.ID).Msg("User logged in")
	return blob, user, nil
}

// Session decodes a cookie value. A missing or invalid blob is
// ErrUnauthenticated.
func (s *Service) Session(blob string) (session.Session, error) {
	if blob == "" {
		return session.Session{}, apperrors.ErrUnauthenticated
	}
	sess, ok := s.codec.Get(blob)
	if !ok {
		return session.Session{}, apperrors.ErrUnauthenticated
	}
	return sess, nil
}

// GetValidToken returns an access token that is valid now. While the session's
// token is unexpired it is returned as-is with an empty cookie. Otherwise the
// token is refreshed and a re-signed session blob is returned for the caller
// to write back; the refresh token is carried over unchanged.
func (s *Service) GetValidToken(ctx context.Context, sess session.Session) (string, string, error) {
	now := s.nowTime()
	if !sess.Expired(now) {
		return sess.AccessToken, "", nil
	}

	logger := log.With().Str("user_id", sess.UserID).Logger()
	if sess.RefreshToken == "" {
		logger.Info().Msg("Session expired without refresh token")
		s.metrics.SessionRefresh("no_refresh_token")
		return "", "", apperrors.ErrInvalidRefreshToken
	}

	logger.Debug().Time("expired_at", sess.ExpiresAt).Msg("Access token expired, refreshing")
	tok, err := s.tokens.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		logger.Warn().Err(err).Msg("Session refresh failed")
		s.metrics.SessionRefresh("failed")
		return "", "", err
	}

	sess.AccessToken = tok.AccessToken
	sess.ExpiresAt = tok.ExpiresAt(s.nowTime())

	blob, err := s.codec.Encode(sess)
	if err != nil {
		s.metrics.SessionRefresh("failed")
		return "", "", apperrors.Wrapf(err, "[GetValidToken] re-signing session")
	}
	s.metrics.SessionRefresh("success")
	return sess.AccessToken, blob, nil
}
