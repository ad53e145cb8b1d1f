package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/moodtunes/mood-music-api/internal/config"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/internal/metrics"
	"github.com/moodtunes/mood-music-api/internal/retry"
	"github.com/moodtunes/mood-music-api/oauth2"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// Client performs the authorization code and refresh token grants against the
// provider's token endpoint.
type Client struct {
	oauth      *xoauth2.Config
	httpClient *http.Client
	retries    int
	backoff    time.Duration
	metrics    *metrics.Metrics
}

// NewClient builds a token client from the provider settings. Every outbound
// call is bounded by the configured HTTP timeout.
func NewClient(cfg *config.Config, m *metrics.Metrics) *Client {
	return &Client{
		oauth: &xoauth2.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURL:  cfg.Spotify.RedirectURI,
			Scopes:       cfg.Spotify.ScopeList(),
			Endpoint: xoauth2.Endpoint{
				AuthURL:  cfg.Spotify.AuthURL,
				TokenURL: cfg.Spotify.TokenURL,
				// One POST per attempt; auto-detection would retry with a second style.
				AuthStyle: xoauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		retries:    cfg.HTTP.Retries,
		backoff:    cfg.HTTP.BackoffFactor,
		metrics:    m,
	}
}

// AuthorizationURL builds the provider's consent URL. The state parameter is
// omitted when state is empty. No network call is made.
func (c *Client) AuthorizationURL(state string) string {
	return c.oauth.AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for tokens. A 400 from the
// provider is final and maps to ErrInvalidAuthorizationCode; other failures
// are retried and end in ErrTokenExchangeFailed.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*oauth2.TokenResponse, error) {
	log.Info().Msg("Exchanging code for token")
	tok, err := c.run(ctx, oauth2.AuthorizationCodeGrant, apperrors.ErrInvalidAuthorizationCode, apperrors.ErrTokenExchangeFailed,
		func(ctx context.Context) (*xoauth2.Token, error) {
			return c.oauth.Exchange(ctx, code)
		})
	if err != nil {
		return nil, err
	}
	log.Info().Msg("Token exchange successful")
	return tok, nil
}

// Refresh obtains a new access token. A 400 maps to ErrInvalidRefreshToken;
// exhausted retries end in ErrTokenRefreshFailed. When the provider omits a
// refresh token in its answer the one passed in is returned.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	log.Info().Msg("Refreshing access token")
	tok, err := c.run(ctx, oauth2.RefreshTokenGrant, apperrors.ErrInvalidRefreshToken, apperrors.ErrTokenRefreshFailed,
		func(ctx context.Context) (*xoauth2.Token, error) {
			return c.oauth.TokenSource(ctx, &xoauth2.Token{RefreshToken: refreshToken}).Token()
		})
	if err != nil {
		return nil, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken
	}
	log.Info().Msg("Token refresh successful")
	return tok, nil
}

// run drives one grant through the retry policy. rejected is returned as soon
// as the provider answers 400; exhausted wraps the last transient failure.
func (c *Client) run(ctx context.Context, grant oauth2.GrantType, rejected, exhausted error,
	fetch func(ctx context.Context) (*xoauth2.Token, error)) (*oauth2.TokenResponse, error) {

	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)

	var result *xoauth2.Token
	policy := retry.Policy{
		MaxAttempts: c.retries,
		BaseDelay:   c.backoff,
		Retryable: func(err error) bool {
			return !errors.Is(err, rejected)
		},
		OnRetry: func(_ error, delay time.Duration) {
			log.Warn().Str("grant", string(grant)).Dur("delay", delay).Msg("Token request failed, retrying")
		},
	}

	err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
		logger := log.With().Str("grant", string(grant)).Int("attempt", attempt).Logger()
		logger.Debug().Msg("Token request attempt")

		tok, err := fetch(ctx)
		if err == nil {
			c.metrics.TokenAttempt(string(grant), "success")
			result = tok
			return nil
		}

		var re *xoauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			// Only the status and the OAuth error code are logged; the body may echo credentials.
			logger.Error().Int("status_code", re.Response.StatusCode).Str("error_code", re.ErrorCode).Msg("Token request rejected")
			if re.Response.StatusCode == http.StatusBadRequest {
				c.metrics.TokenAttempt(string(grant), "rejected")
				return rejected
			}
			c.metrics.TokenAttempt(string(grant), "http_error")
			return fmt.Errorf("token endpoint returned %d", re.Response.StatusCode)
		}

		logger.Error().Err(err).Msg("Network error during token request")
		c.metrics.TokenAttempt(string(grant), "network_error")
		return err
	})
	if err != nil {
		if errors.Is(err, rejected) {
			return nil, rejected
		}
		return nil, fmt.Errorf("%w: %v", exhausted, err)
	}

	return toResponse(result), nil
}

func toResponse(t *xoauth2.Token) *oauth2.TokenResponse {
	r := &oauth2.TokenResponse{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
	}
	if v, ok := t.Extra("expires_in").(float64); ok {
		r.ExpiresIn = int(v)
	} else if !t.Expiry.IsZero() {
		r.ExpiresIn = int(time.Until(t.Expiry).Round(time.Second).Seconds())
	}
	if scope, ok := t.Extra("scope").(string); ok {
		r.Scope = scope
	}
	return r
}
