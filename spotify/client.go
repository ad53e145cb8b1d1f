// Package spotify is a small client for the parts of the Spotify Web API the
// service proxies: the current user's profile, saved tracks and playlist search.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/moodtunes/mood-music-api/internal/config"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/internal/retry"
	"github.com/moodtunes/mood-music-api/oauth2"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// APIError is a non-2xx answer from the Web API.
type APIError struct {
	StatusCode int
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("spotify api %s returned %d", e.Path, e.StatusCode)
}

// Unwrap lets callers classify the failure with the service error taxonomy.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized {
		return apperrors.ErrUpstreamUnauthorized
	}
	return apperrors.ErrUpstream
}

// errMalformedBody marks a 2xx answer that could not be decoded. Asking
// again would get the same body, so it is not retried.
var errMalformedBody = errors.New("malformed response body")

// Client calls the Web API. User calls carry the caller's bearer token;
// search uses an application token from the client credentials grant.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retries    int
	backoff    time.Duration

	appCredentials *clientcredentials.Config
	appMu          sync.Mutex
	appToken       *xoauth2.Token
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.Spotify.APIURL, "/"),
		httpClient: &http.Client{Timeout: cfg.HTTP.Timeout},
		retries:    cfg.HTTP.Retries,
		backoff:    cfg.HTTP.BackoffFactor,
		appCredentials: &clientcredentials.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			TokenURL:     cfg.Spotify.TokenURL,
			AuthStyle:    xoauth2.AuthStyleInParams,
		},
	}
}

// CurrentUser fetches the profile that owns accessToken.
func (c *Client) CurrentUser(ctx context.Context, accessToken string) (*User, error) {
	var u User
	if err := c.get(ctx, accessToken, "/me", nil, &u); err != nil {
		return nil, fmt.Errorf("[spotify CurrentUser] %w", err)
	}
	if u.ID == "" {
		return nil, fmt.Errorf("[spotify CurrentUser] %w: profile has no id", apperrors.ErrUpstream)
	}
	return &u, nil
}

// SavedTracks returns one page of the user's library, reduced to the track
// objects.
func (c *Client) SavedTracks(ctx context.Context, accessToken string, limit, offset int) ([]Track, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))

	var page savedTracksPage
	if err := c.get(ctx, accessToken, "/me/tracks", q, &page); err != nil {
		return nil, fmt.Errorf("[spotify SavedTracks] %w", err)
	}

	tracks := make([]Track, 0, len(page.Items))
	for _, item := range page.Items {
		if item.Track == nil {
			continue
		}
		tracks = append(tracks, *item.Track)
	}
	return tracks, nil
}

// FindPlaylist returns the best playlist match for query, or nil when the
// search has no result.
func (c *Client) FindPlaylist(ctx context.Context, query string) (*Playlist, error) {
	appToken, err := c.applicationToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("[spotify FindPlaylist] %w", err)
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("type", "playlist")
	q.Set("limit", "5")

	var res searchResult
	if err := c.get(ctx, appToken, "/search", q, &res); err != nil {
		return nil, fmt.Errorf("[spotify FindPlaylist] %w", err)
	}
	// Search results may contain null entries for removed playlists.
	for _, p := range res.Playlists.Items {
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

func (c *Client) get(ctx context.Context, bearer, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	return c.retryPolicy(path, retryable).Do(ctx, func(ctx context.Context, attempt int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
		}
		req.Header.Set("Authorization", "Bearer "+bearer)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, resp.Body)
			log.Error().Str("path", path).Int("status_code", resp.StatusCode).Int("attempt", attempt).Msg("Spotify API error")
			return &APIError{StatusCode: resp.StatusCode, Path: path}
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: %w: decoding %s: %v", apperrors.ErrUpstream, errMalformedBody, path, err)
		}
		return nil
	})
}

// applicationToken returns the cached client credentials token, fetching a
// new one under ctx once it has expired. Concurrent callers wait for a single
// fetch.
func (c *Client) applicationToken(ctx context.Context) (string, error) {
	c.appMu.Lock()
	defer c.appMu.Unlock()
	if c.appToken.Valid() {
		return c.appToken.AccessToken, nil
	}

	grant := string(oauth2.ClientCredentialsGrant)
	ctx = context.WithValue(ctx, xoauth2.HTTPClient, c.httpClient)
	err := c.retryPolicy("token", retryable).Do(ctx, func(ctx context.Context, attempt int) error {
		tok, err := c.appCredentials.Token(ctx)
		if err != nil {
			var re *xoauth2.RetrieveError
			if apperrors.As(err, &re) && re.Response != nil {
				// The error text carries the response body; only the status is kept.
				log.Error().Str("grant", grant).Int("status_code", re.Response.StatusCode).Int("attempt", attempt).Msg("Application token request rejected")
				return &APIError{StatusCode: re.Response.StatusCode, Path: "token"}
			}
			log.Error().Err(err).Str("grant", grant).Int("attempt", attempt).Msg("Network error during application token request")
			return err
		}
		c.appToken = tok
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: application token: %v", apperrors.ErrUpstream, err)
	}
	return c.appToken.AccessToken, nil
}

func (c *Client) retryPolicy(path string, retryable func(error) bool) retry.Policy {
	return retry.Policy{
		MaxAttempts: c.retries,
		BaseDelay:   c.backoff,
		Retryable:   retryable,
		OnRetry: func(err error, delay time.Duration) {
			log.Warn().Err(err).Str("path", path).Dur("delay", delay).Msg("Spotify request failed, retrying")
		},
	}
}

// retryable retries transport failures, throttling and server errors.
func retryable(err error) bool {
	if errors.Is(err, errMalformedBody) {
		return false
	}
	var apiErr *APIError
	if apperrors.As(err, &apiErr) {
		return retryableStatus(apiErr.StatusCode)
	}
	return true
}

func retryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}
