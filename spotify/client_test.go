package spotify_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/moodtunes/mood-music-api/internal/config"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/spotify"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.Handler) *spotify.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return spotify.NewClient(&config.Config{
		Spotify: config.Spotify{
			ClientID:     "client",
			ClientSecret: "secret",
			TokenURL:     srv.URL + "/api/token",
			APIURL:       srv.URL + "/v1",
		},
		HTTP: config.HTTP{Timeout: 2 * time.Second, Retries: 3, BackoffFactor: time.Millisecond},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_CurrentUser(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer user-token", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, map[string]string{"id": "u1", "display_name": "Ada", "email": "ada@example.com"})
	})

	u, err := newClient(t, mux).CurrentUser(context.Background(), "user-token")
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.Equal(t, "Ada", u.DisplayName)
	require.Equal(t, "ada@example.com", u.Email)
}

func TestClient_CurrentUser_Unauthorized(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"error": map[string]any{"status": 401}})
	})

	_, err := newClient(t, mux).CurrentUser(context.Background(), "stale")
	require.ErrorIs(t, err, apperrors.ErrUpstreamUnauthorized)
	require.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_SavedTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "20", r.URL.Query().Get("limit"))
		require.Equal(t, "0", r.URL.Query().Get("offset"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []any{
				map[string]any{"added_at": "2024-01-01T00:00:00Z", "track": map[string]any{
					"name":          "Song A",
					"popularity":    50,
					"artists":       []any{map[string]any{"id": "a1", "name": "Artist", "external_urls": map[string]string{"spotify": "https://open.spotify.com/artist/a1"}}},
					"external_urls": map[string]string{"spotify": "https://open.spotify.com/track/t1"},
				}},
				map[string]any{"track": nil},
			},
			"total": 2,
		})
	})

	tracks, err := newClient(t, mux).SavedTracks(context.Background(), "user-token", 20, 0)
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	require.Equal(t, "Song A", tracks[0].Name)
	require.Equal(t, "Artist", tracks[0].Artists[0].Name)
	require.Equal(t, "https://open.spotify.com/track/t1", tracks[0].ExternalURLs["spotify"])
}

func TestClient_SavedTracks_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, map[string]string{})
	})

	_, err := newClient(t, mux).SavedTracks(context.Background(), "user-token", 20, 0)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	require.Equal(t, http.StatusInternalServerError, apperrors.HTTPStatus(err))
	require.EqualValues(t, 3, calls.Load())
}

func TestClient_FindPlaylist(t *testing.T) {
	var tokenCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "app-token", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer app-token", r.Header.Get("Authorization"))
		require.Equal(t, "playlist", r.URL.Query().Get("type"))
		if r.URL.Query().Get("q") == "nothing" {
			writeJSON(w, http.StatusOK, map[string]any{"playlists": map[string]any{"items": []any{nil}}})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"playlists": map[string]any{"items": []any{
			nil,
			map[string]any{"id": "p1", "name": "Pop Hits", "external_urls": map[string]string{"spotify": "https://open.spotify.com/playlist/p1"}},
		}}})
	})
	c := newClient(t, mux)

	p, err := c.FindPlaylist(context.Background(), "pop")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Equal(t, "Pop Hits", p.Name)

	p, err = c.FindPlaylist(context.Background(), "nothing")
	require.NoError(t, err)
	require.Nil(t, p)

	// The application token is cached between searches.
	require.EqualValues(t, 1, tokenCalls.Load())
}

func TestClient_MalformedBodyIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me/tracks", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [`))
	})

	_, err := newClient(t, mux).SavedTracks(context.Background(), "user-token", 20, 0)
	require.ErrorIs(t, err, apperrors.ErrUpstream)
	require.EqualValues(t, 1, calls.Load())
}

func TestClient_FindPlaylist_ApplicationToken(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []int
		wantErr    bool
		tokenCalls int32
	}{
		{name: "transient failure is retried", statuses: []int{http.StatusServiceUnavailable, http.StatusOK}, tokenCalls: 2},
		{name: "rejected credentials are final", statuses: []int{http.StatusUnauthorized}, wantErr: true, tokenCalls: 1},
		{name: "retries are bounded", statuses: []int{http.StatusBadGateway, http.StatusBadGateway, http.StatusBadGateway, http.StatusOK}, wantErr: true, tokenCalls: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tokenCalls atomic.Int32
			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
				n := int(tokenCalls.Add(1))
				status := tt.statuses[min(n, len(tt.statuses))-1]
				if status != http.StatusOK {
					writeJSON(w, status, map[string]string{"error": "server_error"})
					return
				}
				writeJSON(w, http.StatusOK, map[string]any{"access_token": "app-token", "token_type": "Bearer", "expires_in": 3600})
			})
			mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, map[string]any{"playlists": map[string]any{"items": []any{
					map[string]any{"id": "p1", "name": "Chill"},
				}}})
			})

			p, err := newClient(t, mux).FindPlaylist(context.Background(), "chill")
			require.Equal(t, tt.tokenCalls, tokenCalls.Load())
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrUpstream)
				require.NotContains(t, err.Error(), "server_error")
				return
			}
			require.NoError(t, err)
			require.Equal(t, "p1", p.ID)
		})
	}
}

func TestClient_FindPlaylist_CancelledContext(t *testing.T) {
	var tokenCalls, searchCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/token", func(w http.ResponseWriter, r *http.Request) {
		tokenCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"access_token": "app-token", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /v1/search", func(w http.ResponseWriter, r *http.Request) {
		searchCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"playlists": map[string]any{"items": []any{}}})
	})
	c := newClient(t, mux)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.FindPlaylist(ctx, "chill")
	require.Error(t, err)
	require.Zero(t, tokenCalls.Load())
	require.Zero(t, searchCalls.Load())

	// A later request is not poisoned by the cancelled one.
	_, err = c.FindPlaylist(context.Background(), "chill")
	require.NoError(t, err)
	require.EqualValues(t, 1, tokenCalls.Load())
}
