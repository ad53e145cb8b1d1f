package server

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/spotify"
)

const defaultTracksLimit = 20

type healthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp int64  `json:"timestamp"` // unix seconds
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:    "healthy",
			Version:   s.config.App.Version,
			Timestamp: s.now().Unix(),
		})
	}
}

// MeHandler returns the profile of the session's user.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := s.spotify.CurrentUser(r.Context(), accessTokenFrom(r))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

type savedTracksQuery struct {
	Limit  int `query:"limit" validate:"gte=1,lte=50"`
	Offset int `query:"offset" validate:"gte=0"`
}

func parseSavedTracksQuery(r *http.Request) (savedTracksQuery, error) {
	q := savedTracksQuery{Limit: defaultTracksLimit}
	values := r.URL.Query()

	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, fmt.Errorf("%w: %s must be an integer", apperrors.ErrInvalidRequest, name)
		}
		*dst = n
	}
	return q, nil
}

type savedTracksResponse struct {
	Tracks []spotify.Track `json:"tracks"`
}

// SavedTracksHandler proxies one page of the user's saved tracks.
func (s *Server) SavedTracksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := inputFrom[savedTracksQuery](r)
		tracks, err := s.spotify.SavedTracks(r.Context(), accessTokenFrom(r), q.Limit, q.Offset)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, savedTracksResponse{Tracks: tracks})
	}
}
