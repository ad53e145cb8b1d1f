package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/mood"
)

// maxImageSize bounds the uploaded photo.
const maxImageSize = 10 << 20

// AnalyzeHandler classifies an uploaded face photo and suggests a playlist.
func (s *Server) AnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.mood.CanAnalyze() {
			writeError(w, r, fmt.Errorf("%w: emotion analysis is not configured", apperrors.ErrUnavailable))
			return
		}

		image, contentType, err := readImage(w, r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		suggestion, err := s.mood.Analyze(r.Context(), image, contentType)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, suggestion)
	}
}

// readImage pulls the "file" part out of a multipart upload.
func readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize+1<<20)
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		return nil, "", fmt.Errorf("%w: expected a multipart upload of at most 10 MiB", apperrors.ErrInvalidRequest)
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: file is required", apperrors.ErrInvalidRequest)
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: reading file: %v", apperrors.ErrInvalidRequest, err)
	}
	if len(image) == 0 || len(image) > maxImageSize {
		return nil, "", fmt.Errorf("%w: file must be between 1 byte and 10 MiB", apperrors.ErrInvalidRequest)
	}

	contentType := http.DetectContentType(image)
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("%w: file is not an image", apperrors.ErrInvalidRequest)
	}
	return image, contentType, nil
}

type moodRequest struct {
	MoodDescription string `json:"mood_description" validate:"required,max=500"`
}

func parseMoodRequest(r *http.Request) (moodRequest, error) {
	var in moodRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 64<<10))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return in, fmt.Errorf("%w: request body is required", apperrors.ErrInvalidRequest)
		}
		return in, fmt.Errorf("%w: malformed JSON body", apperrors.ErrInvalidRequest)
	}
	in.MoodDescription = strings.TrimSpace(in.MoodDescription)
	return in, nil
}

type recommendResponse struct {
	SuggestedSongs string `json:"suggested_songs"`
}

// AIRecommendHandler asks the text generator which saved tracks fit a mood.
func (s *Server) AIRecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.mood.CanRecommend() {
			writeError(w, r, fmt.Errorf("%w: recommendations are not configured", apperrors.ErrUnavailable))
			return
		}
		in := inputFrom[moodRequest](r)

		tracks, err := s.spotify.SavedTracks(r.Context(), accessTokenFrom(r), mood.RecommendTrackCount, 0)
		if err != nil {
			writeError(w, r, err)
			return
		}

		suggested, err := s.mood.Recommend(r.Context(), in.MoodDescription, tracks)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, recommendResponse{SuggestedSongs: suggested})
	}
}
