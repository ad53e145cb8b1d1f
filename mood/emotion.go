// Package mood holds the companion features: emotion analysis of a face
// photo mapped to a genre playlist, and mood-based ranking of saved tracks.
// The classifier and the text generator are external services.
package mood

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/rs/zerolog/log"
)

// Analysis is a classifier verdict: the dominant label and the confidence per
// label.
type Analysis struct {
	DominantEmotion string             `json:"dominant_emotion"`
	Emotions        map[string]float64 `json:"emotions"`
}

// Classifier maps an image to an emotion analysis.
type Classifier interface {
	Classify(ctx context.Context, image []byte, contentType string) (*Analysis, error)
}

// HTTPClassifier posts the raw image to an emotion service that answers with
// an Analysis document.
type HTTPClassifier struct {
	url    string
	client *http.Client
}

var _ Classifier = (*HTTPClassifier)(nil)

func NewHTTPClassifier(url string, timeout time.Duration) *HTTPClassifier {
	return &HTTPClassifier{url: url, client: &http.Client{Timeout: timeout}}
}

func (c *HTTPClassifier) Classify(ctx context.Context, image []byte, contentType string) (*Analysis, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("[HTTPClassifier Classify] %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("[HTTPClassifier Classify] %w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Error().Int("status_code", resp.StatusCode).Msg("Emotion service error")
		return nil, fmt.Errorf("[HTTPClassifier Classify] %w: emotion service returned %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var a Analysis
	if err := json.NewDecoder(resp.Body).Decode(&a); err != nil {
		return nil, fmt.Errorf("[HTTPClassifier Classify] %w: decoding analysis: %v", apperrors.ErrUpstream, err)
	}
	return Normalize(&a), nil
}

// Normalize trims and lower-cases the dominant label.
func Normalize(a *Analysis) *Analysis {
	a.DominantEmotion = strings.ToLower(strings.TrimSpace(a.DominantEmotion))
	if a.Emotions == nil {
		a.Emotions = map[string]float64{}
	}
	return a
}
