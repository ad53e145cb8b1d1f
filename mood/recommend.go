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
	"github.com/moodtunes/mood-music-api/spotify"
	"github.com/rs/zerolog/log"
)

// TextGenerator completes a prompt.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls a generateText style endpoint.
type GeminiGenerator struct {
	url         string
	apiKey      string
	temperature float64
	client      *http.Client
}

var _ TextGenerator = (*GeminiGenerator)(nil)

func NewGeminiGenerator(url, apiKey string, timeout time.Duration) *GeminiGenerator {
	return &GeminiGenerator{url: url, apiKey: apiKey, temperature: 0.7, client: &http.Client{Timeout: timeout}}
}

type generateRequest struct {
	Prompt struct {
		Text string `json:"text"`
	} `json:"prompt"`
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Output string `json:"output"`
	} `json:"candidates"`
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	var body generateRequest
	body.Prompt.Text = prompt
	body.Temperature = g.temperature
	buf, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("[GeminiGenerator Generate] %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(buf))
	if err != nil {
		return "", fmt.Errorf("[GeminiGenerator Generate] %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Header rather than query string so the key never ends up in a logged URL.
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("[GeminiGenerator Generate] %w: %v", apperrors.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		log.Error().Int("status_code", resp.StatusCode).Msg("Text generation failed")
		return "", fmt.Errorf("[GeminiGenerator Generate] %w: generator returned %d", apperrors.ErrUpstream, resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("[GeminiGenerator Generate] %w: decoding response: %v", apperrors.ErrUpstream, err)
	}
	if len(out.Candidates) == 0 {
		return "", nil
	}
	return strings.TrimSpace(out.Candidates[0].Output), nil
}

// BuildPrompt asks for the three tracks that best fit mood, listing each
// track as "<n>. <title> - <first artist>".
func BuildPrompt(mood string, tracks []spotify.Track) string {
	var list strings.Builder
	for i, t := range tracks {
		artist := "Unknown"
		if len(t.Artists) > 0 {
			artist = t.Artists[0].Name
		}
		if i > 0 {
			list.WriteString("\n")
		}
		fmt.Fprintf(&list, "%d. %s - %s", i+1, t.Name, artist)
	}

	return fmt.Sprintf("Based on the following mood: '%s', select the top 3 songs from this list that emotionally fit best:\n\n%s\n\nOnly return the selected 3 songs as a list of 'Title - Artist'.",
		strings.TrimSpace(mood), list.String())
}
