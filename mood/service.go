package mood

import (
	"context"
	"fmt"

	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
	"github.com/moodtunes/mood-music-api/spotify"
	"github.com/rs/zerolog/log"
)

// RecommendTrackCount is how many saved tracks are offered to the generator.
const RecommendTrackCount = 10

// PlaylistFinder looks up a playlist for a genre, returning nil when there is none.
type PlaylistFinder interface {
	FindPlaylist(ctx context.Context, query string) (*spotify.Playlist, error)
}

// Suggestion is the answer to a photo analysis.
type Suggestion struct {
	Analysis
	Genre    string            `json:"genre"`
	Playlist *spotify.Playlist `json:"playlist"`
}

// Service runs the companion features. Either collaborator may be nil, in
// which case the matching operation reports ErrUnavailable.
type Service struct {
	classifier Classifier
	generator  TextGenerator
	playlists  PlaylistFinder
}

func NewService(classifier Classifier, generator TextGenerator, playlists PlaylistFinder) *Service {
	return &Service{classifier: classifier, generator: generator, playlists: playlists}
}

// Analyze classifies the photo and suggests a playlist for the dominant
// emotion. A failed playlist lookup leaves Playlist nil.
func (s *Service) Analyze(ctx context.Context, image []byte, contentType string) (*Suggestion, error) {
	if s.classifier == nil {
		return nil, fmt.Errorf("[mood Analyze] %w: no emotion classifier configured", apperrors.ErrUnavailable)
	}

	a, err := s.classifier.Classify(ctx, image, contentType)
	if err != nil {
		return nil, err
	}
	a = Normalize(a)

	sug := &Suggestion{Analysis: *a, Genre: GenreFor(a.DominantEmotion)}
	if s.playlists != nil {
		p, err := s.playlists.FindPlaylist(ctx, sug.Genre)
		if err != nil {
			log.Warn().Err(err).Str("genre", sug.Genre).Msg("Playlist lookup failed")
		} else {
			sug.Playlist = p
		}
	}
	return sug, nil
}

// Recommend asks the generator which of tracks best fit mood.
func (s *Service) Recommend(ctx context.Context, mood string, tracks []spotify.Track) (string, error) {
	if s.generator == nil {
		return "", fmt.Errorf("[mood Recommend] %w: no text generator configured", apperrors.ErrUnavailable)
	}
	if len(tracks) == 0 {
		return "", fmt.Errorf("[mood Recommend] %w: no saved tracks found in library", apperrors.ErrNotFound)
	}
	return s.generator.Generate(ctx, BuildPrompt(mood, tracks))
}

// CanAnalyze reports whether a classifier is configured.
func (s *Service) CanAnalyze() bool { return s.classifier != nil }

// CanRecommend reports whether a generator is configured.
func (s *Service) CanRecommend() bool { return s.generator != nil }
