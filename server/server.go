package server

import (
	"context"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/moodtunes/mood-music-api/auth"
	"github.com/moodtunes/mood-music-api/internal/config"
	"github.com/moodtunes/mood-music-api/internal/metrics"
	"github.com/moodtunes/mood-music-api/mood"
	"github.com/moodtunes/mood-music-api/session"
	"github.com/moodtunes/mood-music-api/spotify"
	"github.com/moodtunes/mood-music-api/token"
	"github.com/rs/zerolog/log"
)

// SpotifyAPI is the subset of the Web API the handlers call.
type SpotifyAPI interface {
	CurrentUser(ctx context.Context, accessToken string) (*spotify.User, error)
	SavedTracks(ctx context.Context, accessToken string, limit, offset int) ([]spotify.Track, error)
	FindPlaylist(ctx context.Context, query string) (*spotify.Playlist, error)
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	mux      *http.ServeMux
	handler  http.Handler
	routes   []string
	config   *config.Config
	auth     *auth.Service
	spotify  SpotifyAPI
	mood     *mood.Service
	metrics  *metrics.Metrics
	limiter  *RateLimiter
	validate *validator.Validate
	now      func() time.Time
}

type options struct {
	metrics    *metrics.Metrics
	classifier mood.Classifier
	generator  mood.TextGenerator
	nowTime    func() time.Time
}

// Option customises the collaborators New wires up.
type Option func(*options)

// WithMetrics shares a metrics registry with the caller.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithClassifier replaces the HTTP emotion classifier.
func WithClassifier(c mood.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

// WithTextGenerator replaces the Gemini text generator.
func WithTextGenerator(g mood.TextGenerator) Option {
	return func(o *options) { o.generator = g }
}

// WithNowTime sets the clock used for sessions (primarily for testing)
func WithNowTime(now func() time.Time) Option {
	return func(o *options) { o.nowTime = now }
}

func New(cfg *config.Config, opts ...Option) (*Server, error) {
	o := options{nowTime: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New("mood-music-api")
	}

	codec, err := session.NewCodec(cfg.Security.SecretKey, cfg.Security.SessionMaxAge, session.WithClock(o.nowTime))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session codec: %w", err)
	}

	spotifyClient := spotify.NewClient(cfg)
	authService, err := auth.NewService(token.NewClient(cfg, o.metrics), spotifyClient, codec,
		auth.WithNowTime(o.nowTime), auth.WithMetrics(o.metrics))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create authorization service: %w", err)
	}

	classifier := o.classifier
	if classifier == nil && cfg.Companion.EmotionServiceURL != "" {
		classifier = mood.NewHTTPClassifier(cfg.Companion.EmotionServiceURL, cfg.HTTP.Timeout)
	}
	generator := o.generator
	if generator == nil && cfg.Companion.GeminiAPIKey != "" {
		generator = mood.NewGeminiGenerator(cfg.Companion.GeminiAPIURL, cfg.Companion.GeminiAPIKey, cfg.HTTP.Timeout)
	}

	s := &Server{
		env:      cfg.App.Env,
		mux:      http.NewServeMux(),
		config:   cfg,
		auth:     authService,
		spotify:  spotifyClient,
		mood:     mood.NewService(classifier, generator, spotifyClient),
		metrics:  o.metrics,
		limiter:  NewRateLimiter(cfg.Security.RateLimit),
		validate: newValidator(),
		now:      o.nowTime,
	}

	s.initRoutes()
	s.handler = ChainMiddleware(s.mux.ServeHTTP, s.StandardMiddleware()...)
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, ok := strings.Cut(route, " ")
		if !ok {
			method, path = "", route
		}
		log.Debug().Msgf("[%s] %s", colouredMethod(method), path)
	}
}

func colouredMethod(method string) string {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		return color + paddedMethod + ResetColor
	}
	return Gray + paddedMethod + ResetColor
}

// newValidator reports field names by their query or json tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"query", "json"} {
			if name, _, _ := strings.Cut(f.Tag.Get(tag), ","); name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}
