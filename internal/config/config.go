package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	apperrors "github.com/moodtunes/mood-music-api/internal/errors"
)

// Config is the process-wide settings object. It is built once by Load and
// treated as read-only afterwards.
type Config struct {
	App       App
	Spotify   Spotify
	HTTP      HTTP
	Cors      Cors
	Security  Security
	Companion Companion
}

// Companion holds the optional collaborators behind the mood endpoints.
type Companion struct {
	EmotionServiceURL string `validate:"omitempty,url"`
	GeminiAPIURL      string `validate:"required,url"`
	GeminiAPIKey      string
}

const defaultGeminiURL = "https://generativelanguage.googleapis.com/v1beta/models/text-bison-001:generateText"

func loadCompanion() Companion {
	return Companion{
		EmotionServiceURL: GetEnv("EMOTION_SERVICE_URL", ""),
		GeminiAPIURL:      GetEnv("GEMINI_API_URL", defaultGeminiURL),
		GeminiAPIKey:      GetEnv("GEMINI_API_KEY", ""),
	}
}

// Load reads the environment and validates the result. Any invalid or
// missing value fails here rather than on first use.
func Load() (*Config, error) {
	var errs []string
	c := &Config{
		App:       loadApp(),
		Spotify:   loadSpotify(),
		HTTP:      loadHTTP(&errs),
		Cors:      loadCors(),
		Security:  loadSecurity(&errs),
		Companion: loadCompanion(),
	}

	errs = append(errs, validate(c)...)
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrConfiguration, strings.Join(errs, "; "))
	}
	return c, nil
}

func validate(c *Config) []string {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return msgs
}

// describe renders a field error without echoing the value, which may be a secret.
func describe(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "url":
		return field + " must be an absolute URL"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min", "max", "gt", "gte":
		return fmt.Sprintf("%s fails %s=%s", field, fe.Tag(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
	}
}
