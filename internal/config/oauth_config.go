package config

import (
	"strings"
	"time"
)

const (
	defaultAuthURL  = "https://accounts.spotify.com/authorize"
	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultAPIURL   = "https://api.spotify.com/v1"
)

// Spotify holds the OAuth client registration and provider endpoints.
type Spotify struct {
	ClientID     string `validate:"required"`
	ClientSecret string `validate:"required"`
	RedirectURI  string `validate:"required,url"`
	Scopes       string `validate:"required"`
	AuthURL      string `validate:"required,url"`
	TokenURL     string `validate:"required,url"`
	APIURL       string `validate:"required,url"`
}

// ScopeList returns the requested scopes as individual values.
func (s Spotify) ScopeList() []string {
	return strings.Fields(s.Scopes)
}

func loadSpotify() Spotify {
	return Spotify{
		ClientID:     GetEnv("SPOTIFY_CLIENT_ID", ""),
		ClientSecret: GetEnv("SPOTIFY_CLIENT_SECRET", ""),
		RedirectURI:  GetEnv("SPOTIFY_REDIRECT_URI", ""),
		Scopes:       GetEnv("SPOTIFY_SCOPES", "user-library-read"),
		AuthURL:      GetEnv("SPOTIFY_AUTH_URL", defaultAuthURL),
		TokenURL:     GetEnv("SPOTIFY_TOKEN_URL", defaultTokenURL),
		APIURL:       strings.TrimRight(GetEnv("SPOTIFY_API_URL", defaultAPIURL), "/"),
	}
}

// HTTP holds the outbound call policy shared by every provider call.
type HTTP struct {
	Timeout       time.Duration `validate:"gt=0"`
	Retries       int           `validate:"min=1,max=10"`
	BackoffFactor time.Duration `validate:"gte=0"`
}

func loadHTTP(errs *[]string) HTTP {
	timeout := getEnvInt("HTTP_TIMEOUT", 30, errs)
	backoff := getEnvFloat("HTTP_BACKOFF_FACTOR", 0.5, errs)
	return HTTP{
		Timeout:       time.Duration(timeout) * time.Second,
		Retries:       getEnvInt("HTTP_RETRIES", 3, errs),
		BackoffFactor: time.Duration(backoff * float64(time.Second)),
	}
}
