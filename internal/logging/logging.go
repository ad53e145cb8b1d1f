// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var levels = map[string]zerolog.Level{
	"DEBUG":    zerolog.DebugLevel,
	"INFO":     zerolog.InfoLevel,
	"WARNING":  zerolog.WarnLevel,
	"ERROR":    zerolog.ErrorLevel,
	"CRITICAL": zerolog.FatalLevel,
}

// Level converts a configured level name into a zerolog level. Unknown names
// fall back to info; config validation rejects them before this point.
func Level(name string) zerolog.Level {
	if l, ok := levels[strings.ToUpper(name)]; ok {
		return l
	}
	return zerolog.InfoLevel
}

// Setup installs the global logger: human readable in DEV, JSON elsewhere.
func Setup(level string, dev bool) {
	var out io.Writer = os.Stderr
	if dev {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.SetGlobalLevel(Level(level))
	log.Logger = zerolog.New(out).With().Timestamp().Str("service", "mood-music-api").Logger()
}
