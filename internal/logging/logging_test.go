package logging_test

import (
	"testing"

	"github.com/moodtunes/mood-music-api/internal/logging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"DEBUG":    zerolog.DebugLevel,
		"info":     zerolog.InfoLevel,
		"WARNING":  zerolog.WarnLevel,
		"ERROR":    zerolog.ErrorLevel,
		"CRITICAL": zerolog.FatalLevel,
		"verbose":  zerolog.InfoLevel,
	}
	for name, want := range tests {
		require.Equal(t, want, logging.Level(name), name)
	}
}
