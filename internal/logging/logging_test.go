package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":        DefaultLevel,
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		" warn ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNewFiltersByLevelWithoutColour(t *testing.T) {
	var buf bytes.Buffer
	log := New(WithWriter(&buf), WithLevel(slog.LevelInfo))

	log.Debug("hidden")
	log.Info("skipping line", "line", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "skipping line")
	assert.Contains(t, out, "line=3")
	assert.NotContains(t, out, "\x1b[")
}

func TestDiscard(t *testing.T) {
	assert.NotPanics(t, func() { Discard().Error("nothing") })
}
