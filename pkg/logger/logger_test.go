package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, parseLevel("warn"))
	require.Equal(t, slog.LevelError, parseLevel("error"))
	require.Equal(t, slog.LevelWarn, parseLevel(" Warning "))
	require.Equal(t, slog.LevelInfo, parseLevel(""))
	require.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}

func TestNewWithOptions_JSONByDefault(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{Environment: "production"})
	log.Debug("hidden")
	log.Info("hello")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, `"msg":"hello"`)
	require.Contains(t, out, `"service":"projectshelf"`)
	require.Contains(t, out, `"env":"production"`)
}

func TestNewWithOptions_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithOptions(&buf, Options{Format: "TEXT", Level: "debug"})
	log.Debug("details", "user_id", "u1")

	out := buf.String()
	require.Contains(t, out, "level=DEBUG")
	require.Contains(t, out, "msg=details")
	require.Contains(t, out, "service=projectshelf")
	require.Contains(t, out, "user_id=u1")
	require.NotContains(t, out, "env=")
}

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("APP_ENV", "staging")
	require.Equal(t, Options{Level: "warn", Format: "text", Environment: "staging"}, OptionsFromEnv())
}
