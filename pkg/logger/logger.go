package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

const serviceName = "projectshelf"

// Options controls how the process logger renders records.
type Options struct {
	Level  string
	Format string
	// Environment is attached to every record when set.
	Environment string
}

// OptionsFromEnv reads LOG_LEVEL, LOG_FORMAT and APP_ENV.
func OptionsFromEnv() Options {
	return Options{
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      os.Getenv("LOG_FORMAT"),
		Environment: os.Getenv("APP_ENV"),
	}
}

// New constructs the slog logger shared by every component, configured from the environment.
func New() *slog.Logger {
	return NewWithOptions(os.Stdout, OptionsFromEnv())
}

// NewWithOptions builds a logger writing to w. JSON is the default format; "text" switches to
// slog's key=value handler for local development.
func NewWithOptions(w io.Writer, opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}
	var handler slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "text") {
		handler = slog.NewTextHandler(w, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(w, handlerOpts)
	}
	log := slog.New(handler).With("service", serviceName)
	if env := strings.TrimSpace(opts.Environment); env != "" {
		log = log.With("env", env)
	}
	return log
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
