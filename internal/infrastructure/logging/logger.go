package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/nerrad567/warehouse-core/internal/infrastructure/config"
)

// devVersion tags log lines written before the build version is known.
const devVersion = "dev"

// Logger is a slog.Logger whose every record carries the emitting binary
// ("warehouse" or "simulator") and its build version.
type Logger struct {
	*slog.Logger
}

// New builds the logger for one binary. service is stamped on every record
// so lines from the warehouse service and the simulator can be told apart
// in a shared collector; version ties a line to a build.
func New(cfg config.LoggingConfig, service, version string) *Logger {
	return &Logger{Logger: slog.New(newHandler(writerFor(cfg.Output), cfg, service, version))}
}

// Default is the logger used before the configuration file has been read:
// JSON on stdout at info level.
func Default(service string) *Logger {
	return New(config.LoggingConfig{Level: "info", Format: "json", Output: "stdout"}, service, devVersion)
}

// With returns a child logger, typically tagged with a component:
//
//	log.With("component", "mqtt")
func (l *Logger) With(args ...any) *Logger {
	return &Logger{Logger: l.Logger.With(args...)}
}

func newHandler(w io.Writer, cfg config.LoggingConfig, service, version string) slog.Handler {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		h = slog.NewTextHandler(w, opts)
	} else {
		h = slog.NewJSONHandler(w, opts)
	}
	return h.WithAttrs([]slog.Attr{
		slog.String("service", service),
		slog.String("version", version),
	})
}

func writerFor(output string) io.Writer {
	if strings.EqualFold(output, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

// parseLevel maps debug, info, warn (or warning) and error; anything else is info.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
