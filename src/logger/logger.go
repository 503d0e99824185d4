// Package logger holds the process-wide zerolog logger.
package logger

import (
	"feynman_tutor/src/model"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger writes JSON to stdout until InitLogger replaces it
var Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// InitLogger applies level, time format, sink and encoding from config
func InitLogger(config model.LogConfig) error {
	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return fmt.Errorf("invalid log level '%s': %w", config.Level, err)
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = timeFieldFormat(config.TimeFormat)

	sink, err := openSink(config)
	if err != nil {
		return err
	}
	if strings.EqualFold(config.Format, "console") {
		sink = zerolog.ConsoleWriter{Out: sink, TimeFormat: time.RFC3339}
	}

	Logger = zerolog.New(sink).With().Timestamp().Caller().Logger()
	// libraries logging through zerolog/log share the sink
	log.Logger = Logger

	Logger.Info().
		Str("level", level.String()).
		Str("format", config.Format).
		Str("output", config.Output).
		Msg("logger ready")
	return nil
}

func timeFieldFormat(name string) string {
	switch strings.ToLower(name) {
	case "unix":
		return zerolog.TimeFormatUnix
	case "iso8601":
		return "2006-01-02T15:04:05.000Z07:00"
	default:
		return time.RFC3339
	}
}

// openSink resolves Output to a writer; file output appends and creates parent dirs
func openSink(config model.LogConfig) (io.Writer, error) {
	switch strings.ToLower(config.Output) {
	case "stderr":
		return os.Stderr, nil
	case "file":
		if err := os.MkdirAll(filepath.Dir(config.FilePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file '%s': %w", config.FilePath, err)
		}
		return f, nil
	default:
		return os.Stdout, nil
	}
}

func Info() *zerolog.Event  { return Logger.Info() }
func Debug() *zerolog.Event { return Logger.Debug() }
func Warn() *zerolog.Event  { return Logger.Warn() }
func Error() *zerolog.Event { return Logger.Error() }
func Fatal() *zerolog.Event { return Logger.Fatal() }
