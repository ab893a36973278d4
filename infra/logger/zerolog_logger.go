package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ZerologLogger implements Logger using rs/zerolog.
type ZerologLogger struct {
	log zerolog.Logger
}

// NewZerologLogger creates a ZerologLogger using the APP_ENV environment variable
// to determine the output format. All logs include the provided component field.
func NewZerologLogger(component string) Logger {
	var out io.Writer = os.Stdout
	if console.Load() || strings.ToLower(os.Getenv("APP_ENV")) == "dev" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}
	return NewWithWriter(out, component, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter writes JSON entries to w. An empty or unknown level keeps
// zerolog's default (debug).
func NewWithWriter(w io.Writer, component, level string) Logger {
	z := zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	if lvl, err := zerolog.ParseLevel(strings.ToLower(level)); err == nil && level != "" {
		z = z.Level(lvl)
	}
	return &ZerologLogger{log: z}
}

func (l *ZerologLogger) Debugf(format string, args ...any) {
	l.log.Debug().Msgf(format, args...)
}

func (l *ZerologLogger) Debugw(msg string, fields map[string]any) {
	l.log.Debug().Fields(fields).Msg(msg)
}

func (l *ZerologLogger) Infof(format string, args ...any) {
	l.log.Info().Msgf(format, args...)
}

func (l *ZerologLogger) Warnf(format string, args ...any) {
	l.log.Warn().Msgf(format, args...)
}

func (l *ZerologLogger) Errorf(format string, args ...any) {
	l.log.Error().Msgf(format, args...)
}

func (l *ZerologLogger) With(fields map[string]any) Logger {
	return &ZerologLogger{log: l.log.With().Fields(fields).Logger()}
}
