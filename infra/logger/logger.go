package logger

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/wrsn/core/logger"
)

var console atomic.Bool

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}
func (n NopLogger) With(map[string]any) Logger  { return n }

// New returns a Logger for the given component. The output format follows
// APP_ENV and the minimum level follows LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// Configure sets the process-wide minimum level and output format for
// loggers created afterwards. format is "json" or "console"; empty values
// leave the current setting.
func Configure(level, format string) error {
	if level != "" {
		lvl, err := zerolog.ParseLevel(strings.ToLower(level))
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		zerolog.SetGlobalLevel(lvl)
	}
	switch strings.ToLower(format) {
	case "":
	case "json":
		console.Store(false)
	case "console":
		console.Store(true)
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}
