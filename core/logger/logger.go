// Package logger defines the logging interface used across the core packages.
package logger

// Logger exposes logging methods for common severity levels.
type Logger interface {
	Debugf(format string, args ...any)
	// Debugw logs a message with structured fields.
	Debugw(msg string, fields map[string]any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
	// With returns a child logger carrying the given fields on every entry.
	With(fields map[string]any) Logger
}
