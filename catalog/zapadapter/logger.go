// Package zapadapter bridges a zap logger to the dependency-free Logger
// interface of the catalog store engine.
package zapadapter

import (
	"go.uber.org/zap"
)

// Logger adapts zap's sugared logger to the key/value style logging interface
// used by the catalog store (Debug/Info/Warn/Error with alternating keys and
// values, the same shape as log/slog).
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a Logger adapter around the given zap logger.
// The caller keeps ownership of the zap logger and its sync lifecycle.
func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{sugar: logger.Sugar()}
}

// Debug logs a message with key/value pairs at debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

// Info logs a message with key/value pairs at info level.
func (l *Logger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

// Warn logs a message with key/value pairs at warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

// Error logs a message with key/value pairs at error level.
func (l *Logger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}
