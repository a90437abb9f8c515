// Package logger defines the structured logging interface used across the
// analytics API. The production implementation lives in
// internal/infrastructure/monitoring and is backed by zap.
package logger

import (
	"context"
	"time"
)

// Field represents a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// Logger is the structured, context-aware logging interface.
type Logger interface {
	// Debug logs a debug message.
	Debug(ctx context.Context, msg string, fields ...Field)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(ctx context.Context, msg string, fields ...Field)

	// Error logs an error message.
	Error(ctx context.Context, msg string, err error, fields ...Field)

	// Fatal logs a fatal message and exits the application.
	Fatal(ctx context.Context, msg string, err error, fields ...Field)

	// WithComponent returns a logger scoped to a component name.
	WithComponent(component string) Logger
}

// String creates a string field.
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int creates an integer field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

// Int64 creates an int64 field.
func Int64(key string, value int64) Field {
	return Field{Key: key, Value: value}
}

// Bool creates a boolean field.
func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

// Duration creates a duration field.
func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

// Time creates a time field formatted as RFC 3339.
func Time(key string, value time.Time) Field {
	return Field{Key: key, Value: value.Format(time.RFC3339)}
}

// Any creates a field with an arbitrary value.
func Any(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
