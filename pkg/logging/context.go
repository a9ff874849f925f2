package logging

import (
	"context"

	"github.com/rs/zerolog"
)

type contextKey int

const loggerKey contextKey = iota

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from context, or returns the default logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// WithField adds a single field to the logger in the context.
func WithField(ctx context.Context, key string, value any) context.Context {
	l := FromContext(ctx).With()
	l = addField(l, key, value)
	logger := l.Logger()
	return WithLogger(ctx, &logger)
}

// WithFields adds several fields to the logger in the context.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	l := FromContext(ctx).With()
	for k, v := range fields {
		l = addField(l, k, v)
	}
	logger := l.Logger()
	return WithLogger(ctx, &logger)
}

// WithOperation tags log entries with the running command.
func WithOperation(ctx context.Context, operation string) context.Context {
	return WithField(ctx, "operation", operation)
}

// WithReservation tags log entries with a reservation number.
func WithReservation(ctx context.Context, resNumber string) context.Context {
	return WithField(ctx, "res_number", resNumber)
}
