// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// SubscriberIDKey is the context key for the authenticated subscriber ID
	SubscriberIDKey contextKey = "subscriber_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	return NewWithWriter(env, os.Stdout)
}

// NewWithWriter creates a logger that writes to w. Tests pass io.Discard.
func NewWithWriter(env string, w io.Writer) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	return NewWithWriter("production", io.Discard)
}

// WithContext returns a logger with request_id and subscriber_id extracted from ctx.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if subscriberID, ok := ctx.Value(SubscriberIDKey).(string); ok && subscriberID != "" {
		newLogger = newLogger.WithSubscriber(subscriberID)
	}

	return newLogger
}

// WithSubscriber returns a logger tagged with the subscriber ID
func (l *Logger) WithSubscriber(subscriberID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("subscriber_id", subscriberID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// Acquisition logs the outcome of one acquisition request.
func (l *Logger) Acquisition(mode string, requested, accepted, subQueries int, cancelled bool) {
	l.Info("lead_acquisition",
		slog.String("mode", mode),
		slog.Int("requested", requested),
		slog.Int("accepted", accepted),
		slog.Int("sub_queries", subQueries),
		slog.Bool("cancelled", cancelled),
	)
}

// QuotaRejected logs an admission-control rejection.
func (l *Logger) QuotaRejected(requested, remaining int) {
	l.Warn("quota_rejected",
		slog.Int("requested", requested),
		slog.Int("remaining", remaining),
	)
}

// UpstreamFailure logs a failed directory lookup for one sub-query.
func (l *Logger) UpstreamFailure(query string, page int, err error) {
	l.Warn("directory_upstream_failure",
		slog.String("query", query),
		slog.Int("page", page),
		slog.String("error", err.Error()),
	)
}

// PersistenceFailure logs a failed pipeline write that was left to reconciliation.
func (l *Logger) PersistenceFailure(operation, leadID string, err error) {
	l.Error("pipeline_persistence_failure",
		slog.String("operation", operation),
		slog.String("lead_id", leadID),
		slog.String("error", err.Error()),
	)
}

// RecycleSweep logs one recycler pass.
func (l *Logger) RecycleSweep(scanned, restored, failed int) {
	l.Info("pipeline_recycle_sweep",
		slog.Int("scanned", scanned),
		slog.Int("restored", restored),
		slog.Int("failed", failed),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
