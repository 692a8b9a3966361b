package observability

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"labcalc/internal/handlers"
)

// Failure describes a request that could not be served.
type Failure struct {
	Operation string
	Message   string
	// Kind is the machine-readable failure class, e.g. "underdetermined".
	Kind   string
	Status int
	Err    error
}

// RecordError records f on the span, bumps counter by operation and kind,
// logs it with trace context and writes the JSON error body
// {error, kind, request_id}.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, counter metric.Int64Counter, f Failure, w http.ResponseWriter) {
	requestID := RequestIDFromContext(ctx)

	span.RecordError(f.Err)
	span.SetStatus(codes.Error, f.Message)
	span.SetAttributes(attribute.String("error.kind", f.Kind))

	counter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", f.Operation),
		attribute.String("kind", f.Kind),
	))

	fields := []zap.Field{
		zap.String("operation", f.Operation),
		zap.String("kind", f.Kind),
		zap.Int("status", f.Status),
		zap.Error(f.Err),
		zap.String("request_id", requestID),
	}
	if f.Status >= http.StatusInternalServerError {
		logger.Error(f.Message, fields...)
	} else {
		logger.Warn(f.Message, fields...)
	}

	WriteError(ctx, w, f.Status, f.Kind, f.Message)
}

// WriteError writes the JSON error body {error, kind, request_id} without
// touching spans or metrics. Read-only endpoints use it directly.
func WriteError(ctx context.Context, w http.ResponseWriter, status int, kind, msg string) {
	handlers.WriteJSON(w, status, map[string]string{
		"error":      msg,
		"kind":       kind,
		"request_id": RequestIDFromContext(ctx),
	})
}
