package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"labcalc/internal/testutil"
)

func TestRecordErrorWritesStandardizedErrorResponse(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	span := trace.SpanFromContext(ctx)
	core, logs := observer.New(zap.InfoLevel)

	counter, err := otel.Meter("test").Int64Counter("test.errors.total")
	if err != nil {
		t.Fatalf("creating counter: %v", err)
	}

	w := httptest.NewRecorder()

	RecordError(ctx, span, zap.New(core), counter, Failure{
		Operation: "molarity",
		Message:   "invalid request body",
		Kind:      "invalid_request",
		Status:    http.StatusBadRequest,
		Err:       errors.New("bad json"),
	}, w)

	resp := w.Result()
	testutil.CheckResponseCode(t, http.StatusBadRequest, resp.StatusCode)

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected Content-Type application/json, got %q", ct)
	}

	var body map[string]string
	testutil.DecodeJSONBody(t, resp.Body, &body)

	if got := body["error"]; got != "invalid request body" {
		t.Fatalf("expected error %q, got %q", "invalid request body", got)
	}
	if got := body["kind"]; got != "invalid_request" {
		t.Fatalf("expected kind %q, got %q", "invalid_request", got)
	}
	if got := body["request_id"]; got != "req-1" {
		t.Fatalf("expected request_id %q, got %q", "req-1", got)
	}

	entries := logs.All()
	if len(entries) != 1 || entries[0].Level != zap.WarnLevel {
		t.Fatalf("expected one warn entry for a client error, got %+v", entries)
	}
}

func TestRecordErrorLogsServerFailuresAtErrorLevel(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	counter, _ := otel.Meter("test").Int64Counter("test.errors.total")
	ctx := context.Background()

	RecordError(ctx, trace.SpanFromContext(ctx), zap.New(core), counter, Failure{
		Operation: "projects.create",
		Message:   "could not save project",
		Kind:      "storage",
		Status:    http.StatusInternalServerError,
		Err:       errors.New("disk full"),
	}, httptest.NewRecorder())

	if entries := logs.All(); len(entries) != 1 || entries[0].Level != zap.ErrorLevel {
		t.Fatalf("expected one error entry, got %+v", entries)
	}
}

func TestWriteErrorCarriesKindAndRequestID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-2")
	w := httptest.NewRecorder()

	WriteError(ctx, w, http.StatusNotFound, "project_not_found", "project not found: nope")

	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	var body map[string]string
	testutil.DecodeJSONBody(t, w.Body, &body)
	want := map[string]string{
		"error":      "project not found: nope",
		"kind":       "project_not_found",
		"request_id": "req-2",
	}
	if len(body) != len(want) {
		t.Fatalf("expected %v, got %v", want, body)
	}
	for k, v := range want {
		if body[k] != v {
			t.Fatalf("expected %s %q, got %q", k, v, body[k])
		}
	}
}
