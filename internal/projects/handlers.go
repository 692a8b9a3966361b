package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"labcalc/internal/handlers"
	"labcalc/internal/history"
	"labcalc/internal/observability"
	"labcalc/internal/report"
)

var tracer = otel.Tracer("projects")

// Failure kinds of the history and project endpoints.
const (
	KindInvalidRequest  = "invalid_request"
	KindProjectNotFound = "project_not_found"
	KindRecordNotFound  = "record_not_found"
	KindEmptyProject    = "empty_project"
	KindStorage         = "storage"
)

// Handler serves the recent history, projects and their PDF reports.
type Handler struct {
	log *history.Log
	now func() time.Time
}

func NewHandler(log *history.Log) *Handler {
	return &Handler{log: log, now: time.Now}
}

// op is the per-request bookkeeping shared by every endpoint.
type op struct {
	name   string
	ctx    context.Context
	span   trace.Span
	logger *zap.Logger
	w      http.ResponseWriter
}

func (h *Handler) begin(w http.ResponseWriter, r *http.Request, name string) *op {
	ctx := r.Context()
	ctx, span := tracer.Start(ctx, "projects."+name, trace.WithAttributes(
		attribute.String("request.id", observability.RequestIDFromContext(ctx)),
	))
	return &op{name: name, ctx: ctx, span: span, logger: observability.LoggerWithTrace(ctx), w: w}
}

func (o *op) fail(kind, msg string, status int, err error) {
	observability.RecordError(o.ctx, o.span, o.logger, errorCounter, observability.Failure{
		Operation: o.name,
		Message:   msg,
		Kind:      kind,
		Status:    status,
		Err:       err,
	}, o.w)
}

// failLog classifies an error returned by the history log.
func (o *op) failLog(err error) {
	switch {
	case errors.Is(err, history.ErrProjectNotFound):
		o.fail(KindProjectNotFound, err.Error(), http.StatusNotFound, err)
	case errors.Is(err, history.ErrRecordNotFound):
		o.fail(KindRecordNotFound, err.Error(), http.StatusNotFound, err)
	case errors.Is(err, history.ErrEmptyName):
		o.fail(KindInvalidRequest, err.Error(), http.StatusBadRequest, err)
	default:
		o.fail(KindStorage, "could not update history", http.StatusInternalServerError, err)
	}
}

// ListHistory handles GET /history
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.log.List(history.Recent)
	if err != nil {
		observability.WriteError(r.Context(), w, http.StatusInternalServerError, KindStorage, err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{Records: newestFirst(records), Limit: h.log.Limit()})
}

// RemoveFromHistory handles DELETE /history/{recordID}
func (h *Handler) RemoveFromHistory(w http.ResponseWriter, r *http.Request) {
	o := h.begin(w, r, "history.remove")
	defer o.span.End()

	recordID := chi.URLParam(r, "recordID")
	if err := h.log.Remove(o.ctx, history.Recent, recordID); err != nil {
		o.failLog(err)
		return
	}

	o.logger.Info("history record removed", zap.String("record_id", recordID))
	o.span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// List handles GET /projects
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	projects := h.log.Projects()
	out := make([]Summary, 0, len(projects))
	for _, p := range projects {
		out = append(out, summarize(p))
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"projects": out})
}

// Create handles POST /projects
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	o := h.begin(w, r, "create")
	defer o.span.End()

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		o.fail(KindInvalidRequest, "invalid request body", http.StatusBadRequest, err)
		return
	}

	p, err := h.log.CreateProject(o.ctx, req.Name)
	if err != nil {
		o.failLog(err)
		return
	}

	o.span.SetAttributes(attribute.String("project.id", p.ID))
	o.span.SetStatus(codes.Ok, "")
	o.logger.Info("project created", zap.String("project_id", p.ID), zap.String("name", p.Name))

	w.Header().Set("Location", "/projects/"+p.ID)
	handlers.WriteJSON(w, http.StatusCreated, p)
}

// Get handles GET /projects/{projectID}
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.log.Project(chi.URLParam(r, "projectID"))
	if err != nil {
		observability.WriteError(r.Context(), w, http.StatusNotFound, KindProjectNotFound, err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /projects/{projectID}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	o := h.begin(w, r, "delete")
	defer o.span.End()

	id := chi.URLParam(r, "projectID")
	o.span.SetAttributes(attribute.String("project.id", id))
	if err := h.log.DeleteProject(o.ctx, id); err != nil {
		o.failLog(err)
		return
	}

	o.logger.Info("project deleted", zap.String("project_id", id))
	o.span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// RemoveCalculation handles DELETE /projects/{projectID}/calculations/{recordID}
func (h *Handler) RemoveCalculation(w http.ResponseWriter, r *http.Request) {
	o := h.begin(w, r, "calculations.remove")
	defer o.span.End()

	id, recordID := chi.URLParam(r, "projectID"), chi.URLParam(r, "recordID")
	o.span.SetAttributes(attribute.String("project.id", id), attribute.String("record.id", recordID))
	if err := h.log.Remove(o.ctx, id, recordID); err != nil {
		o.failLog(err)
		return
	}

	o.logger.Info("project calculation removed", zap.String("project_id", id), zap.String("record_id", recordID))
	o.span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// Report handles GET /projects/{projectID}/report.pdf
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	o := h.begin(w, r, "report")
	defer o.span.End()

	id := chi.URLParam(r, "projectID")
	o.span.SetAttributes(attribute.String("project.id", id))

	p, err := h.log.Project(id)
	if err != nil {
		o.failLog(err)
		return
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, p, h.now()); err != nil {
		if errors.Is(err, report.ErrEmptyProject) {
			o.fail(KindEmptyProject, "no calculations to export", http.StatusConflict, err)
			return
		}
		o.fail(KindStorage, "could not render report", http.StatusInternalServerError, err)
		return
	}

	reportCounter.Add(o.ctx, 1)
	reportBytes.Record(o.ctx, int64(buf.Len()))
	o.span.AddEvent("report.rendered", trace.WithAttributes(
		attribute.Int("calculations", len(p.Calculations)),
		attribute.Int("bytes", buf.Len()),
	))
	o.span.SetStatus(codes.Ok, "")
	o.logger.Info("project report rendered",
		zap.String("project_id", id),
		zap.Int("calculations", len(p.Calculations)),
		zap.Int("bytes", buf.Len()),
	)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(p.Name)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
