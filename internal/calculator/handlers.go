package calculator

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"labcalc/internal/handlers"
	"labcalc/internal/history"
	"labcalc/internal/observability"
	"labcalc/internal/refdata"
	"labcalc/internal/solver"
)

var tracer = otel.Tracer("calculator")

// Failure kinds raised outside the solver.
const (
	KindInvalidRequest   = "invalid_request"
	KindUnknownReference = refdata.KindUnknownReference
	KindProjectNotFound  = "project_not_found"
	KindStorage          = "storage"
)

// Handler serves the calculator endpoints.
type Handler struct {
	catalog *solver.Catalog
	refs    *refdata.Table
	log     *history.Log
	now     func() time.Time
}

func NewHandler(catalog *solver.Catalog, refs *refdata.Table, log *history.Log) *Handler {
	return &Handler{catalog: catalog, refs: refs, log: log, now: time.Now}
}

// ListFormulas handles GET /calculator/formulas
func (h *Handler) ListFormulas(w http.ResponseWriter, r *http.Request) {
	formulas := h.catalog.Formulas()
	out := make([]FormulaInfo, 0, len(formulas))
	for _, f := range formulas {
		out = append(out, describe(f))
	}
	handlers.WriteJSON(w, http.StatusOK, map[string]any{"formulas": out})
}

// GetFormula handles GET /calculator/formulas/{formula}
func (h *Handler) GetFormula(w http.ResponseWriter, r *http.Request) {
	f, err := h.catalog.Lookup(chi.URLParam(r, "formula"))
	if err != nil {
		observability.WriteError(r.Context(), w, http.StatusNotFound, string(solver.KindUnknownFormula), err.Error())
		return
	}
	handlers.WriteJSON(w, http.StatusOK, describe(f))
}

// solveStatus maps a solver failure onto an HTTP status.
func solveStatus(kind solver.Kind) int {
	switch kind {
	case solver.KindUnknownFormula:
		return http.StatusNotFound
	case solver.KindNonFiniteResult:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadRequest
	}
}

// Solve handles POST /calculator/{formula}/solve
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)
	formulaID := chi.URLParam(r, "formula")

	ctx, span := tracer.Start(ctx, "calculator.solve",
		trace.WithAttributes(
			attribute.String("calculator.formula", formulaID),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	fail := func(kind, msg string, status int, err error) {
		observability.RecordError(ctx, span, logger, errorCounter, observability.Failure{
			Operation: formulaID,
			Message:   msg,
			Kind:      kind,
			Status:    status,
			Err:       err,
		}, w)
	}

	f, err := h.catalog.Lookup(formulaID)
	if err != nil {
		fail(string(solver.KindUnknownFormula), err.Error(), http.StatusNotFound, err)
		return
	}

	var body SolveRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		fail(KindInvalidRequest, "invalid request body", http.StatusBadRequest, err)
		return
	}

	req, err := body.request()
	if err != nil {
		fail(KindInvalidRequest, err.Error(), http.StatusBadRequest, err)
		return
	}

	if body.ProjectID != "" {
		if _, err := h.log.Project(body.ProjectID); err != nil {
			fail(KindProjectNotFound, err.Error(), http.StatusNotFound, err)
			return
		}
		span.SetAttributes(attribute.String("calculator.project", body.ProjectID))
	}

	req, err = h.refs.Prefill(f, req, body.Compound, body.Buffer)
	switch {
	case errors.Is(err, refdata.ErrCompoundNotFound), errors.Is(err, refdata.ErrBufferNotFound):
		fail(KindUnknownReference, err.Error(), http.StatusNotFound, err)
		return
	case err != nil:
		fail(KindInvalidRequest, err.Error(), http.StatusBadRequest, err)
		return
	}

	start := time.Now()
	res, err := solver.Solve(f, req)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		kind := solver.KindOf(err)
		fail(string(kind), err.Error(), solveStatus(kind), err)
		return
	}

	rec := history.NewRecord(f, req, res, h.now())
	if err := h.log.Append(ctx, body.ProjectID, rec); err != nil {
		if errors.Is(err, history.ErrProjectNotFound) {
			fail(KindProjectNotFound, err.Error(), http.StatusNotFound, err)
			return
		}
		fail(KindStorage, "could not record calculation", http.StatusInternalServerError, err)
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("formula", f.ID),
		attribute.String("variable", res.Variable),
	)
	solveCounter.Add(ctx, 1, attrs)
	solveHistogram.Record(ctx, elapsed, attrs)
	resultGauge.Record(ctx, res.Value, metric.WithAttributes(attribute.String("formula", f.ID)))

	span.AddEvent("solve.complete", trace.WithAttributes(
		attribute.String("variable", res.Variable),
		attribute.Float64("result", res.Value),
		attribute.Float64("duration_ms", elapsed),
	))
	span.SetAttributes(
		attribute.String("calculator.variable", res.Variable),
		attribute.Float64("calculator.result", res.Value),
		attribute.String("calculator.record", rec.ID),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("formula solved",
		zap.String("formula", f.ID),
		zap.String("variable", res.Variable),
		zap.String("text", res.Text),
		zap.String("record_id", rec.ID),
		zap.String("project_id", body.ProjectID),
		zap.String("request_id", requestID),
		zap.Float64("duration_ms", elapsed),
	)

	handlers.WriteJSON(w, http.StatusOK, SolveResponse{
		Formula:   res.Formula,
		Variable:  res.Variable,
		Label:     res.Label,
		Value:     res.Value,
		Exact:     res.Exact,
		Text:      res.Text,
		Unit:      res.Unit,
		Equation:  res.Equation,
		RecordID:  rec.ID,
		ProjectID: body.ProjectID,
		RequestID: requestID,
	})
}

