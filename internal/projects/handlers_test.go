package projects

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"labcalc/internal/history"
	"labcalc/internal/kvstore"
	"labcalc/internal/solver"
	"labcalc/internal/testutil"
)

func TestMain(m *testing.M) {
	if err := InitMetrics(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestRouter(t *testing.T) (chi.Router, *history.Log) {
	t.Helper()
	log, err := history.Open(context.Background(), kvstore.NewMemory())
	if err != nil {
		t.Fatalf("opening history: %v", err)
	}
	r := chi.NewRouter()
	NewHandler(log).RegisterRoutes(r)
	return r, log
}

func solved(t *testing.T, v2 string) history.Record {
	t.Helper()
	f := solver.Dilution()
	req := solver.Request{"c1": "10", "c2": "1", "v2": v2}
	res, err := solver.Solve(f, req)
	if err != nil {
		t.Fatalf("solving: %v", err)
	}
	return history.NewRecord(f, req, res, time.Now())
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	return testutil.ExecuteRequest(testutil.NewRequest(method, path, body), r)
}

func TestHistoryNewestFirst(t *testing.T) {
	r, log := newTestRouter(t)
	ctx := context.Background()

	first, second := solved(t, "100"), solved(t, "200")
	for _, rec := range []history.Record{first, second} {
		if err := log.Append(ctx, "", rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	w := do(r, http.MethodGet, "/history", "")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var body HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &body)
	if len(body.Records) != 2 || body.Records[0].ID != second.ID || body.Limit != history.DefaultLimit {
		t.Fatalf("expected newest record first, got %+v", body)
	}

	w = do(r, http.MethodDelete, "/history/"+first.ID, "")
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/history/"+first.ID, "")
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestProjectLifecycle(t *testing.T) {
	r, log := newTestRouter(t)
	ctx := context.Background()

	w := do(r, http.MethodPost, "/projects", `{"name":"Cell culture"}`)
	testutil.CheckResponseCode(t, http.StatusCreated, w.Code)

	var p history.Project
	testutil.DecodeJSONBody(t, w.Body, &p)
	if p.Name != "Cell culture" || w.Header().Get("Location") != "/projects/"+p.ID {
		t.Fatalf("unexpected created project: %+v", p)
	}

	rec := solved(t, "100")
	if err := log.Append(ctx, p.ID, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	w = do(r, http.MethodGet, "/projects", "")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	var list struct {
		Projects []Summary `json:"projects"`
	}
	testutil.DecodeJSONBody(t, w.Body, &list)
	if len(list.Projects) != 1 || list.Projects[0].CalculationCount != 1 {
		t.Fatalf("expected one project with one calculation, got %+v", list.Projects)
	}

	w = do(r, http.MethodGet, "/projects/"+p.ID, "")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	w = do(r, http.MethodDelete, "/projects/"+p.ID+"/calculations/"+rec.ID, "")
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/projects/"+p.ID, "")
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodGet, "/projects/"+p.ID, "")
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)
}

func TestCreateProjectRejectsBadInput(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name string
		body string
		kind string
	}{
		{name: "bad json", body: `{"name":`, kind: KindInvalidRequest},
		{name: "blank name", body: `{"name":"  "}`, kind: KindInvalidRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := do(r, http.MethodPost, "/projects", tc.body)
			testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

			testutil.CheckErrorKind(t, w.Body, tc.kind)
		})
	}
}

func TestMissingProjectAndRecord(t *testing.T) {
	r, log := newTestRouter(t)
	p, _ := log.CreateProject(context.Background(), "Empty")

	tests := []struct {
		method, path string
		status       int
		kind         string
	}{
		{http.MethodGet, "/projects/nope", http.StatusNotFound, KindProjectNotFound},
		{http.MethodDelete, "/projects/nope", http.StatusNotFound, KindProjectNotFound},
		{http.MethodDelete, "/projects/nope/calculations/x", http.StatusNotFound, KindProjectNotFound},
		{http.MethodDelete, "/projects/" + p.ID + "/calculations/x", http.StatusNotFound, KindRecordNotFound},
		{http.MethodGet, "/projects/nope/report.pdf", http.StatusNotFound, KindProjectNotFound},
		{http.MethodGet, "/projects/" + p.ID + "/report.pdf", http.StatusConflict, KindEmptyProject},
	}
	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := do(r, tc.method, tc.path, "")
			testutil.CheckResponseCode(t, tc.status, w.Code)

			testutil.CheckErrorKind(t, w.Body, tc.kind)
		})
	}
}

func TestReportDownload(t *testing.T) {
	r, log := newTestRouter(t)
	ctx := context.Background()

	p, err := log.CreateProject(ctx, "PCR  mix")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := log.Append(ctx, p.ID, solved(t, "100")); err != nil {
		t.Fatalf("append: %v", err)
	}

	w := do(r, http.MethodGet, "/projects/"+p.ID+"/report.pdf", "")
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != `attachment; filename="PCR_mix_calculations.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Fatal("expected a PDF body")
	}
}
