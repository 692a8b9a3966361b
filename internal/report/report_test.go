package report

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
	"time"

	"labcalc/internal/history"
	"labcalc/internal/solver"
)

var generated = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func projectWith(t *testing.T, n int) history.Project {
	t.Helper()
	p := history.Project{ID: "p1", Name: "Buffer prep", CreatedAt: generated.Add(-24 * time.Hour)}
	f := solver.Buffer()
	for i := 0; i < n; i++ {
		req := solver.Request{"pKa": "7.2", "baseConc": fmt.Sprint(i + 1), "acidConc": "1"}
		res, err := solver.Solve(f, req)
		if err != nil {
			t.Fatalf("solving sample %d: %v", i, err)
		}
		p.Calculations = append(p.Calculations, history.NewRecord(f, req, res, generated))
	}
	return p
}

func TestRenderWritesPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, projectWith(t, 3), generated); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", buf.Bytes()[:8])
	}
}

func TestRenderPaginates(t *testing.T) {
	single, err := build(projectWith(t, 1), generated)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if single.PageNo() != 1 {
		t.Fatalf("expected 1 page, got %d", single.PageNo())
	}

	many, err := build(projectWith(t, 30), generated)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if many.PageNo() < 3 {
		t.Fatalf("expected at least 3 pages for 30 records, got %d", many.PageNo())
	}
}

func TestRenderRejectsEmptyProject(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, history.Project{Name: "Empty"}, generated)
	if !errors.Is(err, ErrEmptyProject) {
		t.Fatalf("expected ErrEmptyProject, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("expected nothing written")
	}
}

func TestFilename(t *testing.T) {
	tests := map[string]string{
		"PCR buffers":      "PCR_buffers_calculations.pdf",
		"  cell   media  ": "cell_media_calculations.pdf",
		`a/b "c"`:          "a_b_c_calculations.pdf",
		"":                 "project_calculations.pdf",
	}
	for in, want := range tests {
		if got := Filename(in); got != want {
			t.Fatalf("Filename(%q): expected %q, got %q", in, want, got)
		}
	}
}
