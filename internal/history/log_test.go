package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	promtest "github.com/prometheus/client_golang/prometheus/testutil"

	"labcalc/internal/kvstore"
	"labcalc/internal/solver"
)

func sampleRecord(t *testing.T, n int) Record {
	t.Helper()
	f := solver.Dilution()
	req := solver.Request{"c1": "10", "c2": "1", "v2": fmt.Sprint(100 + n)}
	res, err := solver.Solve(f, req)
	if err != nil {
		t.Fatalf("solving sample: %v", err)
	}
	return NewRecord(f, req, res, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
}

func openLog(t *testing.T, store kvstore.Store, opts ...Option) *Log {
	t.Helper()
	l, err := Open(context.Background(), store, opts...)
	if err != nil {
		t.Fatalf("opening log: %v", err)
	}
	return l
}

func TestNewRecordSnapshotsSolve(t *testing.T) {
	rec := sampleRecord(t, 0)

	if rec.ID == "" || rec.Formula != "dilution" || rec.FormulaName != "Dilution" {
		t.Fatalf("unexpected record identity: %+v", rec)
	}
	if rec.Result.Variable != "v1" || rec.Result.Value != "10.000000" {
		t.Fatalf("unexpected outcome: %+v", rec.Result)
	}
	if rec.Inputs["v2"] != "100" {
		t.Fatalf("expected inputs snapshot, got %v", rec.Inputs)
	}
}

func TestAppendBoundsRecentHistory(t *testing.T) {
	l := openLog(t, kvstore.NewMemory())
	ctx := context.Background()
	before := promtest.ToFloat64(recordsEvicted)

	var ids []string
	for i := 0; i < DefaultLimit+1; i++ {
		rec := sampleRecord(t, i)
		ids = append(ids, rec.ID)
		if err := l.Append(ctx, "", rec); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	recent, err := l.List(Recent)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recent) != DefaultLimit {
		t.Fatalf("expected %d records, got %d", DefaultLimit, len(recent))
	}
	if recent[0].ID != ids[1] {
		t.Fatalf("expected oldest record evicted, first is %s", recent[0].ID)
	}
	if recent[len(recent)-1].ID != ids[DefaultLimit] {
		t.Fatalf("expected newest record last")
	}
	if got := promtest.ToFloat64(recordsEvicted) - before; got != 1 {
		t.Fatalf("expected 1 eviction, got %v", got)
	}
}

func TestWithLimit(t *testing.T) {
	l := openLog(t, kvstore.NewMemory(), WithLimit(2))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.Append(ctx, "", sampleRecord(t, i)); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	recent, _ := l.List(Recent)
	if len(recent) != 2 || l.Limit() != 2 {
		t.Fatalf("expected 2 records with limit 2, got %d (limit %d)", len(recent), l.Limit())
	}
}

func TestProjectLifecycle(t *testing.T) {
	created := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := created
	l := openLog(t, kvstore.NewMemory(), WithClock(func() time.Time { return clock }))
	ctx := context.Background()

	if _, err := l.CreateProject(ctx, "   "); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}

	p, err := l.CreateProject(ctx, "  PCR buffers ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "PCR buffers" || !p.CreatedAt.Equal(created) {
		t.Fatalf("unexpected project: %+v", p)
	}

	clock = created.Add(time.Hour)
	first, second := sampleRecord(t, 1), sampleRecord(t, 2)
	for _, rec := range []Record{first, second} {
		if err := l.Append(ctx, p.ID, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	calcs, err := l.List(p.ID)
	if err != nil {
		t.Fatalf("list project: %v", err)
	}
	if len(calcs) != 2 || calcs[0].ID != first.ID || calcs[1].ID != second.ID {
		t.Fatalf("expected records in arrival order, got %+v", calcs)
	}

	recent, _ := l.List(Recent)
	if len(recent) != 2 {
		t.Fatalf("expected project appends to land in recent history too, got %d", len(recent))
	}

	got, _ := l.Project(p.ID)
	if !got.UpdatedAt.Equal(clock) {
		t.Fatalf("expected updated_at %v, got %v", clock, got.UpdatedAt)
	}

	if err := l.Remove(ctx, p.ID, first.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := l.Remove(ctx, p.ID, first.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	calcs, _ = l.List(p.ID)
	if len(calcs) != 1 || calcs[0].ID != second.ID {
		t.Fatalf("expected only the second record, got %+v", calcs)
	}

	if err := l.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := l.Project(p.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if recent, _ := l.List(Recent); len(recent) != 2 {
		t.Fatalf("expected recent history to survive project deletion, got %d", len(recent))
	}
}

func TestAppendToMissingProjectLeavesStateUntouched(t *testing.T) {
	l := openLog(t, kvstore.NewMemory())

	err := l.Append(context.Background(), "nope", sampleRecord(t, 0))
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
	if recent, _ := l.List(Recent); len(recent) != 0 {
		t.Fatalf("expected no recent records, got %d", len(recent))
	}
	if _, err := l.List("nope"); !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}

func TestRemoveFromRecent(t *testing.T) {
	l := openLog(t, kvstore.NewMemory())
	ctx := context.Background()

	rec := sampleRecord(t, 0)
	if err := l.Append(ctx, "", rec); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := l.Remove(ctx, Recent, rec.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := l.Remove(ctx, Recent, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestStatePersistsAcrossOpen(t *testing.T) {
	store := kvstore.NewMemory()
	ctx := context.Background()

	l := openLog(t, store)
	p, err := l.CreateProject(ctx, "Media")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec := sampleRecord(t, 0)
	if err := l.Append(ctx, p.ID, rec); err != nil {
		t.Fatalf("append: %v", err)
	}

	raw, err := store.Get(ctx, StateKey)
	if err != nil {
		t.Fatalf("reading blob: %v", err)
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(raw, &blob); err != nil {
		t.Fatalf("decoding blob: %v", err)
	}
	if _, ok := blob["projects"]; !ok {
		t.Fatal("expected projects in persisted blob")
	}
	if _, ok := blob["recent_history"]; !ok {
		t.Fatal("expected recent_history in persisted blob")
	}

	reopened := openLog(t, store)
	calcs, err := reopened.List(p.ID)
	if err != nil {
		t.Fatalf("list after reopen: %v", err)
	}
	if len(calcs) != 1 || calcs[0].ID != rec.ID || calcs[0].Equation != rec.Equation {
		t.Fatalf("expected persisted record, got %+v", calcs)
	}
	if got := len(reopened.Projects()); got != 1 {
		t.Fatalf("expected 1 project after reopen, got %d", got)
	}
}

func TestOpenTrimsOversizedHistory(t *testing.T) {
	store := kvstore.NewMemory()
	var state State
	for i := 0; i < 5; i++ {
		state.RecentHistory = append(state.RecentHistory, sampleRecord(t, i))
	}
	data, _ := json.Marshal(state)
	if err := store.Set(context.Background(), StateKey, data); err != nil {
		t.Fatalf("seeding store: %v", err)
	}

	l := openLog(t, store, WithLimit(3))
	recent, _ := l.List(Recent)
	if len(recent) != 3 || recent[0].ID != state.RecentHistory[2].ID {
		t.Fatalf("expected the newest 3 records, got %d", len(recent))
	}
}

func TestOpenRejectsCorruptState(t *testing.T) {
	store := kvstore.NewMemory()
	if err := store.Set(context.Background(), StateKey, []byte("{not json")); err != nil {
		t.Fatalf("seeding store: %v", err)
	}
	if _, err := Open(context.Background(), store); err == nil {
		t.Fatal("expected decode error")
	}
}

type failingStore struct {
	kvstore.Store
}

func (failingStore) Set(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestFailedFlushDoesNotCommit(t *testing.T) {
	l := openLog(t, failingStore{Store: kvstore.NewMemory()})
	before := promtest.ToFloat64(flushFailures)

	if err := l.Append(context.Background(), "", sampleRecord(t, 0)); err == nil {
		t.Fatal("expected flush error")
	}
	if recent, _ := l.List(Recent); len(recent) != 0 {
		t.Fatalf("expected nothing committed, got %d records", len(recent))
	}
	if _, err := l.CreateProject(context.Background(), "x"); err == nil {
		t.Fatal("expected flush error on create")
	}
	if len(l.Projects()) != 0 {
		t.Fatal("expected no projects committed")
	}
	if got := promtest.ToFloat64(flushFailures) - before; got != 2 {
		t.Fatalf("expected 2 flush failures, got %v", got)
	}
}
