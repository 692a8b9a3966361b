// Package history keeps the recent-calculation log and named projects,
// persisted as a single blob through a kvstore.Store.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"labcalc/internal/kvstore"
)

// Recent is the container id of the unscoped recent history.
const Recent = "recent"

// DefaultLimit bounds the recent history.
const DefaultLimit = 50

// StateKey is the store key the state blob is kept under.
const StateKey = "labcalc-state"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRecordNotFound  = errors.New("record not found")
	ErrEmptyName       = errors.New("project name is empty")
)

// Option configures a Log.
type Option func(*Log)

// WithLimit bounds the recent history to n records. Values below 1 are ignored.
func WithLimit(n int) Option {
	return func(l *Log) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithClock replaces time.Now for project timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Log is the append-only calculation log. It is safe for concurrent use.
//
// Every mutation writes the whole state to the store and only takes effect
// in memory once that write succeeds.
type Log struct {
	mu    sync.RWMutex
	store kvstore.Store
	state State
	limit int
	now   func() time.Time
}

// Open loads the persisted state from store, starting empty when none exists.
func Open(ctx context.Context, store kvstore.Store, opts ...Option) (*Log, error) {
	l := &Log{store: store, limit: DefaultLimit, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}

	data, err := store.Get(ctx, StateKey)
	switch {
	case errors.Is(err, kvstore.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("load history state: %w", err)
	default:
		if err := json.Unmarshal(data, &l.state); err != nil {
			return nil, fmt.Errorf("decode history state: %w", err)
		}
	}

	if n := len(l.state.RecentHistory); n > l.limit {
		l.state.RecentHistory = l.state.RecentHistory[n-l.limit:]
	}
	projectCount.Set(float64(len(l.state.Projects)))
	return l, nil
}

func (l *Log) commit(ctx context.Context, next State) error {
	data, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode history state: %w", err)
	}
	if err := l.store.Set(ctx, StateKey, data); err != nil {
		flushFailures.Inc()
		return fmt.Errorf("flush history state: %w", err)
	}
	l.state = next
	projectCount.Set(float64(len(next.Projects)))
	return nil
}

func findProject(projects []Project, id string) int {
	for i, p := range projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func findRecord(records []Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// Append adds rec to the recent history and, when projectID is not empty,
// to the end of that project.
func (l *Log) Append(ctx context.Context, projectID string, rec Record) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.clone()

	if projectID != "" {
		i := findProject(next.Projects, projectID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, projectID)
		}
		next.Projects[i].Calculations = append(next.Projects[i].Calculations, rec)
		next.Projects[i].UpdatedAt = l.now().UTC()
	}

	next.RecentHistory = append(next.RecentHistory, rec)
	evicted := 0
	if n := len(next.RecentHistory); n > l.limit {
		evicted = n - l.limit
		next.RecentHistory = next.RecentHistory[evicted:]
	}

	if err := l.commit(ctx, next); err != nil {
		return err
	}

	recordsAppended.WithLabelValues(Recent).Inc()
	if projectID != "" {
		recordsAppended.WithLabelValues("project").Inc()
	}
	recordsEvicted.Add(float64(evicted))
	return nil
}

// Remove deletes one record from the container named by containerID.
func (l *Log) Remove(ctx context.Context, containerID, recordID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.clone()

	if containerID == Recent {
		i := findRecord(next.RecentHistory, recordID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
		}
		next.RecentHistory = append(next.RecentHistory[:i], next.RecentHistory[i+1:]...)
	} else {
		p := findProject(next.Projects, containerID)
		if p < 0 {
			return fmt.Errorf("%w: %s", ErrProjectNotFound, containerID)
		}
		calcs := next.Projects[p].Calculations
		i := findRecord(calcs, recordID)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrRecordNotFound, recordID)
		}
		next.Projects[p].Calculations = append(calcs[:i], calcs[i+1:]...)
		next.Projects[p].UpdatedAt = l.now().UTC()
	}

	if err := l.commit(ctx, next); err != nil {
		return err
	}
	recordsRemoved.WithLabelValues(containerKind(containerID)).Inc()
	return nil
}

// List returns the records of a container in arrival order.
func (l *Log) List(containerID string) ([]Record, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if containerID == Recent {
		return copyRecords(l.state.RecentHistory), nil
	}
	i := findProject(l.state.Projects, containerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, containerID)
	}
	return copyRecords(l.state.Projects[i].Calculations), nil
}

// CreateProject adds an empty project called name.
func (l *Log) CreateProject(ctx context.Context, name string) (Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Project{}, ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now().UTC()
	p := Project{
		ID:           uuid.New().String(),
		Name:         name,
		Calculations: []Record{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	next := l.state.clone()
	next.Projects = append(next.Projects, p)
	if err := l.commit(ctx, next); err != nil {
		return Project{}, err
	}
	return p.clone(), nil
}

// DeleteProject removes a project and its records. Copies of those records in
// the recent history are kept.
func (l *Log) DeleteProject(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state.clone()
	i := findProject(next.Projects, id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	next.Projects = append(next.Projects[:i], next.Projects[i+1:]...)
	return l.commit(ctx, next)
}

// Project returns a copy of the project with the given id.
func (l *Log) Project(id string) (Project, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	i := findProject(l.state.Projects, id)
	if i < 0 {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return l.state.Projects[i].clone(), nil
}

// Projects returns copies of every project in creation order.
func (l *Log) Projects() []Project {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Project, len(l.state.Projects))
	for i, p := range l.state.Projects {
		out[i] = p.clone()
	}
	return out
}

// Limit is the recent-history bound.
func (l *Log) Limit() int { return l.limit }
