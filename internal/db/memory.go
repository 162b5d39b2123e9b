package db

import (
	"context"
	"sort"
	"sync"

	"github.com/floor_report/backend/internal/models"
)

// MemoryStore keeps runs in process. Used when no database is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]models.Run
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: map[string]models.Run{}}
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) CreateRun(ctx context.Context, run models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *MemoryStore) FinishRun(ctx context.Context, run models.Run) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[run.ID]; !ok {
		return ErrNotFound
	}
	m.runs[run.ID] = cloneRun(run)
	return nil
}

func (m *MemoryStore) GetRun(ctx context.Context, id string) (models.Run, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	run, ok := m.runs[id]
	if !ok {
		return models.Run{}, ErrNotFound
	}
	return cloneRun(run), nil
}

func (m *MemoryStore) GetLatestRun(ctx context.Context) (models.Run, error) {
	runs, _ := m.ListRuns(ctx, 1)
	if len(runs) == 0 {
		return models.Run{}, ErrNotFound
	}
	return runs[0], nil
}

func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	m.mu.RLock()
	out := make([]models.Run, 0, len(m.runs))
	for _, r := range m.runs {
		out = append(out, cloneRun(r))
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneRun(r models.Run) models.Run {
	if r.FinishedAt != nil {
		f := *r.FinishedAt
		r.FinishedAt = &f
	}
	r.Inputs = append([]models.RunInput(nil), r.Inputs...)
	r.Report = append([]byte(nil), r.Report...)
	return r
}
