package db

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/floor_report/backend/internal/models"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.GetLatestRun(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	base := time.Date(2026, 10, 19, 5, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := models.Run{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute), Status: models.RunRunning, WindowKey: "MANHA"}
		if err := s.CreateRun(ctx, run); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	finished := base.Add(time.Hour)
	done := models.Run{ID: "b", StartedAt: base.Add(time.Minute), FinishedAt: &finished, Status: models.RunSuccess, WindowKey: "MANHA", Report: []byte(`{"window":"MANHA"}`)}
	if err := s.FinishRun(ctx, done); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := s.FinishRun(ctx, models.Run{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown run, got %v", err)
	}

	got, err := s.GetRun(ctx, "b")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.RunSuccess || string(got.Report) != `{"window":"MANHA"}` || got.FinishedAt == nil {
		t.Fatalf("unexpected run: %+v", got)
	}

	latest, err := s.GetLatestRun(ctx)
	if err != nil || latest.ID != "c" {
		t.Fatalf("expected latest run c, got %+v %v", latest, err)
	}
	runs, _ := s.ListRuns(ctx, 2)
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected list: %+v", runs)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_ = s.CreateRun(ctx, models.Run{ID: "a", Report: []byte("{}")})
	got, _ := s.GetRun(ctx, "a")
	got.Report[0] = 'x'
	again, _ := s.GetRun(ctx, "a")
	if string(again.Report) != "{}" {
		t.Fatalf("expected stored report to be isolated from callers")
	}
}

func TestStoreIntegration(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := New(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	id := uuid.NewString()
	started := time.Now().UTC().Truncate(time.Microsecond)
	run := models.Run{ID: id, StartedAt: started, Status: models.RunRunning, WindowKey: "TARDE"}
	if err := s.CreateRun(ctx, run); err != nil {
		t.Fatalf("create: %v", err)
	}
	finished := started.Add(time.Second)
	run.FinishedAt = &finished
	run.Status = models.RunSuccess
	run.Inputs = []models.RunInput{{Kind: "audit", Name: "conf.csv", Fingerprint: "00ff", Rows: 3}}
	run.Report = []byte(`{"window":"TARDE"}`)
	if err := s.FinishRun(ctx, run); err != nil {
		t.Fatalf("finish: %v", err)
	}

	got, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != models.RunSuccess || len(got.Inputs) != 1 || got.Inputs[0].Name != "conf.csv" {
		t.Fatalf("unexpected run: %+v", got)
	}
	if _, err := s.GetRun(ctx, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
