package db

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floor_report/backend/internal/models"
)

var ErrNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS report_runs (
	id          UUID PRIMARY KEY,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ,
	status      TEXT NOT NULL,
	window_key  TEXT NOT NULL,
	inputs      JSONB NOT NULL DEFAULT '[]'::jsonb,
	report      JSONB,
	error       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS report_runs_started_at_idx ON report_runs (started_at DESC);
`

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the runs table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schema)
	return err
}

func (s *Store) CreateRun(ctx context.Context, run models.Run) error {
	inputs, err := json.Marshal(nonNilInputs(run.Inputs))
	if err != nil {
		return err
	}
	_, err = s.Pool.Exec(ctx, `
		INSERT INTO report_runs (id, started_at, status, window_key, inputs)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.StartedAt, run.Status, run.WindowKey, inputs)
	return err
}

func (s *Store) FinishRun(ctx context.Context, run models.Run) error {
	inputs, err := json.Marshal(nonNilInputs(run.Inputs))
	if err != nil {
		return err
	}
	var report []byte
	if len(run.Report) > 0 {
		report = run.Report
	}
	tag, err := s.Pool.Exec(ctx, `
		UPDATE report_runs
		SET status = $1, finished_at = $2, inputs = $3, report = $4, error = $5
		WHERE id = $6
	`, run.Status, run.FinishedAt, inputs, report, run.Error, run.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const runColumns = `id::text, started_at, finished_at, status, window_key, inputs, report, error`

func (s *Store) GetRun(ctx context.Context, id string) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+runColumns+` FROM report_runs WHERE id::text = $1`, id)
	return scanRun(row)
}

func (s *Store) GetLatestRun(ctx context.Context) (models.Run, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+runColumns+` FROM report_runs ORDER BY started_at DESC LIMIT 1`)
	return scanRun(row)
}

func (s *Store) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.Pool.Query(ctx, `SELECT `+runColumns+` FROM report_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func scanRun(row pgx.Row) (models.Run, error) {
	var (
		run      models.Run
		finished *time.Time
		inputs   []byte
		report   []byte
	)
	err := row.Scan(&run.ID, &run.StartedAt, &finished, &run.Status, &run.WindowKey, &inputs, &report, &run.Error)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Run{}, ErrNotFound
	}
	if err != nil {
		return models.Run{}, err
	}
	run.FinishedAt = finished
	run.Report = report
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, &run.Inputs); err != nil {
			return models.Run{}, err
		}
	}
	return run, nil
}

func nonNilInputs(in []models.RunInput) []models.RunInput {
	if in == nil {
		return []models.RunInput{}
	}
	return in
}
