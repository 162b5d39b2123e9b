package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/floor_report/backend/internal/feeds"
	"github.com/floor_report/backend/internal/models"
)

var ErrProcessing = errors.New("erro inesperado ao gerar o relatório")

// RunStore records processing runs.
type RunStore interface {
	CreateRun(ctx context.Context, run models.Run) error
	FinishRun(ctx context.Context, run models.Run) error
	GetRun(ctx context.Context, id string) (models.Run, error)
	GetLatestRun(ctx context.Context) (models.Run, error)
	ListRuns(ctx context.Context, limit int) ([]models.Run, error)
	Ping(ctx context.Context) error
}

type ProcessingService struct {
	Store           RunStore
	Logger          zerolog.Logger
	Windows         []models.Window
	DefaultWindow   string
	Location        *time.Location
	VehicleColumns  VehicleColumnResolver
	DuplicatePolicy DuplicatePolicy
	Workers         int
	// Now defaults to time.Now.
	Now func() time.Time
}

type ProcessRequest struct {
	Assignments []feeds.Source
	Audit       feeds.Source
	Window      string
	Notes       string
}

// Process validates the feeds, builds the report and records the run. The
// returned run carries the final status even when err is non-nil.
func (s *ProcessingService) Process(ctx context.Context, req ProcessRequest) (models.Run, models.Report, error) {
	now := s.now()
	windowKey := req.Window
	if windowKey == "" {
		windowKey = s.DefaultWindow
	}
	resolver := NewWindowResolver(s.Windows, s.Location)
	w, err := resolver.Lookup(windowKey)
	if err != nil {
		return models.Run{}, models.Report{}, err
	}

	run := models.Run{
		ID:        uuid.NewString(),
		StartedAt: now.UTC(),
		Status:    models.RunRunning,
		WindowKey: w.Key,
	}
	logger := s.Logger.With().Str("run_id", run.ID).Str("window", w.Key).Logger()
	if err := s.Store.CreateRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("failed to create run")
	}
	logger.Info().Int("assignment_files", len(req.Assignments)).Msg("processing started")

	audit, auditInput, err := feeds.LoadAudit(req.Audit, s.Location)
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}
	assign, inputs, err := feeds.LoadAssignments(ctx, req.Assignments, s.Location, s.Workers)
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}
	run.Inputs = append([]models.RunInput{auditInput}, inputs...)

	report, err := s.build(assign, audit, Options{
		Windows:         s.Windows,
		CurrentWindow:   w.Key,
		Now:             now,
		Location:        s.Location,
		VehicleColumns:  s.VehicleColumns,
		DuplicatePolicy: s.DuplicatePolicy,
		Notes:           req.Notes,
	})
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}
	for _, warning := range report.Warnings {
		logger.Warn().Str("warning", warning).Msg("report warning")
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return s.fail(ctx, logger, run, err)
	}
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunSuccess
	run.Report = payload
	if err := s.Store.FinishRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("failed to finish run")
	}
	logger.Info().
		Int("expedited", report.Summary.ExpeditedRoutes).
		Int("on_floor", report.Summary.FloorRoutes).
		Int("warnings", len(report.Warnings)).
		Msg("processing finished")
	return run, report, nil
}

// build runs the engine and turns a panic into ErrProcessing.
func (s *ProcessingService) build(assign models.AssignmentTable, audit models.AuditTable, opts Options) (report models.Report, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error().Interface("panic", r).Msg("report build panicked")
			report = models.Report{}
			err = fmt.Errorf("%w: %v", ErrProcessing, r)
		}
	}()
	return BuildReport(assign, audit, opts)
}

func (s *ProcessingService) fail(ctx context.Context, logger zerolog.Logger, run models.Run, cause error) (models.Run, models.Report, error) {
	finished := s.now().UTC()
	run.FinishedAt = &finished
	run.Status = models.RunFailed
	run.Error = cause.Error()
	if err := s.Store.FinishRun(ctx, run); err != nil {
		logger.Error().Err(err).Msg("failed to finish run")
	}
	var verr *feeds.ValidationError
	if errors.As(cause, &verr) {
		logger.Warn().Err(cause).Msg("input validation failed")
	} else {
		logger.Error().Err(cause).Msg("processing failed")
	}
	return run, models.Report{}, cause
}

func (s *ProcessingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
