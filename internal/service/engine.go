package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

var ErrInvariant = errors.New("reconciliation invariant violated")

// Options carries everything the engine would otherwise read from the
// environment. The engine keeps no state between calls.
type Options struct {
	Windows         []models.Window
	CurrentWindow   string
	Now             time.Time
	Location        *time.Location
	VehicleColumns  VehicleColumnResolver
	DuplicatePolicy DuplicatePolicy
	Notes           string
}

// BuildReport reconciles the assignment and audit feeds into the report
// tables. Inputs are expected to have passed feed validation.
func BuildReport(assign models.AssignmentTable, audit models.AuditTable, opts Options) (models.Report, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	now = now.In(loc)

	rep := models.Report{
		Window:      opts.CurrentWindow,
		GeneratedAt: now,
		Notes:       strings.TrimSpace(opts.Notes),
	}
	rep.Warnings = append(rep.Warnings, assign.Warnings...)
	rep.Warnings = append(rep.Warnings, audit.Warnings...)

	records := make([]models.AssignmentRecord, len(assign.Records))
	copy(records, assign.Records)
	if len(opts.Windows) > 0 {
		resolver := NewWindowResolver(opts.Windows, loc)
		w, err := resolver.Lookup(opts.CurrentWindow)
		if err != nil {
			return models.Report{}, err
		}
		rep.Window = w.Key
		rep.WindowDisplay = WindowDisplay(w)
		cross, warnings := annotateWindows(records, resolver, w.Key, now)
		rep.CrossWindow = cross
		rep.Warnings = append(rep.Warnings, warnings...)
	}

	policy := opts.DuplicatePolicy
	if policy == "" {
		policy = PolicyFirst
	}
	c := Classify(records, audit.Records, policy)
	if c.SkippedBlank > 0 {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%d linha(s) da conferência sem AT/TO ignorada(s)", c.SkippedBlank))
	}

	rep.Summary = Summarize(c, audit.Records)
	if err := checkPartition(rep.Summary, c); err != nil {
		return models.Report{}, err
	}
	rep.SummaryRows = SummaryRows(rep.Summary, loc)

	rep.Carriers = CarrierBreakdown(c)

	vehicles, warning := VehicleBreakdown(c, assign.Columns, opts.VehicleColumns)
	rep.Vehicles = vehicles
	rep.Warnings = appendWarning(rep.Warnings, warning)

	hourly, warning := HourlyBreakdown(c, loc)
	rep.Hourly = hourly
	rep.Warnings = appendWarning(rep.Warnings, warning)

	rep.Operators = OperatorBreakdown(c)
	rep.Floor = FloorLedger(c)
	rep.NotInAudit = c.NotInAudit
	return rep, nil
}

// checkPartition compares the recomputed floor count with the classified set.
func checkPartition(s models.Summary, c Classification) error {
	if s.FloorRoutes != len(c.OnFloor) {
		return fmt.Errorf("%w: %d rotas no piso calculadas, %d classificadas", ErrInvariant, s.FloorRoutes, len(c.OnFloor))
	}
	return nil
}

func appendWarning(ws []string, w string) []string {
	if w == "" {
		return ws
	}
	return append(ws, w)
}
