package feeds

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

const (
	ColRoute            = "AT/TO"
	ColValidationStatus = "AT/TO Validation Status"
	ColFinalOrders      = "Total Final Orders Inside AT/TO"
	ColInitialOrders    = "Total Initial Orders Inside AT/TO"
	ColValidationStart  = "Validation Start Time"
	ColValidationEnd    = "Validation End Time"
	ColOperator         = "Validation Operator"
)

var AuditRequired = []string{ColRoute, ColValidationStatus, ColFinalOrders, ColInitialOrders, ColValidationStart, ColValidationEnd}

// DecodeAudit validates and decodes the warehouse validation export.
// Checks run in a fixed order so the reported cause is stable: columns, empty
// file, validated routes, timestamps, final order counts.
func DecodeAudit(r io.Reader, file string, loc *time.Location) (models.AuditTable, error) {
	t, err := readTable(r, file)
	if err != nil {
		return models.AuditTable{}, err
	}
	if missing := t.missing(AuditRequired...); len(missing) > 0 {
		return models.AuditTable{}, &ValidationError{File: file, Err: ErrMissingColumns, Detail: strings.Join(missing, ", ")}
	}
	if len(t.rows) == 0 {
		return models.AuditTable{}, &ValidationError{File: file, Err: ErrEmptyFile}
	}

	out := models.AuditTable{
		Columns:     append([]string(nil), t.columns...),
		Records:     make([]models.AuditRecord, 0, len(t.rows)),
		HasOperator: t.has(ColOperator),
	}

	var (
		anyValidated bool
		dateErr      *ValidationError
		numberErr    *ValidationError
		badInitial   int
	)
	for i, rec := range t.rows {
		line := t.lines[i]
		start, err := ParseTimestamp(t.get(rec, ColValidationStart), loc)
		if err != nil && dateErr == nil {
			dateErr = &ValidationError{File: file, Column: ColValidationStart, Line: line, Err: ErrInvalidDate}
		}
		end, err := ParseTimestamp(t.get(rec, ColValidationEnd), loc)
		if err != nil && dateErr == nil {
			dateErr = &ValidationError{File: file, Column: ColValidationEnd, Line: line, Err: ErrInvalidDate}
		}
		final, ok := ParseCount(t.get(rec, ColFinalOrders))
		if !ok && numberErr == nil {
			numberErr = &ValidationError{File: file, Line: line, Err: ErrInvalidNumber, Detail: t.get(rec, ColFinalOrders)}
		}
		initial, ok := ParseCount(t.get(rec, ColInitialOrders))
		if !ok {
			badInitial++
		}

		r := models.AuditRecord{
			Route:            t.get(rec, ColRoute),
			ValidationStatus: t.get(rec, ColValidationStatus),
			InitialOrders:    initial,
			FinalOrders:      final,
			ValidationStart:  start,
			ValidationEnd:    end,
			Operator:         t.get(rec, ColOperator),
			Line:             line,
		}
		if r.Validated() {
			anyValidated = true
		}
		out.Records = append(out.Records, r)
	}

	if !anyValidated {
		return models.AuditTable{}, &ValidationError{File: file, Err: ErrNoValidatedRoutes}
	}
	if dateErr != nil {
		return models.AuditTable{}, dateErr
	}
	if numberErr != nil {
		return models.AuditTable{}, numberErr
	}
	if badInitial > 0 {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %d valor(es) não numérico(s) em %s considerados como 0", file, badInitial, ColInitialOrders))
	}
	if !out.HasOperator {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: coluna %s ausente, métricas por operador indisponíveis", file, ColOperator))
	}
	return out, nil
}
