package feeds

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

const (
	ColTaskID             = "Task ID"
	ColAgency             = "Agency"
	ColDriverName         = "Driver name"
	ColTrackingNumber     = "SPX tracking num"
	ColStatus             = "Status"
	ColCreateTime         = "Create Time"
	ColCompleteTime       = "Complete time"
	ColDriverAssignedTime = "Driver Assigned Time"
	ColAgencyAssignedTime = "Agency Assigned Time"
	ColDeliveryDate       = "Delivery Date"
)

var AssignmentRequired = []string{ColTaskID, ColAgency, ColDriverName, ColTrackingNumber, ColStatus}

// DecodeAssignments validates and decodes one assignment export.
// Optional timestamps that fail to parse are dropped with a warning.
func DecodeAssignments(r io.Reader, file string, loc *time.Location) (models.AssignmentTable, error) {
	t, err := readTable(r, file)
	if err != nil {
		return models.AssignmentTable{}, err
	}
	if missing := t.missing(AssignmentRequired...); len(missing) > 0 {
		return models.AssignmentTable{}, &ValidationError{File: file, Err: ErrMissingColumns, Detail: strings.Join(missing, ", ")}
	}
	if len(t.rows) == 0 {
		return models.AssignmentTable{}, &ValidationError{File: file, Err: ErrEmptyFile}
	}

	out := models.AssignmentTable{
		Columns: append([]string(nil), t.columns...),
		Records: make([]models.AssignmentRecord, 0, len(t.rows)),
	}
	badTimes := map[string]int{}
	parseTime := func(rec []string, col string) time.Time {
		tm, err := ParseTimestamp(t.get(rec, col), loc)
		if err != nil {
			badTimes[col]++
		}
		return tm
	}

	for i, rec := range t.rows {
		out.Records = append(out.Records, models.AssignmentRecord{
			TaskID:             t.get(rec, ColTaskID),
			Agency:             t.get(rec, ColAgency),
			DriverName:         t.get(rec, ColDriverName),
			TrackingNumber:     t.get(rec, ColTrackingNumber),
			Status:             t.get(rec, ColStatus),
			CreateTime:         parseTime(rec, ColCreateTime),
			CompleteTime:       parseTime(rec, ColCompleteTime),
			DriverAssignedTime: parseTime(rec, ColDriverAssignedTime),
			AgencyAssignedTime: parseTime(rec, ColAgencyAssignedTime),
			DeliveryDate:       t.get(rec, ColDeliveryDate),
			Fields:             t.fields(rec),
			Source:             file,
			Line:               t.lines[i],
		})
	}

	for _, col := range []string{ColCreateTime, ColCompleteTime, ColDriverAssignedTime, ColAgencyAssignedTime} {
		if n := badTimes[col]; n > 0 {
			out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %d valor(es) inválido(s) na coluna %s foram ignorados", file, n, col))
		}
	}
	return out, nil
}

// MergeAssignments concatenates tables in order. Columns are the union of all
// headers in first-seen order.
func MergeAssignments(tables ...models.AssignmentTable) models.AssignmentTable {
	var out models.AssignmentTable
	seen := map[string]bool{}
	for _, t := range tables {
		for _, c := range t.Columns {
			if !seen[c] {
				seen[c] = true
				out.Columns = append(out.Columns, c)
			}
		}
		out.Records = append(out.Records, t.Records...)
		out.Warnings = append(out.Warnings, t.Warnings...)
	}
	return out
}
