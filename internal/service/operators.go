package service

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/floor_report/backend/internal/models"
)

var operatorPrefix = regexp.MustCompile(`^\[.*?\]`)

// OperatorName strips the "[ops123]" badge prefix and title-cases the rest.
func OperatorName(raw string) string {
	name := strings.TrimSpace(operatorPrefix.ReplaceAllString(raw, ""))
	return titleCase(name)
}

func titleCase(s string) string {
	return cases.Title(language.BrazilianPortuguese).String(s)
}

// OperatorBreakdown computes per-operator mean conference time and mean idle
// time between consecutive validations, over expedited routes. Rows are sorted
// by conference time descending with the overall average last.
func OperatorBreakdown(c Classification) []models.OperatorRow {
	groups := map[string][]models.AuditRecord{}
	var order []string
	for _, route := range c.Expedited {
		r := c.Validated[route]
		if strings.TrimSpace(r.Operator) == "" {
			continue
		}
		if _, ok := groups[r.Operator]; !ok {
			order = append(order, r.Operator)
		}
		groups[r.Operator] = append(groups[r.Operator], r)
	}
	if len(order) == 0 {
		return nil
	}

	rows := make([]models.OperatorRow, 0, len(order)+1)
	for _, op := range order {
		recs := groups[op]
		sort.SliceStable(recs, func(i, j int) bool {
			return recs[i].ValidationStart.Before(recs[j].ValidationStart)
		})
		row := models.OperatorRow{Operator: OperatorName(op)}

		var conf []time.Duration
		for _, r := range recs {
			if !r.ValidationStart.IsZero() && !r.ValidationEnd.IsZero() {
				conf = append(conf, r.ValidationEnd.Sub(r.ValidationStart))
			}
		}
		row.Conference = meanDuration(conf).Truncate(time.Second)

		var idle []time.Duration
		for i := 0; i+1 < len(recs); i++ {
			if recs[i].ValidationEnd.IsZero() || recs[i+1].ValidationStart.IsZero() {
				continue
			}
			idle = append(idle, recs[i+1].ValidationStart.Sub(recs[i].ValidationEnd))
		}
		if len(idle) > 0 {
			row.Idle = meanDuration(idle).Truncate(time.Second)
			row.HasIdle = true
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Conference != rows[j].Conference {
			return rows[i].Conference > rows[j].Conference
		}
		return rows[i].Operator < rows[j].Operator
	})

	var conf, idle []time.Duration
	for _, r := range rows {
		conf = append(conf, r.Conference)
		if r.HasIdle {
			idle = append(idle, r.Idle)
		}
	}
	total := models.OperatorRow{
		Operator:   models.LabelOverallAverage,
		Conference: meanDuration(conf).Truncate(time.Second),
		Total:      true,
	}
	if len(idle) > 0 {
		total.Idle = meanDuration(idle).Truncate(time.Second)
		total.HasIdle = true
	}
	return append(rows, total)
}

func meanDuration(ds []time.Duration) time.Duration {
	if len(ds) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range ds {
		sum += d
	}
	return sum / time.Duration(len(ds))
}
