package service

import (
	"fmt"
	"strings"

	"github.com/floor_report/backend/internal/models"
)

// FloorLedger lists every on-the-floor route with its carrier, driver and
// package count, followed by a total row.
func FloorLedger(c Classification) []models.FloorRow {
	rows := make([]models.FloorRow, 0, len(c.OnFloor)+1)
	total := models.FloorRow{Total: true}
	for _, route := range c.OnFloor {
		row := models.FloorRow{
			Route:    route,
			Carrier:  models.LabelNotAssigned,
			Driver:   models.LabelNotAssigned,
			Packages: floorPackages(c, route),
			Reason:   c.FloorReason(route),
		}
		if a, ok := c.Assignment[route]; ok {
			row.Carrier = assignedOr(a.Agency)
			row.Driver = assignedOr(a.DriverName)
			if row.Driver != models.LabelNotAssigned {
				row.Driver = assignedOr(titleCase(row.Driver))
			}
		}
		total.Packages += row.Packages
		rows = append(rows, row)
	}
	total.Route = fmt.Sprintf("%s (%d rotas)", models.LabelTotal, len(c.OnFloor))
	return append(rows, total)
}

func floorPackages(c Classification, route string) int {
	if r, ok := c.FirstAudit[route]; ok {
		if c.Class[route] == ClassReprocessing {
			return r.FinalOrders
		}
		return r.InitialOrders
	}
	distinct := map[string]bool{}
	for _, a := range c.AssignmentRows[route] {
		distinct[a.TrackingNumber] = true
	}
	return len(distinct)
}

func assignedOr(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || strings.EqualFold(v, "nan") {
		return models.LabelNotAssigned
	}
	return v
}
