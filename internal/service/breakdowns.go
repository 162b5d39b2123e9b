package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

type counter struct {
	name   string
	routes int
	orders int
}

// sortCounters orders by routes descending, then name.
func sortCounters(cs []counter) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].routes != cs[j].routes {
			return cs[i].routes > cs[j].routes
		}
		return cs[i].name < cs[j].name
	})
}

func groupCounters(c Classification, key func(route string) string) []counter {
	idx := map[string]int{}
	var out []counter
	for _, route := range c.Expedited {
		k := key(route)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, counter{name: k})
		}
		out[i].routes++
		out[i].orders += c.Validated[route].FinalOrders
	}
	sortCounters(out)
	return out
}

// CarrierBreakdown counts expedited routes and final orders per carrier.
func CarrierBreakdown(c Classification) []models.CarrierRow {
	groups := groupCounters(c, func(route string) string {
		if a, ok := c.Assignment[route]; ok && strings.TrimSpace(a.Agency) != "" {
			return a.Agency
		}
		return models.LabelNotInformed
	})
	rows := make([]models.CarrierRow, 0, len(groups)+1)
	total := models.CarrierRow{Carrier: models.LabelTotal, Total: true}
	for _, g := range groups {
		rows = append(rows, models.CarrierRow{Carrier: g.name, Routes: g.routes, Orders: g.orders})
		total.Routes += g.routes
		total.Orders += g.orders
	}
	return append(rows, total)
}

// VehicleBreakdown counts expedited routes per normalized vehicle category.
// Without a vehicle column the table holds a placeholder row and a warning
// is returned.
func VehicleBreakdown(c Classification, columns []string, resolver VehicleColumnResolver) ([]models.VehicleRow, string) {
	if resolver == nil {
		resolver = NewKeywordColumnResolver(nil)
	}
	column, ok := resolver.Resolve(columns)
	if !ok {
		return []models.VehicleRow{
			{Category: models.LabelNotAvailable},
			{Category: models.LabelTotal, Total: true},
		}, fmt.Sprintf("coluna de tipo de veículo não encontrada nos dados de expedição; colunas disponíveis: %s", strings.Join(columns, ", "))
	}

	groups := groupCounters(c, func(route string) string {
		return NormalizeVehicle(c.Assignment[route].Field(column))
	})
	out := make([]models.VehicleRow, 0, len(groups)+1)
	total := models.VehicleRow{Category: models.LabelTotal, Total: true}
	for _, g := range groups {
		out = append(out, models.VehicleRow{Category: g.name, Routes: g.routes})
		total.Routes += g.routes
	}
	return append(out, total), ""
}

// HourlyBreakdown buckets expedited routes by the hour their validation
// ended. Routes without an end time are left out and counted in the warning.
func HourlyBreakdown(c Classification, loc *time.Location) ([]models.HourlyRow, string) {
	if loc == nil {
		loc = time.Local
	}
	buckets := map[time.Time]*models.HourlyRow{}
	var missing int
	for _, route := range c.Expedited {
		r := c.Validated[route]
		if r.ValidationEnd.IsZero() {
			missing++
			continue
		}
		end := r.ValidationEnd.In(loc)
		hour := time.Date(end.Year(), end.Month(), end.Day(), end.Hour(), 0, 0, 0, loc)
		b, ok := buckets[hour]
		if !ok {
			b = &models.HourlyRow{Hour: hour, Label: HourLabel(hour)}
			buckets[hour] = b
		}
		b.Routes++
		b.Orders += r.FinalOrders
	}

	rows := make([]models.HourlyRow, 0, len(buckets)+1)
	for _, b := range buckets {
		rows = append(rows, *b)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Hour.Before(rows[j].Hour) })

	total := models.HourlyRow{Label: models.LabelTotal, Total: true}
	for i := range rows {
		if i > 0 {
			rows[i].RoutesChangePct = pctChange(rows[i-1].Routes, rows[i].Routes)
			rows[i].OrdersChangePct = pctChange(rows[i-1].Orders, rows[i].Orders)
		}
		total.Routes += rows[i].Routes
		total.Orders += rows[i].Orders
		rows[i].CumulativeRoutes = total.Routes
		rows[i].CumulativeOrders = total.Orders
	}
	total.CumulativeRoutes = total.Routes
	total.CumulativeOrders = total.Orders

	var warning string
	if missing > 0 {
		warning = fmt.Sprintf("%d rota(s) expedida(s) sem horário de fim de validação fora da tabela por hora", missing)
	}
	return append(rows, total), warning
}

// HourLabel renders the one-hour span starting at hour, e.g. "15:00 às 16:00".
func HourLabel(hour time.Time) string {
	return fmt.Sprintf("%s às %s", hour.Format("15:04"), hour.Add(time.Hour).Format("15:04"))
}

func pctChange(prev, cur int) float64 {
	if prev == 0 {
		return 0
	}
	return float64(cur-prev) / float64(prev) * 100
}
