package service

import (
	"strconv"
	"time"

	"github.com/floor_report/backend/internal/models"
	"github.com/floor_report/backend/internal/utils"
)

const (
	MetricProgrammedRoutes = "Quantidade de rotas programadas"
	MetricExpeditedRoutes  = "Quantidade de rotas expedidas"
	MetricProgrammedOrders = "Quantidade de pedidos programados"
	MetricExpeditedOrders  = "Quantidade de pedidos expedidos"
	MetricFloorRoutes      = "Quantidade de rotas que ficaram no piso"
	MetricExpeditionStart  = "Horário de início da expedição"
	MetricExpeditionEnd    = "Horário de fim da expedição"
	MetricAverageTurnover  = "Média de tempo de giro de bancada"
)

// Summarize computes the scalar metrics. Programmed figures cover the whole
// audit feed; expedited figures only the expedited routes.
func Summarize(c Classification, audit []models.AuditRecord) models.Summary {
	s := models.Summary{ProgrammedRoutes: len(c.Routes)}
	for _, r := range audit {
		if r.Route == "" {
			continue
		}
		s.ProgrammedOrders += r.InitialOrders
	}

	var durations []time.Duration
	for _, route := range c.Expedited {
		r := c.Validated[route]
		s.ExpeditedRoutes++
		s.ExpeditedOrders += r.FinalOrders
		if !r.ValidationStart.IsZero() && (s.ExpeditionStart.IsZero() || r.ValidationStart.Before(s.ExpeditionStart)) {
			s.ExpeditionStart = r.ValidationStart
		}
		if r.ValidationEnd.After(s.ExpeditionEnd) {
			s.ExpeditionEnd = r.ValidationEnd
		}
		if !r.ValidationStart.IsZero() && !r.ValidationEnd.IsZero() {
			durations = append(durations, r.ValidationEnd.Sub(r.ValidationStart))
		}
	}
	s.FloorRoutes = s.ProgrammedRoutes - s.ExpeditedRoutes
	s.AverageConference = meanDuration(durations)
	s.ConferenceSamples = len(durations)
	return s
}

// SummaryRows renders the summary as the "Métrica, Valor" table.
func SummaryRows(s models.Summary, loc *time.Location) []models.MetricRow {
	return []models.MetricRow{
		{Metric: MetricProgrammedRoutes, Value: strconv.Itoa(s.ProgrammedRoutes)},
		{Metric: MetricExpeditedRoutes, Value: strconv.Itoa(s.ExpeditedRoutes)},
		{Metric: MetricProgrammedOrders, Value: strconv.Itoa(s.ProgrammedOrders)},
		{Metric: MetricExpeditedOrders, Value: strconv.Itoa(s.ExpeditedOrders)},
		{Metric: MetricFloorRoutes, Value: strconv.Itoa(s.FloorRoutes)},
		{Metric: MetricExpeditionStart, Value: formatTimestamp(s.ExpeditionStart, loc)},
		{Metric: MetricExpeditionEnd, Value: formatTimestamp(s.ExpeditionEnd, loc)},
		{Metric: MetricAverageTurnover, Value: utils.FormatHMS(s.AverageConference)},
	}
}

func formatTimestamp(t time.Time, loc *time.Location) string {
	if !t.IsZero() && loc != nil {
		t = t.In(loc)
	}
	return utils.FormatClock(t)
}
