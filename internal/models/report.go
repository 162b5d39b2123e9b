package models

import (
	"strconv"
	"time"

	"github.com/floor_report/backend/internal/utils"
)

const (
	LabelTotal          = "Total"
	LabelNotInformed    = "Não informado"
	LabelNotAssigned    = "Não atribuído"
	LabelNotAvailable   = "Informação não disponível"
	LabelOverallAverage = "Média Geral"
)

var (
	SummaryColumns  = []string{"Métrica", "Valor"}
	CarrierColumns  = []string{"Transportadora", "Rotas Expedidas", "Pedidos Expedidos"}
	VehicleColumns  = []string{"Tipo de Veículo", "Rotas Expedidas"}
	HourlyColumns   = []string{"Hora", "Rotas Expedidas", "Pedidos Expedidos"}
	OperatorColumns = []string{"Operador", "Conferência", "Ociosidade"}
	FloorColumns    = []string{"Rota", "Transportadora", "Motorista", "Pacotes"}
)

type Summary struct {
	ProgrammedRoutes  int           `json:"programmed_routes"`
	ProgrammedOrders  int           `json:"programmed_orders"`
	ExpeditedRoutes   int           `json:"expedited_routes"`
	ExpeditedOrders   int           `json:"expedited_orders"`
	FloorRoutes       int           `json:"floor_routes"`
	ExpeditionStart   time.Time     `json:"expedition_start"`
	ExpeditionEnd     time.Time     `json:"expedition_end"`
	AverageConference time.Duration `json:"average_conference"`
	ConferenceSamples int           `json:"conference_samples"`
}

type MetricRow struct {
	Metric string `json:"metric"`
	Value  string `json:"value"`
}

func (r MetricRow) Cells() []string {
	return []string{r.Metric, r.Value}
}

type CarrierRow struct {
	Carrier string `json:"carrier"`
	Routes  int    `json:"routes"`
	Orders  int    `json:"orders"`
	Total   bool   `json:"total,omitempty"`
}

func (r CarrierRow) Cells() []string {
	return []string{r.Carrier, strconv.Itoa(r.Routes), strconv.Itoa(r.Orders)}
}

type VehicleRow struct {
	Category string `json:"category"`
	Routes   int    `json:"routes"`
	Total    bool   `json:"total,omitempty"`
}

func (r VehicleRow) Cells() []string {
	return []string{r.Category, strconv.Itoa(r.Routes)}
}

type HourlyRow struct {
	Hour             time.Time `json:"hour"`
	Label            string    `json:"label"`
	Routes           int       `json:"routes"`
	Orders           int       `json:"orders"`
	RoutesChangePct  float64   `json:"routes_change_pct"`
	OrdersChangePct  float64   `json:"orders_change_pct"`
	CumulativeRoutes int       `json:"cumulative_routes"`
	CumulativeOrders int       `json:"cumulative_orders"`
	Total            bool      `json:"total,omitempty"`
}

func (r HourlyRow) Cells() []string {
	return []string{r.Label, strconv.Itoa(r.Routes), strconv.Itoa(r.Orders)}
}

type OperatorRow struct {
	Operator   string        `json:"operator"`
	Conference time.Duration `json:"conference"`
	Idle       time.Duration `json:"idle"`
	HasIdle    bool          `json:"has_idle"`
	Total      bool          `json:"total,omitempty"`
}

func (r OperatorRow) Cells() []string {
	idle := ""
	if r.HasIdle {
		idle = utils.FormatHMS(r.Idle)
	}
	return []string{r.Operator, utils.FormatHMS(r.Conference), idle}
}

type FloorRow struct {
	Route    string `json:"route"`
	Carrier  string `json:"carrier"`
	Driver   string `json:"driver"`
	Packages int    `json:"packages"`
	Reason   string `json:"reason,omitempty"`
	Total    bool   `json:"total,omitempty"`
}

func (r FloorRow) Cells() []string {
	return []string{r.Route, r.Carrier, r.Driver, strconv.Itoa(r.Packages)}
}

type Report struct {
	Window        string        `json:"window"`
	WindowDisplay string        `json:"window_display"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Summary       Summary       `json:"summary"`
	SummaryRows   []MetricRow   `json:"summary_rows"`
	Carriers      []CarrierRow  `json:"carriers"`
	Vehicles      []VehicleRow  `json:"vehicles"`
	Hourly        []HourlyRow   `json:"hourly"`
	Operators     []OperatorRow `json:"operators"`
	Floor         []FloorRow    `json:"floor"`
	NotInAudit    []string      `json:"not_in_audit"`
	CrossWindow   []string      `json:"cross_window"`
	Warnings      []string      `json:"warnings"`
	Notes         string        `json:"notes,omitempty"`
}
