package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/floor_report/backend/internal/models"
)

func sampleReport() models.Report {
	return models.Report{
		Window: "MANHA",
		SummaryRows: []models.MetricRow{
			{Metric: "Quantidade de rotas programadas", Value: "3"},
		},
		Carriers: []models.CarrierRow{
			{Carrier: "Carrier, Inc", Routes: 1, Orders: 7},
			{Carrier: "Total", Routes: 1, Orders: 7, Total: true},
		},
		Vehicles: []models.VehicleRow{
			{Category: "Informação não disponível"},
			{Category: "Total", Total: true},
		},
		Hourly: []models.HourlyRow{
			{Label: "15:00 às 16:00", Routes: 1, Orders: 7},
			{Label: "Total", Routes: 1, Orders: 7, Total: true},
		},
		Operators: []models.OperatorRow{
			{Operator: "Ana", Conference: 10 * time.Minute},
			{Operator: "Média Geral", Conference: 10 * time.Minute, Total: true},
		},
		Floor: []models.FloorRow{
			{Route: "AT001", Carrier: "Carrier", Driver: "Bia", Packages: 10},
			{Route: "Total (1 rotas)", Packages: 10, Total: true},
		},
		Notes: "Fechamento às 09:00",
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := strings.Join([]string{
		"Métrica,Valor",
		"Quantidade de rotas programadas,3",
		"",
		"Rotas expedidas por transportadora",
		"Transportadora,Rotas Expedidas,Pedidos Expedidos",
		`"Carrier, Inc",1,7`,
		"Total,1,7",
		"",
		"Rotas expedidas por tipo de veículo",
		"Tipo de Veículo,Rotas Expedidas",
		"Informação não disponível,0",
		"Total,0",
		"",
		"Rotas e pedidos expedidos por hora",
		"Hora,Rotas Expedidas,Pedidos Expedidos",
		"15:00 às 16:00,1,7",
		"Total,1,7",
		"",
		"Média de tempo entre uma conferência e outra por usuário",
		"Operador,Conferência,Ociosidade",
		"Ana,00:10:00,",
		"Média Geral,00:10:00,",
		"",
		"Rotas NS - ficaram no piso",
		"Rota,Transportadora,Motorista,Pacotes",
		"AT001,Carrier,Bia,10",
		"Total (1 rotas),,,10",
		"",
		"Informações adicionais sobre o fechamento da expedição:",
		"Fechamento às 09:00",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Fatalf("unexpected CSV:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteCSVWithoutNotes(t *testing.T) {
	rep := sampleReport()
	rep.Notes = "   "
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rep); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(buf.String(), SectionNotes) {
		t.Fatalf("expected no notes section")
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	date := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	path, err := WriteFile(dir, sampleReport(), date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(path) != "resumo_expedicao_20261019_MANHA.csv" {
		t.Fatalf("unexpected file name %s", path)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), "Métrica,Valor\n") {
		t.Fatalf("unexpected content: %q", string(b))
	}
}
