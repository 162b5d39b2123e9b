// Package report renders a computed report as the sectioned expedition CSV.
package report

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/models"
)

const (
	SectionCarriers  = "Rotas expedidas por transportadora"
	SectionVehicles  = "Rotas expedidas por tipo de veículo"
	SectionHourly    = "Rotas e pedidos expedidos por hora"
	SectionOperators = "Média de tempo entre uma conferência e outra por usuário"
	SectionFloor     = "Rotas NS - ficaram no piso"
	SectionNotes     = "Informações adicionais sobre o fechamento da expedição:"
)

type row interface {
	Cells() []string
}

// WriteCSV writes the summary table followed by one titled section per
// breakdown, separated by blank lines.
func WriteCSV(w io.Writer, rep models.Report) error {
	bw := bufio.NewWriter(w)
	if err := writeTable(bw, models.SummaryColumns, rows(rep.SummaryRows)); err != nil {
		return err
	}
	sections := []struct {
		title   string
		columns []string
		rows    []row
	}{
		{SectionCarriers, models.CarrierColumns, rows(rep.Carriers)},
		{SectionVehicles, models.VehicleColumns, rows(rep.Vehicles)},
		{SectionHourly, models.HourlyColumns, rows(rep.Hourly)},
		{SectionOperators, models.OperatorColumns, rows(rep.Operators)},
		{SectionFloor, models.FloorColumns, rows(rep.Floor)},
	}
	for _, s := range sections {
		if _, err := fmt.Fprintf(bw, "\n%s\n", s.title); err != nil {
			return err
		}
		if err := writeTable(bw, s.columns, s.rows); err != nil {
			return err
		}
	}
	if notes := strings.TrimSpace(rep.Notes); notes != "" {
		if _, err := fmt.Fprintf(bw, "\n%s\n%s\n", SectionNotes, notes); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FileName returns resumo_expedicao_<YYYYMMDD>_<WINDOW>.csv.
func FileName(window string, date time.Time) string {
	name := "resumo_expedicao_" + date.Format("20060102")
	if window != "" {
		name += "_" + strings.ToUpper(window)
	}
	return name + ".csv"
}

// WriteFile writes the report into dir and returns the file path.
func WriteFile(dir string, rep models.Report, date time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(rep.Window, date))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, rep); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

func writeTable(w io.Writer, columns []string, rs []row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range rs {
		if err := cw.Write(r.Cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func rows[T row](in []T) []row {
	out := make([]row, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}
