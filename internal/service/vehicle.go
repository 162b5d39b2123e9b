package service

import (
	"strings"

	"github.com/floor_report/backend/internal/models"
)

// VehicleColumnResolver finds the assignment column holding the vehicle type.
type VehicleColumnResolver interface {
	Resolve(columns []string) (string, bool)
}

var (
	DefaultVehicleKeywords = []string{
		"vehicle", "veic", "veíc", "car", "carro", "truck", "caminhão", "caminhao",
		"tipo", "type", "model", "modelo", "transporte", "transport",
	}
	DefaultVehicleHeaders = []string{"Vehicle Type", "Tipo de Veículo", "Tipo de Veiculo", "Car Type", "Tipo", "Type"}
)

// KeywordColumnResolver prefers a column naming both a type and a vehicle,
// then any keyword match, then one of the literal headers.
type KeywordColumnResolver struct {
	Keywords []string
	Headers  []string
}

func NewKeywordColumnResolver(keywords []string) KeywordColumnResolver {
	if len(keywords) == 0 {
		keywords = DefaultVehicleKeywords
	}
	return KeywordColumnResolver{Keywords: keywords, Headers: DefaultVehicleHeaders}
}

func (r KeywordColumnResolver) Resolve(columns []string) (string, bool) {
	for _, col := range columns {
		if namesVehicleType(col) {
			return col, true
		}
	}
	for _, col := range columns {
		lc := strings.ToLower(col)
		for _, kw := range r.Keywords {
			if strings.Contains(lc, kw) {
				return col, true
			}
		}
	}
	for _, h := range r.Headers {
		for _, col := range columns {
			if col == h {
				return col, true
			}
		}
	}
	return "", false
}

// namesVehicleType holds regardless of the configured keywords.
func namesVehicleType(col string) bool {
	lc := strings.ToLower(col)
	if strings.Contains(lc, "tipo") && (strings.Contains(lc, "veic") || strings.Contains(lc, "veíc")) {
		return true
	}
	return strings.Contains(lc, "vehicle") && strings.Contains(lc, "type")
}

// NormalizeVehicle folds raw vehicle descriptions into report categories.
func NormalizeVehicle(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return models.LabelNotInformed
	}
	v = strings.ToUpper(v)
	for _, category := range []string{"PASSEIO", "FIORINO", "MOTO", "VAN"} {
		if strings.Contains(v, category) {
			return category
		}
	}
	return v
}
