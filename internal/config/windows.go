package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/floor_report/backend/internal/models"
)

const (
	WindowMorning   = "MANHA"
	WindowAfternoon = "TARDE"
	WindowNight     = "NOITE"
)

// DefaultWindows mirrors the three shifts the warehouse runs out of the box.
func DefaultWindows() []models.Window {
	return []models.Window{
		{Key: WindowMorning, Name: "Manhã (Madrugada)", Start: 4 * 60, End: 9 * 60},
		{Key: WindowAfternoon, Name: "Tarde", Start: 13 * 60, End: 18 * 60},
		{Key: WindowNight, Name: "Noite", Start: 19 * 60, End: 23 * 60},
	}
}

// WindowsFile keeps shift windows in file order. Rule matching scans windows
// in that order, so a plain map would not do.
//
//	MANHA:
//	  nome: Manhã (Madrugada)
//	  inicio: "04:00"
//	  fim: "09:00"
type WindowsFile struct {
	Items []models.Window
}

type windowEntry struct {
	Name  string `yaml:"nome"`
	Start string `yaml:"inicio"`
	End   string `yaml:"fim"`
}

func (f *WindowsFile) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("windows: expected mapping, got kind %d", value.Kind)
	}
	items := make([]models.Window, 0, len(value.Content)/2)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := strings.TrimSpace(value.Content[i].Value)
		if key == "" {
			continue
		}
		var entry windowEntry
		if err := value.Content[i+1].Decode(&entry); err != nil {
			return fmt.Errorf("windows: %s: %w", key, err)
		}
		start, err := ParseClock(entry.Start)
		if err != nil {
			return fmt.Errorf("windows: %s inicio: %w", key, err)
		}
		end, err := ParseClock(entry.End)
		if err != nil {
			return fmt.Errorf("windows: %s fim: %w", key, err)
		}
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = key
		}
		items = append(items, models.Window{Key: key, Name: name, Start: start, End: end})
	}
	f.Items = items
	return nil
}

// LoadWindows reads the windows file. A missing file yields the defaults.
func LoadWindows(path string) ([]models.Window, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultWindows(), nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultWindows(), nil
	}
	if err != nil {
		return nil, err
	}
	return ParseWindows(b)
}

func ParseWindows(b []byte) ([]models.Window, error) {
	var f WindowsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	if len(f.Items) == 0 {
		return nil, errors.New("windows: no window configured")
	}
	return f.Items, nil
}

// ParseClock converts "HH:MM" into minutes after midnight.
func ParseClock(s string) (int, error) {
	tm, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}
	return tm.Hour()*60 + tm.Minute(), nil
}
