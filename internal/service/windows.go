package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/floor_report/backend/internal/feeds"
	"github.com/floor_report/backend/internal/models"
)

var ErrUnknownWindow = errors.New("unknown window")

// WindowResolver decides which shift a delivery date belongs to. Windows are
// scanned in configured order; the first one is the morning shift.
type WindowResolver struct {
	Windows  []models.Window
	Location *time.Location
}

func NewWindowResolver(windows []models.Window, loc *time.Location) WindowResolver {
	if loc == nil {
		loc = time.Local
	}
	return WindowResolver{Windows: windows, Location: loc}
}

// Lookup returns the window with the given key.
func (r WindowResolver) Lookup(key string) (models.Window, error) {
	for _, w := range r.Windows {
		if strings.EqualFold(w.Key, key) {
			return w, nil
		}
	}
	return models.Window{}, fmt.Errorf("%w: %q", ErrUnknownWindow, key)
}

func (r WindowResolver) morning() string {
	if len(r.Windows) == 0 {
		return ""
	}
	return r.Windows[0].Key
}

// Resolve classifies a delivery date against the current window.
//
//   - past date: morning window, cross when current is not morning.
//   - today: the window containing now, else the next window to start.
//   - future date, or today after every window: (current, true).
//
// An unparseable date yields (current, false) and an error for the caller to log.
func (r WindowResolver) Resolve(deliveryDate, current string, now time.Time) (string, bool, error) {
	now = now.In(r.Location)
	day, err := parseDeliveryDate(deliveryDate, r.Location)
	if err != nil {
		return current, false, err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, r.Location)

	switch {
	case day.Before(today):
		m := r.morning()
		return m, current != m, nil
	case day.Equal(today):
		secs := secondsOfDay(now)
		for _, w := range r.Windows {
			if w.Start*60 <= secs && secs <= w.End*60 {
				return w.Key, false, nil
			}
		}
		for _, w := range r.Windows {
			if w.Start*60 > secs {
				return w.Key, current != w.Key, nil
			}
		}
	}
	return current, true, nil
}

// Current returns the window containing now, if any.
func (r WindowResolver) Current(now time.Time) (models.Window, bool) {
	secs := secondsOfDay(now.In(r.Location))
	for _, w := range r.Windows {
		if w.Start*60 <= secs && secs <= w.End*60 {
			return w, true
		}
	}
	return models.Window{}, false
}

// WindowDisplay renders "Tarde - 13:00 às 18:00".
func WindowDisplay(w models.Window) string {
	return fmt.Sprintf("%s - %s às %s", w.Name, clock(w.Start), clock(w.End))
}

func clock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func secondsOfDay(t time.Time) int {
	return t.Hour()*3600 + t.Minute()*60 + t.Second()
}

func parseDeliveryDate(s string, loc *time.Location) (time.Time, error) {
	tm, err := feeds.ParseTimestamp(s, loc)
	if err != nil {
		return time.Time{}, err
	}
	if tm.IsZero() {
		return time.Time{}, errors.New("empty delivery date")
	}
	tm = tm.In(loc)
	return time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, loc), nil
}

// annotateWindows labels every record that carries a delivery date and
// returns the task IDs that belong to another window.
func annotateWindows(records []models.AssignmentRecord, r WindowResolver, current string, now time.Time) ([]string, []string) {
	var (
		cross    []string
		warnings []string
		bad      int
		seen     = map[string]bool{}
	)
	for i := range records {
		rec := &records[i]
		if strings.TrimSpace(rec.DeliveryDate) == "" {
			continue
		}
		key, isCross, err := r.Resolve(rec.DeliveryDate, current, now)
		if err != nil {
			bad++
		}
		rec.Window = key
		if w, err := r.Lookup(key); err == nil {
			rec.WindowName = w.Name
		}
		rec.CrossWindow = isCross
		if isCross && rec.TaskID != "" && !seen[rec.TaskID] {
			seen[rec.TaskID] = true
			cross = append(cross, rec.TaskID)
		}
	}
	if bad > 0 {
		warnings = append(warnings, fmt.Sprintf("%d data(s) de entrega inválida(s), janela atual assumida", bad))
	}
	return cross, warnings
}
