package utils

import (
	"fmt"
	"time"
)

// FormatHMS renders a duration as HH:MM:SS without wrapping hours at 24.
func FormatHMS(d time.Duration) string {
	sign := ""
	total := int64(d / time.Second)
	if total < 0 {
		sign = "-"
		total = -total
	}
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, total/3600, (total%3600)/60, total%60)
}

// FormatClock renders the time-of-day part of t, or "" for the zero time.
func FormatClock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("15:04:05")
}
