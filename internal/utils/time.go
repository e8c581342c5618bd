package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate          = "2006-01-02"
	LayoutDateTime      = "2006-01-02 15:04:05"
	LayoutDateTimeLocal = "2006-01-02T15:04"
)

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// Today returns midnight UTC of the current day.
func Today() time.Time {
	return StartOfDay(NowUTC())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// StartOfWeek returns Monday 00:00 of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return StartOfDay(t).AddDate(0, 0, -offset)
}

// StartOfMonth returns the first day of t's month at 00:00.
func StartOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// ParseDate parses YYYY-MM-DD as UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(LayoutDate, strings.TrimSpace(s), time.UTC)
}

// ParseDateTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" and the HTML datetime-local format.
func ParseDateTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(LayoutDateTime, s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation(LayoutDateTimeLocal, s, time.UTC)
}

// FormatDate formats time to YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LayoutDate)
}

// FormatDateTime formats time to "YYYY-MM-DD HH:MM".
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}
