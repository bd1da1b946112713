package model

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// DateOf keeps the calendar date of t as seen in t's own location and
// returns it at midnight UTC, so dates from any zone compare with Equal.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(raw string) (*time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return nil, fmt.Errorf("model: invalid date %q: %w", raw, err)
	}
	return &d, nil
}

func FormatDate(d *time.Time) string {
	if d == nil {
		return ""
	}
	return d.Format(DateLayout)
}

// ResolveDate understands the relative words used by the quick-add syntax on
// top of YYYY-MM-DD.
func ResolveDate(raw string, now time.Time) (*time.Time, error) {
	today := DateOf(now)
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return nil, nil
	case "today":
		return &today, nil
	case "tomorrow":
		d := today.AddDate(0, 0, 1)
		return &d, nil
	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return &d, nil
	}
	return ParseDate(raw)
}
