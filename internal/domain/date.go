package domain

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	DateLayout,
}

// ParseDate accepts a calendar date or a timestamp, with or without zone.
// Values without a zone are read as UTC.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", raw)
}

// ParseOptionalDate returns nil for an empty value.
func ParseOptionalDate(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// CalendarDay truncates t to midnight UTC of its calendar day.
func CalendarDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// BeforeDay reports whether a falls on an earlier calendar day than b.
func BeforeDay(a, b time.Time) bool {
	return CalendarDay(a).Before(CalendarDay(b))
}

// SameDay reports whether two optional dates denote the same calendar day.
func SameDay(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return CalendarDay(*a).Equal(CalendarDay(*b))
}

// FormatDate renders an optional date as YYYY-MM-DD, or "" when absent.
func FormatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(DateLayout)
}
