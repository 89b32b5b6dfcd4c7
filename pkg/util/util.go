package util

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// StartOfDay returns midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay returns the last millisecond of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Millisecond)
}

// AtClock returns t's day in loc at hour:minute with seconds zeroed.
func AtClock(t time.Time, hour, minute int, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, loc)
}

// ParseDate parses YYYY-MM-DD, "today" or "tomorrow" relative to now.
func ParseDate(s string, now time.Time, loc *time.Location) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "today":
		return StartOfDay(now, loc), nil
	case "tomorrow":
		return StartOfDay(now, loc).AddDate(0, 0, 1), nil
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return d, nil
}

// ParseClock parses HH:MM and places it on day's date.
func ParseClock(s string, day time.Time, loc *time.Location) (time.Time, error) {
	c, err := time.Parse(ClockLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want HH:MM): %w", s, err)
	}
	return AtClock(day, c.Hour(), c.Minute(), loc), nil
}
