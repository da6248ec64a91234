package types

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the wire format of calendar days (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// DayStart truncates t to midnight UTC of its calendar day.
func DayStart(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD day in UTC.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, NewAppErrorWithDetails(ErrCodeValidationInvalidDate,
			"date must be formatted as YYYY-MM-DD", err, map[string]any{"value": s})
	}
	return t, nil
}

// Timeframe selects a window of score history relative to now.
type Timeframe string

const (
	TimeframeToday     Timeframe = "today"
	TimeframeThisWeek  Timeframe = "this_week"
	TimeframeThisMonth Timeframe = "this_month"
)

// Valid reports whether tf is a declared timeframe.
func (tf Timeframe) Valid() bool {
	switch tf {
	case TimeframeToday, TimeframeThisWeek, TimeframeThisMonth:
		return true
	}
	return false
}

// Range returns the half-open interval [start, end) covered by the timeframe.
// Weeks start on Monday. Unknown timeframes fall back to today.
func (tf Timeframe) Range(now time.Time) (time.Time, time.Time) {
	today := DayStart(now)
	switch tf {
	case TimeframeThisWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7)
	case TimeframeThisMonth:
		start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0)
	default:
		return today, today.AddDate(0, 0, 1)
	}
}

// FormatDuration renders seconds as "2h 5m", or "45m" under an hour.
// Negative input renders as "0m".
func FormatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int(seconds) / 60
	hours, minutes := total/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}
