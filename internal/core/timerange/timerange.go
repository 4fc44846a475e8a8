// Package timerange resolves symbolic date ranges (today/week/month) into
// concrete local-time windows. All functions are pure; the caller supplies
// the clock.
package timerange

import (
	"fmt"
	"time"
)

// Range is a symbolic date range selector.
type Range string

// Supported symbolic ranges. Unknown values resolve as RangeToday.
const (
	RangeToday Range = "today"
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
)

// IsValid reports whether r is one of the supported symbolic ranges.
func (r Range) IsValid() bool {
	switch r {
	case RangeToday, RangeWeek, RangeMonth:
		return true
	default:
		return false
	}
}

// Resolve maps a symbolic range to a half-open [start, end) window in the
// local time of now.
//
//	today: midnight to next midnight
//	week:  Monday 00:00 to next Monday 00:00 (Sunday counts as day 7 of the
//	       previous week)
//	month: first of month 00:00 to first of next month 00:00
func Resolve(r Range, now time.Time) (start, end time.Time) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch r {
	case RangeWeek:
		// time.Weekday has Sunday == 0; shift so Monday starts the week.
		offset := int(now.Weekday()) - 1
		if offset < 0 {
			offset = 6
		}
		start = midnight.AddDate(0, 0, -offset)
		end = start.AddDate(0, 0, 7)
	case RangeMonth:
		start = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		end = start.AddDate(0, 1, 0)
	default:
		start = midnight
		end = start.AddDate(0, 0, 1)
	}

	return start, end
}

// FormatDateTime renders t as "2006-01-02 15:04:05", the format the upstream
// work-log API expects for its start/end query parameters.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatDate renders t as "2006-01-02".
func FormatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// WeekKey returns an ISO-8601 year-week identifier such as "2026-W02".
// Cache entries scoped by this key naturally roll over weekly.
func WeekKey(now time.Time) string {
	year, week := now.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
