// Package timeutil provides UTC day and week bucketing for daily and weekly
// achievement windows. All buckets are computed in UTC so that a user's
// "today" is the same on every node.
// No external dependencies - uses only standard library.
package timeutil

import (
	"fmt"
	"time"
)

// FormatDate is the canonical day-bucket key format (YYYY-MM-DD).
const FormatDate = "2006-01-02"

// StartOfDay returns 00:00:00 UTC of the given time's day.
func StartOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last nanosecond of the given time's UTC day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// StartOfWeek returns Monday 00:00:00 UTC of the given time's ISO week.
func StartOfWeek(t time.Time) time.Time {
	u := t.UTC()
	weekday := int(u.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return StartOfDay(u.AddDate(0, 0, -(weekday - 1)))
}

// EndOfWeek returns the last nanosecond of the given time's ISO week.
func EndOfWeek(t time.Time) time.Time {
	return StartOfWeek(t).AddDate(0, 0, 7).Add(-time.Nanosecond)
}

// DayKey returns the day-bucket key (YYYY-MM-DD) for the given time.
func DayKey(t time.Time) string {
	return t.UTC().Format(FormatDate)
}

// WeekKey returns the ISO week-bucket key (YYYY-Www) for the given time.
func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// IsSameDay reports whether two times fall on the same UTC day.
func IsSameDay(t1, t2 time.Time) bool {
	a, b := t1.UTC(), t2.UTC()
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsSameWeek reports whether two times fall in the same ISO week.
func IsSameWeek(t1, t2 time.Time) bool {
	y1, w1 := t1.UTC().ISOWeek()
	y2, w2 := t2.UTC().ISOWeek()
	return y1 == y2 && w1 == w2
}

// IsConsecutiveDay reports whether t2 is the UTC day after t1. This is the
// core check for study-day streak continuity.
func IsConsecutiveDay(t1, t2 time.Time) bool {
	return IsSameDay(t1.UTC().AddDate(0, 0, 1), t2)
}

// DaysBetween returns the absolute number of whole UTC days between two times.
func DaysBetween(t1, t2 time.Time) int {
	days := int(StartOfDay(t2).Sub(StartOfDay(t1)).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// DaysSince returns the number of whole UTC days from t until now.
func DaysSince(t time.Time) int {
	return int(StartOfDay(time.Now()).Sub(StartOfDay(t)).Hours() / 24)
}

// IsToday reports whether t falls on the current UTC day.
func IsToday(t time.Time) bool {
	return IsSameDay(t, time.Now())
}

// IsThisWeek reports whether t falls in the current ISO week.
func IsThisWeek(t time.Time) bool {
	return IsSameWeek(t, time.Now())
}
