// Package calendar lays out the month, week and day views of the dashboard.
package calendar

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// DateLayout is the storage form of card dates.
const DateLayout = "2006-01-02"

// View is one of the calendar layouts.
type View string

const (
	Month View = "month"
	Week  View = "week"
	Day   View = "day"
)

// ParseView maps a query value onto a View, falling back to Month.
func ParseView(s string) View {
	switch View(strings.ToLower(strings.TrimSpace(s))) {
	case Week:
		return Week
	case Day:
		return Day
	default:
		return Month
	}
}

// ParseWeekStart accepts "monday" or "sunday".
func ParseWeekStart(s string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "monday", "":
		return time.Monday, true
	case "sunday":
		return time.Sunday, true
	}
	return time.Monday, false
}

// Cell is one day of a grid.
type Cell struct {
	Date    time.Time
	InMonth bool
	Today   bool
}

// Key returns the cell date as YYYY-MM-DD.
func (c Cell) Key() string { return c.Date.Format(DateLayout) }

// Midnight truncates t to its calendar day, in UTC so that day arithmetic
// is never shifted by DST.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD value, returning fallback when it is empty or
// malformed.
func ParseDate(s string, fallback time.Time) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Midnight(fallback)
	}
	return t
}

// StartOfWeek returns the first day of the week holding date.
func StartOfWeek(date time.Time, weekStart time.Weekday) time.Time {
	d := Midnight(date)
	back := (int(d.Weekday()) - int(weekStart) + 7) % 7
	return d.AddDate(0, 0, -back)
}

// WeekDays returns the seven days of the week holding date.
func WeekDays(date time.Time, weekStart time.Weekday) []time.Time {
	first := StartOfWeek(date, weekStart)
	days := make([]time.Time, 7)
	for i := range days {
		days[i] = first.AddDate(0, 0, i)
	}
	return days
}

// MonthGrid returns the full weeks covering month, padded with the trailing
// days of the previous month and the leading days of the next one.
func MonthGrid(year int, month time.Month, weekStart time.Weekday, today time.Time) [][]Cell {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	todayKey := Midnight(today)

	var weeks [][]Cell
	for start := StartOfWeek(first, weekStart); !start.After(last); start = start.AddDate(0, 0, 7) {
		week := make([]Cell, 7)
		for i := range week {
			d := start.AddDate(0, 0, i)
			week[i] = Cell{Date: d, InMonth: d.Month() == month, Today: d.Equal(todayKey)}
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Range returns the inclusive first and last day shown by view around date.
func Range(view View, date time.Time, weekStart time.Weekday) (from, to time.Time) {
	d := Midnight(date)
	switch view {
	case Day:
		return d, d
	case Week:
		from = StartOfWeek(d, weekStart)
		return from, from.AddDate(0, 0, 6)
	default:
		grid := MonthGrid(d.Year(), d.Month(), weekStart, d)
		last := grid[len(grid)-1]
		return grid[0][0].Date, last[len(last)-1].Date
	}
}

// Next moves date one view forward.
func Next(view View, date time.Time) time.Time { return step(view, date, 1) }

// Prev moves date one view back.
func Prev(view View, date time.Time) time.Time { return step(view, date, -1) }

func step(view View, date time.Time, n int) time.Time {
	d := Midnight(date)
	switch view {
	case Day:
		return d.AddDate(0, 0, n)
	case Week:
		return d.AddDate(0, 0, 7*n)
	default:
		// first of month avoids Jan 31 + 1 month landing in March
		return time.Date(d.Year(), d.Month()+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Title is the heading of view at date.
func Title(view View, date time.Time, weekStart time.Weekday) string {
	d := Midnight(date)
	switch view {
	case Day:
		return d.Format("Monday 2 January 2006")
	case Week:
		from, to := Range(Week, d, weekStart)
		return from.Format("2 Jan") + " - " + to.Format("2 Jan 2006")
	default:
		return d.Format("January 2006")
	}
}

// Bucket groups items by their date key and sorts every day by start time.
// HH:MM strings sort correctly as text.
func Bucket[T any](items []T, date func(T) string, start func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, it := range items {
		k := date(it)
		out[k] = append(out[k], it)
	}
	for _, day := range out {
		slices.SortStableFunc(day, func(a, b T) int { return cmp.Compare(start(a), start(b)) })
	}
	return out
}
