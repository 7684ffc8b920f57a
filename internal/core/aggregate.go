package core

import (
	"sort"
	"time"
)

// Aggregate filters cleaned collections to the given scope, groups them
// by calendar month and sums the amounts. The result is ascending by
// month with one point per month. An empty scope or no matching rows
// yields an empty slice; absence of data is a valid state, not an
// error. Collection rows whose CNS is not in scope are skipped, rows
// referencing offices unknown to the registry are summed like any
// other.
func Aggregate(collections []Collection, scope Scope) []Point {
	totals := make(map[time.Time]int64)
	for _, c := range collections {
		if !scope.Contains(c.CNS) {
			continue
		}
		totals[MonthOf(c.Period)] += c.Amount.Cents
	}

	points := make([]Point, 0, len(totals))
	for month, cents := range totals {
		points = append(points, Point{Month: month, Total: Money{Cents: cents}})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Month.Before(points[j].Month) })
	return points
}

// Metric is the headline figure derived from an aggregated series.
type Metric struct {
	Month time.Time // latest month in the series
	Total Money     // total for that month

	HasDelta bool
	Delta    Money // latest minus previous point
	// SpanMonths is the calendar distance between the two points the
	// delta compares. Missing months are not zero-filled, so a value
	// greater than 1 means the delta crosses a gap and should be
	// presented as non-adjacent.
	SpanMonths int
}

// NonAdjacent reports whether the delta compares months that are not
// consecutive in the calendar.
func (m Metric) NonAdjacent() bool {
	return m.HasDelta && m.SpanMonths > 1
}

// DeriveMetric computes the latest total and the month-over-month delta
// from an aggregated series. It returns false when the series is empty;
// with a single point the metric carries no delta.
func DeriveMetric(points []Point) (Metric, bool) {
	if len(points) == 0 {
		return Metric{}, false
	}
	last := points[len(points)-1]
	m := Metric{Month: last.Month, Total: last.Total}
	if len(points) < 2 {
		return m, true
	}
	prev := points[len(points)-2]
	m.HasDelta = true
	m.Delta = Money{Cents: last.Total.Cents - prev.Total.Cents}
	m.SpanMonths = monthsBetween(prev.Month, last.Month)
	return m, true
}

func monthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}
