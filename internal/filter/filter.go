// Package filter selects subsets of journal trades by date range, tag set
// and symbol set. Filters compose by AND; absent filters are no-ops.
package filter

import (
	"time"

	"tradecraft/internal/domain"
)

// QuickRange is a convenience date window resolved against "now" at call
// time. Weeks start on Monday.
type QuickRange string

const (
	RangeAll       QuickRange = "all"
	RangeToday     QuickRange = "today"
	RangeYesterday QuickRange = "yesterday"
	RangeThisWeek  QuickRange = "this_week"
	RangeLastWeek  QuickRange = "last_week"
	RangeThisMonth QuickRange = "this_month"
	RangeLastMonth QuickRange = "last_month"
	RangeAllTime   QuickRange = "all_time"
)

// IsSingleDay reports whether the window spans one calendar day. Callers use
// this to pick hourly equity-curve buckets.
func (q QuickRange) IsSingleDay() bool {
	return q == RangeToday || q == RangeYesterday
}

// Resolve turns the quick range into a concrete [start, end] pair relative
// to now. ok is false for the unbounded ranges (all, all_time).
func (q QuickRange) Resolve(now time.Time) (start, end time.Time, ok bool) {
	day := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	endOfDay := func(t time.Time) time.Time {
		return day(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	// Monday-start week offset: Sunday counts as six days into the week.
	weekday := int(now.Weekday()+6) % 7
	weekStart := day(now).AddDate(0, 0, -weekday)

	switch q {
	case RangeToday:
		return day(now), endOfDay(now), true
	case RangeYesterday:
		y := now.AddDate(0, 0, -1)
		return day(y), endOfDay(y), true
	case RangeThisWeek:
		return weekStart, endOfDay(now), true
	case RangeLastWeek:
		lastStart := weekStart.AddDate(0, 0, -7)
		return lastStart, endOfDay(lastStart.AddDate(0, 0, 6)), true
	case RangeThisMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), endOfDay(now), true
	case RangeLastMonth:
		firstOfThis := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
		firstOfLast := firstOfThis.AddDate(0, -1, 0)
		return firstOfLast, firstOfThis.Add(-time.Nanosecond), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

// Spec describes which trades to keep. Zero-value fields are no-ops. If both
// QuickRange and explicit dates are set, the quick range wins.
type Spec struct {
	Start      time.Time
	End        time.Time
	Tags       []string
	Symbols    []string
	QuickRange QuickRange
}

// Window returns the effective [start, end] bounds of the spec relative to
// now. Zero bounds mean unbounded.
func (s Spec) Window(now time.Time) (start, end time.Time) {
	if s.QuickRange != "" && s.QuickRange != RangeAll && s.QuickRange != RangeAllTime {
		if qs, qe, ok := s.QuickRange.Resolve(now); ok {
			return qs, qe
		}
	}
	return s.Start, s.End
}

// Apply returns the trades matching the spec, in input order. The input is
// never mutated. Date comparison anchors on the closing time when the trade
// is closed, else the opening time, so open trades still show up in
// today/this-week views by entry date.
func Apply(trades []*domain.Trade, spec Spec, now time.Time) []*domain.Trade {
	start, end := spec.Window(now)

	out := make([]*domain.Trade, 0, len(trades))
	for _, t := range trades {
		anchor := t.AnchorTime()
		if !start.IsZero() && anchor.Before(start) {
			continue
		}
		if !end.IsZero() && anchor.After(end) {
			continue
		}
		if len(spec.Tags) > 0 && !t.Tags.HasAny(spec.Tags) {
			continue
		}
		if len(spec.Symbols) > 0 && !matchesSymbol(t.Symbol, spec.Symbols) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func matchesSymbol(symbol string, wanted []string) bool {
	for _, w := range wanted {
		if symbol == w {
			return true
		}
	}
	return false
}
