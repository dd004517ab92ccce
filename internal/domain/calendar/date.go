package calendar

import "time"

const DateLayout = "2006-01-02"

// DateOf returns the calendar day of t (in t's own location) as UTC midnight.
// All date-only values in this service use that representation.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD string into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// MonthRange returns the first and last day of the month.
func MonthRange(year, month int) (time.Time, time.Time) {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}

// DaysInclusive counts calendar days in [from, to]; zero when to is before from.
func DaysInclusive(from, to time.Time) int {
	from, to = DateOf(from), DateOf(to)
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// EachDay calls fn for each day in [from, to].
func EachDay(from, to time.Time, fn func(day time.Time)) {
	for d := DateOf(from); !d.After(DateOf(to)); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// Clamp limits [from, to] to [lo, hi]. ok is false when they do not overlap.
func Clamp(from, to, lo, hi time.Time) (time.Time, time.Time, bool) {
	if from.Before(lo) {
		from = lo
	}
	if to.After(hi) {
		to = hi
	}
	return from, to, !to.Before(from)
}

// Today is the calendar day of now in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(now.In(loc))
}
