package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalendar_WorkingDays(t *testing.T) {
	cal := New([]time.Weekday{time.Saturday, time.Sunday}, []Holiday{
		{Date: day("2026-02-17"), Name: "Lunar New Year"},
	})

	// February 2026: 28 days, 8 weekend days, one holiday on a Tuesday.
	first, last := MonthRange(2026, 2)
	assert.Equal(t, 19, cal.WorkingDays(first, last))

	assert.True(t, cal.IsNonWorkingDay(day("2026-02-01")), "sunday")
	assert.True(t, cal.IsNonWorkingDay(day("2026-02-17")), "holiday")
	assert.False(t, cal.IsNonWorkingDay(day("2026-02-16")))

	h, ok := cal.Holiday(day("2026-02-17"))
	require.True(t, ok)
	assert.Equal(t, "Lunar New Year", h.Name)
}

func TestDaysInclusive(t *testing.T) {
	assert.Equal(t, 3, DaysInclusive(day("2026-02-10"), day("2026-02-12")))
	assert.Equal(t, 1, DaysInclusive(day("2026-02-10"), day("2026-02-10")))
	assert.Equal(t, 0, DaysInclusive(day("2026-02-12"), day("2026-02-10")))
	assert.Equal(t, 2, DaysInclusive(day("2026-12-31"), day("2027-01-01")))
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	late := time.Date(2026, 2, 1, 23, 45, 0, 0, loc)
	assert.Equal(t, day("2026-02-01"), DateOf(late))
}

func TestClamp(t *testing.T) {
	first, last := MonthRange(2026, 2)
	from, to, ok := Clamp(day("2026-01-30"), day("2026-02-02"), first, last)
	require.True(t, ok)
	assert.Equal(t, day("2026-02-01"), from)
	assert.Equal(t, day("2026-02-02"), to)

	_, _, ok = Clamp(day("2026-03-01"), day("2026-03-02"), first, last)
	assert.False(t, ok)
}

func TestParseWeekdays(t *testing.T) {
	days, err := ParseWeekdays([]string{"saturday", " Sun ", ""})
	require.NoError(t, err)
	assert.Equal(t, []time.Weekday{time.Saturday, time.Sunday}, days)

	_, err = ParseWeekdays([]string{"funday"})
	assert.Error(t, err)
}
