package calendar

import (
	"fmt"
	"strings"
	"time"
)

type Holiday struct {
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// Calendar answers working-day questions for a date window.
type Calendar struct {
	weeklyOff map[time.Weekday]bool
	holidays  map[time.Time]Holiday
}

func New(weeklyOff []time.Weekday, holidays []Holiday) Calendar {
	c := Calendar{
		weeklyOff: make(map[time.Weekday]bool, len(weeklyOff)),
		holidays:  make(map[time.Time]Holiday, len(holidays)),
	}
	for _, wd := range weeklyOff {
		c.weeklyOff[wd] = true
	}
	for _, h := range holidays {
		c.holidays[DateOf(h.Date)] = h
	}
	return c
}

func (c Calendar) IsWeeklyOff(date time.Time) bool {
	return c.weeklyOff[DateOf(date).Weekday()]
}

func (c Calendar) Holiday(date time.Time) (Holiday, bool) {
	h, ok := c.holidays[DateOf(date)]
	return h, ok
}

// IsNonWorkingDay is true for weekly-offs and declared holidays.
func (c Calendar) IsNonWorkingDay(date time.Time) bool {
	if c.IsWeeklyOff(date) {
		return true
	}
	_, ok := c.Holiday(date)
	return ok
}

// WorkingDays counts working days in [from, to].
func (c Calendar) WorkingDays(from, to time.Time) int {
	n := 0
	EachDay(from, to, func(d time.Time) {
		if !c.IsNonWorkingDay(d) {
			n++
		}
	})
	return n
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays parses names like "saturday" or "sun".
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	days := make([]time.Weekday, 0, len(names))
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		found := false
		for full, wd := range weekdayNames {
			if name == full || (len(name) >= 3 && strings.HasPrefix(full, name)) {
				days = append(days, wd)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("unknown weekday %q", raw)
		}
	}
	return days, nil
}
