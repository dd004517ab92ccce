package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

var minutesPerHour = decimal.NewFromInt(60)

// Policy holds the hour rules used by Compute.
type Policy struct {
	StandardDayHours decimal.Decimal
	// NominalHours is used for worked statuses without an entry/exit pair.
	NominalHours map[attendance.Status]decimal.Decimal
}

func DefaultPolicy() Policy {
	std := decimal.NewFromInt(8)
	return Policy{
		StandardDayHours: std,
		NominalHours: map[attendance.Status]decimal.Decimal{
			attendance.StatusPresent: std,
			attendance.StatusWFH:     std,
			attendance.StatusHalfDay: std.Div(decimal.NewFromInt(2)),
		},
	}
}

// HoursFor returns the hours a worked record contributes.
func (p Policy) HoursFor(a attendance.Attendance) decimal.Decimal {
	if !a.Status.IsWorked() {
		return decimal.Zero
	}
	if d, ok := a.WorkedDuration(); ok && d >= 0 {
		return decimal.NewFromInt(int64(d / time.Minute)).Div(minutesPerHour)
	}
	if h, ok := p.NominalHours[a.Status]; ok {
		return h
	}
	if a.Status == attendance.StatusHalfDay {
		return p.StandardDayHours.Div(decimal.NewFromInt(2))
	}
	return p.StandardDayHours
}

// MonthInput is everything Compute reads for one employee-month.
type MonthInput struct {
	EmployeeID     string
	Year           int
	Month          int
	Calendar       calendar.Calendar
	Attendance     []attendance.Attendance
	ApprovedLeaves []leave.LeaveRequest
	CompOffs       []CompOff
	// AsOf is the evaluation date for lazy comp-off expiry.
	AsOf time.Time
}

// Compute derives the monthly balance. It is a pure function of its input.
func Compute(in MonthInput, p Policy) MonthlyBalance {
	first, last := calendar.MonthRange(in.Year, in.Month)
	b := MonthlyBalance{
		EmployeeID:  in.EmployeeID,
		Year:        in.Year,
		Month:       in.Month,
		WorkingDays: in.Calendar.WorkingDays(first, last),
	}

	total := decimal.Zero
	leaveDays := make(map[time.Time]struct{})

	for _, a := range in.Attendance {
		d := calendar.DateOf(a.Date)
		if a.EmployeeID != in.EmployeeID || d.Before(first) || d.After(last) {
			continue
		}
		switch a.Status {
		case attendance.StatusPresent:
			b.DaysPresent++
		case attendance.StatusWFH:
			b.DaysWFH++
		case attendance.StatusHalfDay:
			b.DaysHalfDay++
		case attendance.StatusOnLeave:
			if !in.Calendar.IsNonWorkingDay(d) {
				leaveDays[d] = struct{}{}
			}
		}
		total = total.Add(p.HoursFor(a))
	}

	for _, r := range in.ApprovedLeaves {
		if r.EmployeeID != in.EmployeeID || r.Status != leave.LeaveRequestStatusApproved {
			continue
		}
		from, to, ok := calendar.Clamp(r.StartDate, r.EndDate, first, last)
		if !ok {
			continue
		}
		calendar.EachDay(from, to, func(d time.Time) {
			if !in.Calendar.IsNonWorkingDay(d) {
				leaveDays[d] = struct{}{}
			}
		})
	}
	b.DaysOnLeave = len(leaveDays)

	expectedDays := b.WorkingDays - b.DaysOnLeave
	if expectedDays < 0 {
		expectedDays = 0
	}
	b.TotalHoursWorked = total.Round(2)
	b.ExpectedHours = p.StandardDayHours.Mul(decimal.NewFromInt(int64(expectedDays))).Round(2)
	b.BalanceHours = b.TotalHoursWorked.Sub(b.ExpectedHours)

	for _, c := range in.CompOffs {
		earned := calendar.DateOf(c.EarnedDate)
		if c.EmployeeID != in.EmployeeID || earned.Before(first) || earned.After(last) {
			continue
		}
		switch {
		case c.IsAvailableOn(in.AsOf):
			b.CompOffEarned++
		case c.Status == CompOffStatusUsed:
			b.CompOffEarned++
			b.CompOffUsed++
		}
	}
	b.CompOffBalance = b.CompOffEarned - b.CompOffUsed

	return b
}
