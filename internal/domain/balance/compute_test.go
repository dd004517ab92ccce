package balance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
)

const empID = "emp-1"

func d(s string) time.Time {
	t, err := calendar.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func at(date string, clock string) *time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		panic(err)
	}
	return &t
}

func weekendCalendar(holidays ...calendar.Holiday) calendar.Calendar {
	return calendar.New([]time.Weekday{time.Saturday, time.Sunday}, holidays)
}

func TestCompute_EntryExitYieldsExactHours(t *testing.T) {
	in := MonthInput{
		EmployeeID: empID, Year: 2026, Month: 2,
		Calendar: weekendCalendar(),
		Attendance: []attendance.Attendance{{
			EmployeeID: empID,
			Date:       d("2026-02-01"),
			Status:     attendance.StatusPresent,
			EntryTime:  at("2026-02-01", "09:30"),
			ExitTime:   at("2026-02-01", "18:00"),
		}},
	}

	b := Compute(in, DefaultPolicy())

	assert.True(t, decimal.RequireFromString("8.5").Equal(b.TotalHoursWorked), b.TotalHoursWorked.String())
	assert.Equal(t, 20, b.WorkingDays)
	assert.True(t, decimal.NewFromInt(160).Equal(b.ExpectedHours))
	assert.True(t, decimal.RequireFromString("-151.5").Equal(b.BalanceHours))
	assert.Equal(t, 1, b.DaysPresent)
}

func TestCompute_NominalFallbackAndLeave(t *testing.T) {
	in := MonthInput{
		EmployeeID: empID, Year: 2026, Month: 2,
		Calendar: weekendCalendar(calendar.Holiday{Date: d("2026-02-17"), Name: "Holiday"}),
		Attendance: []attendance.Attendance{
			{EmployeeID: empID, Date: d("2026-02-02"), Status: attendance.StatusPresent},
			{EmployeeID: empID, Date: d("2026-02-03"), Status: attendance.StatusWFH},
			{EmployeeID: empID, Date: d("2026-02-04"), Status: attendance.StatusHalfDay},
			{EmployeeID: empID, Date: d("2026-02-05"), Status: attendance.StatusAbsent},
			{EmployeeID: empID, Date: d("2026-02-11"), Status: attendance.StatusOnLeave},
			{EmployeeID: "someone-else", Date: d("2026-02-06"), Status: attendance.StatusPresent},
			{EmployeeID: empID, Date: d("2026-03-02"), Status: attendance.StatusPresent},
		},
		ApprovedLeaves: []leave.LeaveRequest{
			// Fri 13th to Mon 16th spans a weekend: two working days.
			{EmployeeID: empID, StartDate: d("2026-02-13"), EndDate: d("2026-02-16"), Status: leave.LeaveRequestStatusApproved},
			{EmployeeID: empID, StartDate: d("2026-02-10"), EndDate: d("2026-02-11"), Status: leave.LeaveRequestStatusApproved},
			{EmployeeID: empID, StartDate: d("2026-02-23"), EndDate: d("2026-02-24"), Status: leave.LeaveRequestStatusRejected},
		},
	}

	b := Compute(in, DefaultPolicy())

	assert.Equal(t, 19, b.WorkingDays)
	assert.Equal(t, 1, b.DaysPresent)
	assert.Equal(t, 1, b.DaysWFH)
	assert.Equal(t, 1, b.DaysHalfDay)
	// 10, 11, 13, 16
	assert.Equal(t, 4, b.DaysOnLeave)
	assert.True(t, decimal.NewFromInt(20).Equal(b.TotalHoursWorked), b.TotalHoursWorked.String())
	assert.True(t, decimal.NewFromInt(15*8).Equal(b.ExpectedHours), b.ExpectedHours.String())
	assert.True(t, decimal.NewFromInt(-100).Equal(b.BalanceHours))
}

func TestCompute_CompOffCountsFromLedger(t *testing.T) {
	in := MonthInput{
		EmployeeID: empID, Year: 2026, Month: 2,
		Calendar: weekendCalendar(),
		CompOffs: []CompOff{
			{EmployeeID: empID, EarnedDate: d("2026-02-01"), Status: CompOffStatusAvailable},
			{EmployeeID: empID, EarnedDate: d("2026-02-08"), Status: CompOffStatusUsed},
			{EmployeeID: empID, EarnedDate: d("2026-02-14"), Status: CompOffStatusCancelled},
			{EmployeeID: empID, EarnedDate: d("2026-02-15"), Status: CompOffStatusExpired},
			{EmployeeID: empID, EarnedDate: d("2026-01-31"), Status: CompOffStatusAvailable},
		},
	}

	b := Compute(in, DefaultPolicy())

	assert.Equal(t, 2, b.CompOffEarned)
	assert.Equal(t, 1, b.CompOffUsed)
	assert.Equal(t, 1, b.CompOffBalance)
}

func TestCompute_ExpiredCreditsAreNotCounted(t *testing.T) {
	expires := d("2026-04-01")
	in := MonthInput{
		EmployeeID: empID, Year: 2026, Month: 2,
		Calendar: weekendCalendar(),
		CompOffs: []CompOff{
			{EmployeeID: empID, EarnedDate: d("2026-02-07"), Status: CompOffStatusAvailable, ExpiresAt: &expires},
			{EmployeeID: empID, EarnedDate: d("2026-02-08"), Status: CompOffStatusUsed, ExpiresAt: &expires},
		},
	}

	tests := []struct {
		name      string
		asOf      time.Time
		earned    int
		remaining int
	}{
		{"before expiry", d("2026-03-31"), 2, 1},
		{"on expiry date", d("2026-04-01"), 1, 0},
		{"after expiry", d("2026-06-01"), 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in.AsOf = tt.asOf
			b := Compute(in, DefaultPolicy())
			assert.Equal(t, tt.earned, b.CompOffEarned)
			assert.Equal(t, 1, b.CompOffUsed)
			assert.Equal(t, tt.remaining, b.CompOffBalance)
		})
	}
}

func TestCompute_Idempotent(t *testing.T) {
	in := MonthInput{
		EmployeeID: empID, Year: 2026, Month: 2,
		Calendar: weekendCalendar(),
		Attendance: []attendance.Attendance{
			{EmployeeID: empID, Date: d("2026-02-02"), Status: attendance.StatusPresent, EntryTime: at("2026-02-02", "09:00"), ExitTime: at("2026-02-02", "17:20")},
			{EmployeeID: empID, Date: d("2026-02-03"), Status: attendance.StatusHalfDay},
		},
	}

	first := Compute(in, DefaultPolicy())
	second := Compute(in, DefaultPolicy())

	require.True(t, first.Equal(second))
	assert.Equal(t, first.TotalHoursWorked.String(), second.TotalHoursWorked.String())
	assert.Equal(t, first.BalanceHours.String(), second.BalanceHours.String())
}

func TestCompOff_IsAvailableOn(t *testing.T) {
	expires := d("2026-05-01")
	c := CompOff{Status: CompOffStatusAvailable, ExpiresAt: &expires}

	assert.True(t, c.IsAvailableOn(d("2026-04-30")))
	assert.False(t, c.IsAvailableOn(d("2026-05-01")))
	assert.Equal(t, CompOffStatusExpired, c.EffectiveStatus(d("2026-05-02")))

	c.Status = CompOffStatusUsed
	assert.False(t, c.IsAvailableOn(d("2026-04-01")))

	_, err := CompOffWorkflow.Fire(CompOffStatusUsed, workflow.TriggerUse)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}
