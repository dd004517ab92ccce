package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
)

// MonthlyBalance is a materialized projection of one employee-month.
// It carries no timestamps so recomputing unchanged inputs yields identical rows.
type MonthlyBalance struct {
	EmployeeID       string
	Year             int
	Month            int
	TotalHoursWorked decimal.Decimal
	ExpectedHours    decimal.Decimal
	BalanceHours     decimal.Decimal
	WorkingDays      int
	DaysPresent      int
	DaysWFH          int
	DaysHalfDay      int
	DaysOnLeave      int
	CompOffEarned    int
	CompOffUsed      int
	CompOffBalance   int
}

// Equal compares every field; decimals by value.
func (b MonthlyBalance) Equal(o MonthlyBalance) bool {
	return b.EmployeeID == o.EmployeeID &&
		b.Year == o.Year &&
		b.Month == o.Month &&
		b.TotalHoursWorked.Equal(o.TotalHoursWorked) &&
		b.ExpectedHours.Equal(o.ExpectedHours) &&
		b.BalanceHours.Equal(o.BalanceHours) &&
		b.WorkingDays == o.WorkingDays &&
		b.DaysPresent == o.DaysPresent &&
		b.DaysWFH == o.DaysWFH &&
		b.DaysHalfDay == o.DaysHalfDay &&
		b.DaysOnLeave == o.DaysOnLeave &&
		b.CompOffEarned == o.CompOffEarned &&
		b.CompOffUsed == o.CompOffUsed &&
		b.CompOffBalance == o.CompOffBalance
}

type CompOffStatus string

const (
	CompOffStatusAvailable CompOffStatus = "available"
	CompOffStatusUsed      CompOffStatus = "used"
	CompOffStatusExpired   CompOffStatus = "expired"
	CompOffStatusCancelled CompOffStatus = "cancelled"
)

// CompOffWorkflow: available -> used | expired | cancelled.
var CompOffWorkflow = workflow.New[CompOffStatus]("comp-off").
	Permit(CompOffStatusAvailable, workflow.TriggerUse, CompOffStatusUsed).
	Permit(CompOffStatusAvailable, workflow.TriggerExpire, CompOffStatusExpired).
	Permit(CompOffStatusAvailable, workflow.TriggerCancel, CompOffStatusCancelled)

// CompOff is a credit earned by working a holiday or weekly-off.
type CompOff struct {
	ID            string
	EmployeeID    string
	EarnedDate    time.Time
	EarnedForDate time.Time
	Status        CompOffStatus
	UsedOn        *time.Time
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsAvailableOn applies lazy expiry: a stored "available" credit past its
// expiry date is treated as unavailable.
func (c CompOff) IsAvailableOn(today time.Time) bool {
	if c.Status != CompOffStatusAvailable {
		return false
	}
	return c.ExpiresAt == nil || c.ExpiresAt.After(today)
}

// EffectiveStatus reports expired for available credits past expiry.
func (c CompOff) EffectiveStatus(today time.Time) CompOffStatus {
	if c.Status == CompOffStatusAvailable && !c.IsAvailableOn(today) {
		return CompOffStatusExpired
	}
	return c.Status
}
