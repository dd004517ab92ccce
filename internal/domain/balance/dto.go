package balance

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type MonthlyBalanceResponse struct {
	EmployeeID       string          `json:"employee_id"`
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	TotalHoursWorked decimal.Decimal `json:"total_hours_worked"`
	ExpectedHours    decimal.Decimal `json:"expected_hours"`
	BalanceHours     decimal.Decimal `json:"balance_hours"`
	WorkingDays      int             `json:"working_days"`
	DaysPresent      int             `json:"days_present"`
	DaysWFH          int             `json:"days_wfh"`
	DaysHalfDay      int             `json:"days_half_day"`
	DaysOnLeave      int             `json:"days_on_leave"`
	CompOffEarned    int             `json:"comp_off_earned"`
	CompOffUsed      int             `json:"comp_off_used"`
	CompOffBalance   int             `json:"comp_off_balance"`
}

func ToBalanceResponse(b MonthlyBalance) MonthlyBalanceResponse {
	return MonthlyBalanceResponse{
		EmployeeID:       b.EmployeeID,
		Year:             b.Year,
		Month:            b.Month,
		TotalHoursWorked: b.TotalHoursWorked,
		ExpectedHours:    b.ExpectedHours,
		BalanceHours:     b.BalanceHours,
		WorkingDays:      b.WorkingDays,
		DaysPresent:      b.DaysPresent,
		DaysWFH:          b.DaysWFH,
		DaysHalfDay:      b.DaysHalfDay,
		DaysOnLeave:      b.DaysOnLeave,
		CompOffEarned:    b.CompOffEarned,
		CompOffUsed:      b.CompOffUsed,
		CompOffBalance:   b.CompOffBalance,
	}
}

type UseCompOffRequest struct {
	UsedOn string `json:"used_on"` // YYYY-MM-DD, defaults to today
}

func (r *UseCompOffRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.UsedOn != "" {
		if _, ok := validator.IsValidDate(r.UsedOn); !ok {
			errs = append(errs, validator.ValidationError{Field: "used_on", Message: "used_on must be in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListCompOffQuery struct {
	EmployeeID    string
	AvailableOnly bool
}

type CompOffResponse struct {
	ID            string        `json:"id"`
	EmployeeID    string        `json:"employee_id"`
	EarnedDate    string        `json:"earned_date"`
	EarnedForDate string        `json:"earned_for_date"`
	Status        CompOffStatus `json:"status"`
	UsedOn        *string       `json:"used_on,omitempty"`
	ExpiresAt     *string       `json:"expires_at,omitempty"`
}

// ToCompOffResponse renders the effective status as of today.
func ToCompOffResponse(c CompOff, today time.Time) CompOffResponse {
	resp := CompOffResponse{
		ID:            c.ID,
		EmployeeID:    c.EmployeeID,
		EarnedDate:    c.EarnedDate.Format(calendar.DateLayout),
		EarnedForDate: c.EarnedForDate.Format(calendar.DateLayout),
		Status:        c.EffectiveStatus(today),
	}
	if c.UsedOn != nil {
		s := c.UsedOn.Format(calendar.DateLayout)
		resp.UsedOn = &s
	}
	if c.ExpiresAt != nil {
		s := c.ExpiresAt.Format(calendar.DateLayout)
		resp.ExpiresAt = &s
	}
	return resp
}
