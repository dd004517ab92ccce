package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type MarkAttendanceRequest struct {
	EmployeeID  string  `json:"employee_id,omitempty"` // defaults to the caller
	Date        string  `json:"date"`                  // YYYY-MM-DD
	Status      string  `json:"status"`
	EntryTime   *string `json:"entry_time,omitempty"` // HH:MM, local to the policy timezone
	ExitTime    *string `json:"exit_time,omitempty"`  // HH:MM
	Notes       *string `json:"notes,omitempty"`
	IsSiteVisit bool    `json:"is_site_visit"`
}

func (r *MarkAttendanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Date) {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date is required"})
	} else if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}

	if !Status(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of: " + strings.Join(AllStatuses(), ", "),
		})
	}

	if r.EntryTime != nil {
		if _, ok := validator.IsValidClock(*r.EntryTime); !ok {
			errs = append(errs, validator.ValidationError{Field: "entry_time", Message: "entry_time must be in HH:MM format"})
		}
	}
	if r.ExitTime != nil {
		if _, ok := validator.IsValidClock(*r.ExitTime); !ok {
			errs = append(errs, validator.ValidationError{Field: "exit_time", Message: "exit_time must be in HH:MM format"})
		}
		if r.EntryTime == nil {
			errs = append(errs, validator.ValidationError{Field: "exit_time", Message: "exit_time requires entry_time"})
		}
	}

	if r.Notes != nil && len(*r.Notes) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "notes", Message: "notes must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type CheckInRequest struct {
	Status string  `json:"status"` // present or wfh, defaults to present
	Notes  *string `json:"notes,omitempty"`
}

func (r *CheckInRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status == "" {
		r.Status = string(StatusPresent)
	}
	if !validator.IsInSlice(r.Status, []string{string(StatusPresent), string(StatusWFH)}) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: present, wfh"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type AttendanceResponse struct {
	ID             string           `json:"id"`
	EmployeeID     string           `json:"employee_id"`
	Date           string           `json:"date"`
	Status         Status           `json:"status"`
	EntryTime      *time.Time       `json:"entry_time,omitempty"`
	ExitTime       *time.Time       `json:"exit_time,omitempty"`
	WorkedHours    *decimal.Decimal `json:"worked_hours,omitempty"`
	IsLate         bool             `json:"is_late"`
	Notes          *string          `json:"notes,omitempty"`
	IsSiteVisit    bool             `json:"is_site_visit"`
	SiteVisitCost  *decimal.Decimal `json:"site_visit_cost,omitempty"`
	CostApproved   bool             `json:"cost_approved"`
	CostApprovedBy *string          `json:"cost_approved_by,omitempty"`
	CostApprovedAt *time.Time       `json:"cost_approved_at,omitempty"`
	CompOffEarned  bool             `json:"comp_off_earned"`
	AdminEdited    bool             `json:"admin_edited"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// ToResponse renders a record; cutoff and loc drive the derived is_late flag.
func ToResponse(a Attendance, cutoff time.Duration, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:             a.ID,
		EmployeeID:     a.EmployeeID,
		Date:           a.Date.Format(calendar.DateLayout),
		Status:         a.Status,
		EntryTime:      a.EntryTime,
		ExitTime:       a.ExitTime,
		IsLate:         a.IsLate(cutoff, loc),
		Notes:          a.Notes,
		IsSiteVisit:    a.IsSiteVisit,
		SiteVisitCost:  a.SiteVisitCost,
		CostApproved:   a.CostApproved,
		CostApprovedBy: a.CostApprovedBy,
		CostApprovedAt: a.CostApprovedAt,
		CompOffEarned:  a.CompOffEarned,
		AdminEdited:    a.AdminEdited,
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if d, ok := a.WorkedDuration(); ok {
		hours := decimal.NewFromFloat(d.Minutes()).Div(decimal.NewFromInt(60)).Round(2)
		resp.WorkedHours = &hours
	}
	return resp
}

// AttendanceFilter is the typed form of ListAttendanceQuery.
type AttendanceFilter struct {
	EmployeeID *string
	From       *time.Time
	To         *time.Time
	Status     *Status
	Page       int
	Limit      int
}

type ListAttendanceQuery struct {
	EmployeeID string
	From       string
	To         string
	Status     string
	Page       int
	Limit      int
}

func (q *ListAttendanceQuery) ToFilter() (AttendanceFilter, error) {
	var errs validator.ValidationErrors
	f := AttendanceFilter{Page: q.Page, Limit: q.Limit}

	if f.Page < 0 {
		errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a positive number"})
	}
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit < 0 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must be a positive number"})
	}
	if f.Limit == 0 {
		f.Limit = 31
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}

	if q.EmployeeID != "" {
		id := q.EmployeeID
		f.EmployeeID = &id
	}
	if q.From != "" {
		d, ok := validator.IsValidDate(q.From)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "from", Message: "from must be in YYYY-MM-DD format"})
		}
		f.From = &d
	}
	if q.To != "" {
		d, ok := validator.IsValidDate(q.To)
		if !ok {
			errs = append(errs, validator.ValidationError{Field: "to", Message: "to must be in YYYY-MM-DD format"})
		}
		f.To = &d
	}
	if q.Status != "" {
		s := Status(q.Status)
		if !s.IsValid() {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: fmt.Sprintf("status must be one of: %s", strings.Join(AllStatuses(), ", ")),
			})
		}
		f.Status = &s
	}

	if len(errs) > 0 {
		return AttendanceFilter{}, errs
	}
	return f, nil
}

type ListAttendanceResponse struct {
	Items []AttendanceResponse `json:"items"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
