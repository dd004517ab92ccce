package leave

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateLeaveRequestRequest struct {
	EmployeeID string `json:"employee_id,omitempty"` // defaults to the caller
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	LeaveType  string `json:"leave_type"`
	Reason     string `json:"reason"`
}

func (r *CreateLeaveRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be in YYYY-MM-DD format"})
	}
	if _, ok := validator.IsValidDate(r.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be in YYYY-MM-DD format"})
	}
	if validator.IsEmpty(r.LeaveType) {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type is required"})
	}
	if len(r.LeaveType) > 50 {
		errs = append(errs, validator.ValidationError{Field: "leave_type", Message: "leave_type must not exceed 50 characters"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}
	if len(r.Reason) > 1000 {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason must not exceed 1000 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectLeaveRequestRequest struct {
	Reason string `json:"reason"`
}

type SetQuotaRequest struct {
	EmployeeID  string `json:"employee_id"`
	Year        int    `json:"year"`
	AnnualQuota int    `json:"annual_quota"`
}

func (r *SetQuotaRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if r.Year < 2000 || r.Year > 2100 {
		errs = append(errs, validator.ValidationError{Field: "year", Message: "year must be between 2000 and 2100"})
	}
	if r.AnnualQuota < 0 || r.AnnualQuota > 366 {
		errs = append(errs, validator.ValidationError{Field: "annual_quota", Message: "annual_quota must be between 0 and 366"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveRequestFilter struct {
	EmployeeID *string
	Status     *LeaveRequestStatus
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type ListLeaveRequestQuery struct {
	EmployeeID string
	Status     string
	From       string
	To         string
	Page       int
	Limit      int
}

func (q *ListLeaveRequestQuery) ToFilter() (LeaveRequestFilter, error) {
	var errs validator.ValidationErrors
	f := LeaveRequestFilter{Page: q.Page, Limit: q.Limit}

	if f.Page <= 0 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		errs = append(errs, validator.ValidationError{Field: "limit", Message: "limit must not exceed 100"})
	}
	if q.EmployeeID != "" {
		id := q.EmployeeID
		f.EmployeeID = &id
	}
	if q.Status != "" {
		valid := []string{
			string(LeaveRequestStatusPending), string(LeaveRequestStatusApproved),
			string(LeaveRequestStatusRejected), string(LeaveRequestStatusCancelled),
		}
		if !validator.IsInSlice(q.Status, valid) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: " + strings.Join(valid, ", ")})
		}
		s := LeaveRequestStatus(q.Status)
		f.Status = &s
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

	if len(errs) > 0 {
		return LeaveRequestFilter{}, errs
	}
	return f, nil
}

type LeaveRequestResponse struct {
	ID              string             `json:"id"`
	EmployeeID      string             `json:"employee_id"`
	StartDate       string             `json:"start_date"`
	EndDate         string             `json:"end_date"`
	LeaveType       string             `json:"leave_type"`
	Reason          string             `json:"reason"`
	Days            int                `json:"days"`
	Status          LeaveRequestStatus `json:"status"`
	ApprovedBy      *string            `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	RejectionReason *string            `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func ToRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		StartDate:       r.StartDate.Format(calendar.DateLayout),
		EndDate:         r.EndDate.Format(calendar.DateLayout),
		LeaveType:       r.LeaveType,
		Reason:          r.Reason,
		Days:            r.Days,
		Status:          r.Status,
		ApprovedBy:      r.ApprovedBy,
		ApprovedAt:      r.ApprovedAt,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type ListLeaveRequestResponse struct {
	Items []LeaveRequestResponse `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

type LeaveQuotaResponse struct {
	EmployeeID    string `json:"employee_id"`
	Year          int    `json:"year"`
	AnnualQuota   int    `json:"annual_quota"`
	LeavesTaken   int    `json:"leaves_taken"`
	LeavesPending int    `json:"leaves_pending"`
	Available     int    `json:"available"`
}

func ToQuotaResponse(q LeaveQuota) LeaveQuotaResponse {
	return LeaveQuotaResponse{
		EmployeeID:    q.EmployeeID,
		Year:          q.Year,
		AnnualQuota:   q.AnnualQuota,
		LeavesTaken:   q.LeavesTaken,
		LeavesPending: q.LeavesPending,
		Available:     q.Available(),
	}
}
