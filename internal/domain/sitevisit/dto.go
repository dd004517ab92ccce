package sitevisit

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type CreateSiteVisitRequest struct {
	AttendanceID string  `json:"attendance_id"`
	Location     string  `json:"location"`
	CompanyName  *string `json:"company_name,omitempty"`
	NumGauges    int     `json:"num_gauges"`
	VisitSummary *string `json:"visit_summary,omitempty"`
	Conclusion   *string `json:"conclusion,omitempty"`
}

func (r *CreateSiteVisitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{Field: "attendance_id", Message: "attendance_id is required"})
	} else if !validator.IsValidUUID(r.AttendanceID) {
		errs = append(errs, validator.ValidationError{Field: "attendance_id", Message: "attendance_id must be a valid UUID"})
	}
	errs = append(errs, validateDetails(r.Location, r.CompanyName, r.NumGauges, r.VisitSummary, r.Conclusion)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSiteVisitRequest struct {
	Location     string  `json:"location"`
	CompanyName  *string `json:"company_name,omitempty"`
	NumGauges    int     `json:"num_gauges"`
	VisitSummary *string `json:"visit_summary,omitempty"`
	Conclusion   *string `json:"conclusion,omitempty"`
}

func (r *UpdateSiteVisitRequest) Validate() error {
	errs := validateDetails(r.Location, r.CompanyName, r.NumGauges, r.VisitSummary, r.Conclusion)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateDetails(location string, company *string, gauges int, summary, conclusion *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	if validator.IsEmpty(location) {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "location is required"})
	}
	if len(location) > 255 {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "location must not exceed 255 characters"})
	}
	if company != nil && len(*company) > 255 {
		errs = append(errs, validator.ValidationError{Field: "company_name", Message: "company_name must not exceed 255 characters"})
	}
	if gauges < 0 {
		errs = append(errs, validator.ValidationError{Field: "num_gauges", Message: "num_gauges must not be negative"})
	}
	if summary != nil && len(*summary) > 5000 {
		errs = append(errs, validator.ValidationError{Field: "visit_summary", Message: "visit_summary must not exceed 5000 characters"})
	}
	if conclusion != nil && len(*conclusion) > 5000 {
		errs = append(errs, validator.ValidationError{Field: "conclusion", Message: "conclusion must not exceed 5000 characters"})
	}
	return errs
}

type ExpenseRequest struct {
	ExpenseType string          `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
}

func (r *ExpenseRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ExpenseType) {
		errs = append(errs, validator.ValidationError{Field: "expense_type", Message: "expense_type is required"})
	}
	if len(r.ExpenseType) > 50 {
		errs = append(errs, validator.ValidationError{Field: "expense_type", Message: "expense_type must not exceed 50 characters"})
	}
	if !r.Amount.IsPositive() {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must be greater than 0"})
	} else if !r.Amount.Equal(r.Amount.Round(2)) {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount must have at most 2 decimal places"})
	}
	if r.Amount.GreaterThanOrEqual(decimal.New(1, 10)) {
		errs = append(errs, validator.ValidationError{Field: "amount", Message: "amount is too large"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RejectSiteVisitRequest struct {
	Reason string `json:"reason"`
}

type SiteVisitFilter struct {
	EmployeeID *string
	Status     *Status
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int
}

type ListSiteVisitQuery struct {
	EmployeeID string
	Status     string
	From       string
	To         string
	Page       int
	Limit      int
}

func (q *ListSiteVisitQuery) ToFilter() (SiteVisitFilter, error) {
	var errs validator.ValidationErrors
	f := SiteVisitFilter{Page: q.Page, Limit: q.Limit}

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
		valid := []string{string(StatusDraft), string(StatusSubmitted), string(StatusApproved), string(StatusRejected)}
		if !validator.IsInSlice(q.Status, valid) {
			errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: " + strings.Join(valid, ", ")})
		}
		s := Status(q.Status)
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
		return SiteVisitFilter{}, errs
	}
	return f, nil
}

type ExpenseResponse struct {
	ID          string          `json:"id"`
	SiteVisitID string          `json:"site_visit_id"`
	ExpenseType string          `json:"expense_type"`
	Amount      decimal.Decimal `json:"amount"`
	Description *string         `json:"description,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func ToExpenseResponse(e Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		SiteVisitID: e.SiteVisitID,
		ExpenseType: e.ExpenseType,
		Amount:      e.Amount.Round(2),
		Description: e.Description,
		Notes:       e.Notes,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

type SiteVisitResponse struct {
	ID              string            `json:"id"`
	AttendanceID    string            `json:"attendance_id"`
	EmployeeID      string            `json:"employee_id"`
	VisitDate       string            `json:"visit_date"`
	Location        string            `json:"location"`
	CompanyName     *string           `json:"company_name,omitempty"`
	NumGauges       int               `json:"num_gauges"`
	VisitSummary    *string           `json:"visit_summary,omitempty"`
	Conclusion      *string           `json:"conclusion,omitempty"`
	Status          Status            `json:"status"`
	SubmittedAt     *time.Time        `json:"submitted_at,omitempty"`
	SubmittedTotal  *decimal.Decimal  `json:"submitted_total,omitempty"`
	ReviewedBy      *string           `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time        `json:"reviewed_at,omitempty"`
	RejectionReason *string           `json:"rejection_reason,omitempty"`
	Expenses        []ExpenseResponse `json:"expenses"`
	Total           decimal.Decimal   `json:"total"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// ToResponse renders sv with its live line items. items may be nil for list views.
func ToResponse(sv SiteVisit, items []Expense) SiteVisitResponse {
	resp := SiteVisitResponse{
		ID:              sv.ID,
		AttendanceID:    sv.AttendanceID,
		EmployeeID:      sv.EmployeeID,
		VisitDate:       sv.VisitDate.Format(calendar.DateLayout),
		Location:        sv.Location,
		CompanyName:     sv.CompanyName,
		NumGauges:       sv.NumGauges,
		VisitSummary:    sv.VisitSummary,
		Conclusion:      sv.Conclusion,
		Status:          sv.Status,
		SubmittedAt:     sv.SubmittedAt,
		SubmittedTotal:  sv.SubmittedTotal,
		ReviewedBy:      sv.ReviewedBy,
		ReviewedAt:      sv.ReviewedAt,
		RejectionReason: sv.RejectionReason,
		Expenses:        make([]ExpenseResponse, 0, len(items)),
		Total:           Total(items).Round(2),
		CreatedAt:       sv.CreatedAt,
		UpdatedAt:       sv.UpdatedAt,
	}
	for _, e := range items {
		resp.Expenses = append(resp.Expenses, ToExpenseResponse(e))
	}
	return resp
}

type ListSiteVisitResponse struct {
	Items []SiteVisitResponse `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}
