package sitevisit

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// ClaimWorkflow: draft -> submitted -> approved | rejected.
var ClaimWorkflow = workflow.New[Status]("site visit claim").
	Permit(StatusDraft, workflow.TriggerSubmit, StatusSubmitted).
	Permit(StatusSubmitted, workflow.TriggerApprove, StatusApproved).
	Permit(StatusSubmitted, workflow.TriggerReject, StatusRejected)

// SiteVisit holds the details of one site-visit attendance day.
// EmployeeID and VisitDate are copied from the parent attendance.
type SiteVisit struct {
	ID              string
	AttendanceID    string
	EmployeeID      string
	VisitDate       time.Time
	Location        string
	CompanyName     *string
	NumGauges       int
	VisitSummary    *string
	Conclusion      *string
	Status          Status
	SubmittedAt     *time.Time
	SubmittedTotal  *decimal.Decimal
	ReviewedBy      *string
	ReviewedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsEditable reports whether details and line items may change.
func (s SiteVisit) IsEditable() bool {
	return s.Status == StatusDraft
}

type Expense struct {
	ID          string
	SiteVisitID string
	ExpenseType string
	Amount      decimal.Decimal
	Description *string
	Notes       *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Total sums line item amounts.
func Total(items []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range items {
		total = total.Add(e.Amount)
	}
	return total
}
