package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
)

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "pending"
	LeaveRequestStatusApproved  LeaveRequestStatus = "approved"
	LeaveRequestStatusRejected  LeaveRequestStatus = "rejected"
	LeaveRequestStatusCancelled LeaveRequestStatus = "cancelled"
)

// RequestWorkflow: pending -> approved | rejected | cancelled, all terminal.
var RequestWorkflow = workflow.New[LeaveRequestStatus]("leave request").
	Permit(LeaveRequestStatusPending, workflow.TriggerApprove, LeaveRequestStatusApproved).
	Permit(LeaveRequestStatusPending, workflow.TriggerReject, LeaveRequestStatusRejected).
	Permit(LeaveRequestStatusPending, workflow.TriggerCancel, LeaveRequestStatusCancelled)

type LeaveRequest struct {
	ID              string
	EmployeeID      string
	StartDate       time.Time
	EndDate         time.Time
	LeaveType       string
	Reason          string
	Days            int
	Status          LeaveRequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuotaYear is the year whose quota row the request is charged to.
func (r LeaveRequest) QuotaYear() int {
	return r.StartDate.Year()
}

// Months lists the (year, month) pairs the request touches.
func (r LeaveRequest) Months() [][2]int {
	var months [][2]int
	for d := time.Date(r.StartDate.Year(), r.StartDate.Month(), 1, 0, 0, 0, 0, time.UTC); !d.After(r.EndDate); d = d.AddDate(0, 1, 0) {
		months = append(months, [2]int{d.Year(), int(d.Month())})
	}
	return months
}

// RequestedDays is the inclusive calendar-day count charged against the quota.
func RequestedDays(start, end time.Time) int {
	return calendar.DaysInclusive(start, end)
}

// LeaveQuota is one employee's annual balance.
// Invariant: LeavesTaken + LeavesPending <= AnnualQuota.
type LeaveQuota struct {
	EmployeeID    string
	Year          int
	AnnualQuota   int
	LeavesTaken   int
	LeavesPending int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (q LeaveQuota) Available() int {
	return q.AnnualQuota - q.LeavesTaken - q.LeavesPending
}

func (q LeaveQuota) CanReserve(days int) bool {
	return days > 0 && q.LeavesTaken+q.LeavesPending+days <= q.AnnualQuota
}
