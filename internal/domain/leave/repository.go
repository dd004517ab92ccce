package leave

import (
	"context"
	"time"
)

// LeaveQuotaRepository - interface for leave_quotas table
type LeaveQuotaRepository interface {
	Create(ctx context.Context, quota LeaveQuota) (LeaveQuota, error)
	Get(ctx context.Context, employeeID string, year int) (LeaveQuota, error)
	GetForUpdate(ctx context.Context, employeeID string, year int) (LeaveQuota, error)
	SetAnnualQuota(ctx context.Context, employeeID string, year int, annualQuota int) error

	// ReservePending adds days to pending; returns ErrQuotaExceeded when taken+pending+days > annual.
	ReservePending(ctx context.Context, employeeID string, year int, days int) error
	// ReleasePending removes days from pending.
	ReleasePending(ctx context.Context, employeeID string, year int, days int) error
	// MovePendingToTaken commits a reservation.
	MovePendingToTaken(ctx context.Context, employeeID string, year int, days int) error
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	Update(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, int64, error)
	// HasOverlap reports whether a pending or approved request intersects [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error)
	ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]LeaveRequest, error)
}
