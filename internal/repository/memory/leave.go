package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
)

type leaveQuotaRepository struct {
	s *Store
}

func NewLeaveQuotaRepository(s *Store) leave.LeaveQuotaRepository {
	return &leaveQuotaRepository{s: s}
}

func (r *leaveQuotaRepository) Create(ctx context.Context, q leave.LeaveQuota) (leave.LeaveQuota, error) {
	defer r.s.acquire(ctx)()

	key := quotaKey{q.EmployeeID, q.Year}
	if existing, ok := r.s.t.leaveQuotas[key]; ok {
		return existing, nil
	}
	r.s.t.leaveQuotas[key] = q
	return q, nil
}

func (r *leaveQuotaRepository) Get(ctx context.Context, employeeID string, year int) (leave.LeaveQuota, error) {
	defer r.s.acquire(ctx)()

	q, ok := r.s.t.leaveQuotas[quotaKey{employeeID, year}]
	if !ok {
		return leave.LeaveQuota{}, leave.ErrLeaveQuotaNotFound
	}
	return q, nil
}

func (r *leaveQuotaRepository) GetForUpdate(ctx context.Context, employeeID string, year int) (leave.LeaveQuota, error) {
	return r.Get(ctx, employeeID, year)
}

// mutate applies fn to the stored row; fn returns the guard error, if any.
func (r *leaveQuotaRepository) mutate(ctx context.Context, employeeID string, year int, fn func(q *leave.LeaveQuota) error) error {
	defer r.s.acquire(ctx)()

	key := quotaKey{employeeID, year}
	q, ok := r.s.t.leaveQuotas[key]
	if !ok {
		return leave.ErrLeaveQuotaNotFound
	}
	if err := fn(&q); err != nil {
		return err
	}
	q.UpdatedAt = time.Now()
	r.s.t.leaveQuotas[key] = q
	return nil
}

func (r *leaveQuotaRepository) SetAnnualQuota(ctx context.Context, employeeID string, year int, annualQuota int) error {
	return r.mutate(ctx, employeeID, year, func(q *leave.LeaveQuota) error {
		if q.LeavesTaken+q.LeavesPending > annualQuota {
			return leave.ErrQuotaBelowUsage
		}
		q.AnnualQuota = annualQuota
		return nil
	})
}

func (r *leaveQuotaRepository) ReservePending(ctx context.Context, employeeID string, year int, days int) error {
	return r.mutate(ctx, employeeID, year, func(q *leave.LeaveQuota) error {
		if !q.CanReserve(days) {
			return leave.ErrQuotaExceeded
		}
		q.LeavesPending += days
		return nil
	})
}

func (r *leaveQuotaRepository) ReleasePending(ctx context.Context, employeeID string, year int, days int) error {
	return r.mutate(ctx, employeeID, year, func(q *leave.LeaveQuota) error {
		if q.LeavesPending < days {
			return fmt.Errorf("pending days below %d for %s/%d", days, employeeID, year)
		}
		q.LeavesPending -= days
		return nil
	})
}

func (r *leaveQuotaRepository) MovePendingToTaken(ctx context.Context, employeeID string, year int, days int) error {
	return r.mutate(ctx, employeeID, year, func(q *leave.LeaveQuota) error {
		if q.LeavesPending < days {
			return fmt.Errorf("pending days below %d for %s/%d", days, employeeID, year)
		}
		q.LeavesPending -= days
		q.LeavesTaken += days
		return nil
	})
}

type leaveRequestRepository struct {
	s *Store
}

func NewLeaveRequestRepository(s *Store) leave.LeaveRequestRepository {
	return &leaveRequestRepository{s: s}
}

func (r *leaveRequestRepository) Create(ctx context.Context, req leave.LeaveRequest) (leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	r.s.t.leaveRequests[req.ID] = req
	return req, nil
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	req, ok := r.s.t.leaveRequests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r *leaveRequestRepository) Update(ctx context.Context, req leave.LeaveRequest) error {
	defer r.s.acquire(ctx)()

	existing, ok := r.s.t.leaveRequests[req.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	existing.Status = req.Status
	existing.ApprovedBy = req.ApprovedBy
	existing.ApprovedAt = req.ApprovedAt
	existing.RejectionReason = req.RejectionReason
	existing.UpdatedAt = req.UpdatedAt
	r.s.t.leaveRequests[req.ID] = existing
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, f leave.LeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	defer r.s.acquire(ctx)()

	items := sortedValues(r.s.t.leaveRequests,
		func(req leave.LeaveRequest) bool {
			if f.EmployeeID != nil && req.EmployeeID != *f.EmployeeID {
				return false
			}
			if f.Status != nil && req.Status != *f.Status {
				return false
			}
			if f.From != nil && req.EndDate.Before(*f.From) {
				return false
			}
			return f.To == nil || !req.StartDate.After(*f.To)
		},
		func(a, b leave.LeaveRequest) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time) (bool, error) {
	defer r.s.acquire(ctx)()

	for _, req := range r.s.t.leaveRequests {
		if req.EmployeeID != employeeID {
			continue
		}
		if req.Status != leave.LeaveRequestStatusPending && req.Status != leave.LeaveRequestStatusApproved {
			continue
		}
		if !req.StartDate.After(end) && !req.EndDate.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *leaveRequestRepository) ListApprovedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]leave.LeaveRequest, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.leaveRequests,
		func(req leave.LeaveRequest) bool {
			return req.EmployeeID == employeeID &&
				req.Status == leave.LeaveRequestStatusApproved &&
				!req.StartDate.After(to) && !req.EndDate.Before(from)
		},
		func(a, b leave.LeaveRequest) bool { return a.StartDate.Before(b.StartDate) },
	), nil
}
