package leave

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type LeaveServiceImpl struct {
	tx database.Transactor
	leave.LeaveRequestRepository
	*QuotaService
	recomputer balance.Recomputer
	publisher  notification.Publisher
	now        func() time.Time
}

func NewLeaveService(
	tx database.Transactor,
	leaveRequestRepository leave.LeaveRequestRepository,
	quotaService *QuotaService,
	recomputer balance.Recomputer,
	publisher notification.Publisher,
) leave.LeaveService {
	return &LeaveServiceImpl{
		tx:                     tx,
		LeaveRequestRepository: leaveRequestRepository,
		QuotaService:           quotaService,
		recomputer:             recomputer,
		publisher:              publisher,
		now:                    time.Now,
	}
}

func requestPayload(r leave.LeaveRequest) map[string]any {
	p := map[string]any{
		"leave_request_id": r.ID,
		"employee_id":      r.EmployeeID,
		"status":           string(r.Status),
		"start_date":       r.StartDate.Format(calendar.DateLayout),
		"end_date":         r.EndDate.Format(calendar.DateLayout),
		"days":             r.Days,
		"leave_type":       r.LeaveType,
	}
	if r.RejectionReason != nil {
		p["reason"] = *r.RejectionReason
	}
	return p
}

// notifyAdmins fans a message out to every admin except the actor.
func (l *LeaveServiceImpl) notifyAdmins(ctx context.Context, actor user.Actor, t notification.EventType, r leave.LeaveRequest) {
	admins, err := l.QuotaService.ListByRole(ctx, user.RoleAdmin)
	if err != nil {
		slog.Error("failed to list admins for notification", "type", t, "error", err)
		return
	}
	msgs := make([]notification.Message, 0, len(admins))
	for _, a := range admins {
		if a.ID == actor.EmployeeID {
			continue
		}
		msgs = append(msgs, notification.Message{EmployeeID: a.ID, Type: t, Payload: requestPayload(r)})
	}
	l.publisher.Publish(ctx, msgs...)
}

// CreateRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) CreateRequest(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.CanActFor(employeeID) {
		return leave.LeaveRequestResponse{}, leave.ErrNotOwner
	}

	start, _ := calendar.ParseDate(req.StartDate)
	end, _ := calendar.ParseDate(req.EndDate)
	if end.Before(start) {
		return leave.LeaveRequestResponse{}, leave.ErrInvalidDateRange
	}

	emp, err := l.QuotaService.GetByID(ctx, employeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !emp.IsActive {
		return leave.LeaveRequestResponse{}, employee.ErrEmployeeInactive
	}

	now := l.now()
	request := leave.LeaveRequest{
		ID:         uuid.Must(uuid.NewV7()).String(),
		EmployeeID: employeeID,
		StartDate:  start,
		EndDate:    end,
		LeaveType:  strings.TrimSpace(req.LeaveType),
		Reason:     strings.TrimSpace(req.Reason),
		Days:       leave.RequestedDays(start, end),
		Status:     leave.LeaveRequestStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Locking the quota row first serializes requests of one employee,
		// which keeps the overlap check race free.
		quota, err := l.QuotaService.EnsureQuota(ctx, employeeID, request.QuotaYear())
		if err != nil {
			return err
		}

		overlap, err := l.LeaveRequestRepository.HasOverlap(ctx, employeeID, start, end)
		if err != nil {
			return fmt.Errorf("failed to check overlapping leave: %w", err)
		}
		if overlap {
			return leave.ErrOverlappingLeave
		}

		if !quota.CanReserve(request.Days) {
			return leave.ErrQuotaExceeded
		}
		if err := l.QuotaService.ReservePending(ctx, employeeID, quota.Year, request.Days); err != nil {
			return err
		}

		request, err = l.LeaveRequestRepository.Create(ctx, request)
		if err != nil {
			return fmt.Errorf("failed to create leave request: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.notifyAdmins(ctx, actor, notification.TypeLeaveRequested, request)
	return leave.ToRequestResponse(request), nil
}

// transition runs one workflow step on a locked request. apply adjusts the
// quota and the request for the target status.
func (l *LeaveServiceImpl) transition(ctx context.Context, requestID string, trigger workflow.Trigger, check func(leave.LeaveRequest) error, apply func(ctx context.Context, r *leave.LeaveRequest) error) (leave.LeaveRequest, error) {
	var request leave.LeaveRequest
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		r, err := l.LeaveRequestRepository.GetByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(r); err != nil {
				return err
			}
		}

		next, err := leave.RequestWorkflow.Fire(r.Status, trigger)
		if err != nil {
			return err
		}
		if _, err := l.QuotaService.GetForUpdate(ctx, r.EmployeeID, r.QuotaYear()); err != nil {
			return fmt.Errorf("failed to lock leave quota: %w", err)
		}

		r.Status = next
		r.UpdatedAt = l.now()
		if err := apply(ctx, &r); err != nil {
			return err
		}
		if err := l.LeaveRequestRepository.Update(ctx, r); err != nil {
			return fmt.Errorf("failed to update leave request: %w", err)
		}
		request = r
		return nil
	})
	return request, err
}

// Approve implements leave.LeaveService.
func (l *LeaveServiceImpl) Approve(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	if !actor.Can(user.PermissionLeaveApprove) {
		return leave.LeaveRequestResponse{}, user.ErrAdminPrivilegeRequired
	}

	request, err := l.transition(ctx, requestID, workflow.TriggerApprove, nil, func(ctx context.Context, r *leave.LeaveRequest) error {
		if err := l.QuotaService.MovePendingToTaken(ctx, r.EmployeeID, r.QuotaYear(), r.Days); err != nil {
			return fmt.Errorf("failed to commit leave quota: %w", err)
		}
		approvedAt := r.UpdatedAt
		r.ApprovedBy = &actor.EmployeeID
		r.ApprovedAt = &approvedAt
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	for _, m := range request.Months() {
		if _, err := l.recomputer.RecomputeMonthlyBalance(ctx, request.EmployeeID, m[0], m[1]); err != nil {
			slog.Error("failed to recompute monthly balance", "employee_id", request.EmployeeID, "year", m[0], "month", m[1], "error", err)
		}
	}

	l.publisher.Publish(ctx, notification.Message{
		EmployeeID: request.EmployeeID,
		Type:       notification.TypeLeaveApproved,
		Payload:    requestPayload(request),
	})
	return leave.ToRequestResponse(request), nil
}

// Reject implements leave.LeaveService.
func (l *LeaveServiceImpl) Reject(ctx context.Context, actor user.Actor, requestID string, req leave.RejectLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if !actor.Can(user.PermissionLeaveApprove) {
		return leave.LeaveRequestResponse{}, user.ErrAdminPrivilegeRequired
	}
	reason := strings.TrimSpace(req.Reason)

	request, err := l.transition(ctx, requestID, workflow.TriggerReject, nil, func(ctx context.Context, r *leave.LeaveRequest) error {
		if err := l.QuotaService.ReleasePending(ctx, r.EmployeeID, r.QuotaYear(), r.Days); err != nil {
			return fmt.Errorf("failed to release leave quota: %w", err)
		}
		if reason != "" {
			r.RejectionReason = &reason
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.publisher.Publish(ctx, notification.Message{
		EmployeeID: request.EmployeeID,
		Type:       notification.TypeLeaveRejected,
		Payload:    requestPayload(request),
	})
	return leave.ToRequestResponse(request), nil
}

// Cancel implements leave.LeaveService.
func (l *LeaveServiceImpl) Cancel(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	ownerOnly := func(r leave.LeaveRequest) error {
		if r.EmployeeID != actor.EmployeeID {
			return leave.ErrNotOwner
		}
		return nil
	}

	request, err := l.transition(ctx, requestID, workflow.TriggerCancel, ownerOnly, func(ctx context.Context, r *leave.LeaveRequest) error {
		if err := l.QuotaService.ReleasePending(ctx, r.EmployeeID, r.QuotaYear(), r.Days); err != nil {
			return fmt.Errorf("failed to release leave quota: %w", err)
		}
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	l.notifyAdmins(ctx, actor, notification.TypeLeaveCancelled, request)
	return leave.ToRequestResponse(request), nil
}

// GetRequest implements leave.LeaveService.
func (l *LeaveServiceImpl) GetRequest(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	request, err := l.LeaveRequestRepository.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.CanActFor(request.EmployeeID) && !actor.Can(user.PermissionViewAll) {
		return leave.LeaveRequestResponse{}, user.ErrNotOwner
	}
	return leave.ToRequestResponse(request), nil
}

// ListRequests implements leave.LeaveService.
func (l *LeaveServiceImpl) ListRequests(ctx context.Context, actor user.Actor, query leave.ListLeaveRequestQuery) (leave.ListLeaveRequestResponse, error) {
	filter, err := query.ToFilter()
	if err != nil {
		return leave.ListLeaveRequestResponse{}, err
	}
	if !actor.Can(user.PermissionViewAll) {
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	requests, total, err := l.LeaveRequestRepository.List(ctx, filter)
	if err != nil {
		return leave.ListLeaveRequestResponse{}, fmt.Errorf("failed to list leave requests: %w", err)
	}

	items := make([]leave.LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		items = append(items, leave.ToRequestResponse(r))
	}
	return leave.ListLeaveRequestResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// SetQuota implements leave.LeaveService.
func (l *LeaveServiceImpl) SetQuota(ctx context.Context, actor user.Actor, req leave.SetQuotaRequest) (leave.LeaveQuotaResponse, error) {
	var quota leave.LeaveQuota
	err := l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		quota, err = l.QuotaService.SetQuota(ctx, actor, req)
		return err
	})
	if err != nil {
		return leave.LeaveQuotaResponse{}, err
	}
	return leave.ToQuotaResponse(quota), nil
}
