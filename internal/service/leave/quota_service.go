package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// DefaultAnnualQuota is used when no quota row exists for a year.
const DefaultAnnualQuota = 12

type QuotaService struct {
	leave.LeaveQuotaRepository
	employee.EmployeeRepository
	defaultQuota int
	now          func() time.Time
}

func NewQuotaService(leaveQuotaRepository leave.LeaveQuotaRepository, employeeRepository employee.EmployeeRepository, defaultQuota int) *QuotaService {
	if defaultQuota <= 0 {
		defaultQuota = DefaultAnnualQuota
	}
	return &QuotaService{
		LeaveQuotaRepository: leaveQuotaRepository,
		EmployeeRepository:   employeeRepository,
		defaultQuota:         defaultQuota,
		now:                  time.Now,
	}
}

// EnsureQuota returns the locked quota row for (employee, year), creating it
// with the default allowance on first use. Call it inside a transaction.
func (q *QuotaService) EnsureQuota(ctx context.Context, employeeID string, year int) (leave.LeaveQuota, error) {
	quota, err := q.LeaveQuotaRepository.GetForUpdate(ctx, employeeID, year)
	if err == nil {
		return quota, nil
	}
	if !errors.Is(err, leave.ErrLeaveQuotaNotFound) {
		return leave.LeaveQuota{}, fmt.Errorf("failed to get leave quota: %w", err)
	}

	now := q.now()
	quota, err = q.LeaveQuotaRepository.Create(ctx, leave.LeaveQuota{
		EmployeeID:  employeeID,
		Year:        year,
		AnnualQuota: q.defaultQuota,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return leave.LeaveQuota{}, fmt.Errorf("failed to create leave quota: %w", err)
	}
	slog.Info("leave quota created", "employee_id", employeeID, "year", year, "annual_quota", quota.AnnualQuota)
	return quota, nil
}

// GetQuota reads a quota row. A year without a row reports the default
// allowance with nothing taken.
func (q *QuotaService) GetQuota(ctx context.Context, actor user.Actor, employeeID string, year int) (leave.LeaveQuotaResponse, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.CanActFor(employeeID) && !actor.Can(user.PermissionViewAll) {
		return leave.LeaveQuotaResponse{}, user.ErrNotOwner
	}

	quota, err := q.LeaveQuotaRepository.Get(ctx, employeeID, year)
	if errors.Is(err, leave.ErrLeaveQuotaNotFound) {
		if _, err := q.EmployeeRepository.GetByID(ctx, employeeID); err != nil {
			return leave.LeaveQuotaResponse{}, err
		}
		return leave.ToQuotaResponse(leave.LeaveQuota{
			EmployeeID:  employeeID,
			Year:        year,
			AnnualQuota: q.defaultQuota,
		}), nil
	}
	if err != nil {
		return leave.LeaveQuotaResponse{}, fmt.Errorf("failed to get leave quota: %w", err)
	}
	return leave.ToQuotaResponse(quota), nil
}

// SetQuota overrides the annual allowance. The caller runs it in a
// transaction so the row lock covers the usage check.
func (q *QuotaService) SetQuota(ctx context.Context, actor user.Actor, req leave.SetQuotaRequest) (leave.LeaveQuota, error) {
	if !actor.Can(user.PermissionLeaveQuotaManage) {
		return leave.LeaveQuota{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return leave.LeaveQuota{}, err
	}
	if _, err := q.EmployeeRepository.GetByID(ctx, req.EmployeeID); err != nil {
		return leave.LeaveQuota{}, err
	}

	quota, err := q.EnsureQuota(ctx, req.EmployeeID, req.Year)
	if err != nil {
		return leave.LeaveQuota{}, err
	}
	if quota.LeavesTaken+quota.LeavesPending > req.AnnualQuota {
		return leave.LeaveQuota{}, leave.ErrQuotaBelowUsage
	}
	if err := q.LeaveQuotaRepository.SetAnnualQuota(ctx, req.EmployeeID, req.Year, req.AnnualQuota); err != nil {
		return leave.LeaveQuota{}, err
	}

	quota.AnnualQuota = req.AnnualQuota
	slog.Info("leave quota updated", "employee_id", req.EmployeeID, "year", req.Year, "annual_quota", req.AnnualQuota, "by", actor.EmployeeID)
	return quota, nil
}
