package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const leaveQuotaColumns = `employee_id, year, annual_quota, leaves_taken, leaves_pending, created_at, updated_at`

type leaveQuotaRepositoryImpl struct {
	db *database.DB
}

func NewLeaveQuotaRepository(db *database.DB) leave.LeaveQuotaRepository {
	return &leaveQuotaRepositoryImpl{db: db}
}

func scanLeaveQuota(row pgx.Row) (leave.LeaveQuota, error) {
	var quota leave.LeaveQuota
	err := row.Scan(&quota.EmployeeID, &quota.Year, &quota.AnnualQuota, &quota.LeavesTaken, &quota.LeavesPending, &quota.CreatedAt, &quota.UpdatedAt)
	return quota, err
}

// Create implements leave.LeaveQuotaRepository. A concurrent create of the same
// row returns the existing one.
func (r *leaveQuotaRepositoryImpl) Create(ctx context.Context, quota leave.LeaveQuota) (leave.LeaveQuota, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_quotas (employee_id, year, annual_quota, leaves_taken, leaves_pending, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, year) DO NOTHING
	`
	if _, err := q.Exec(ctx, query,
		quota.EmployeeID, quota.Year, quota.AnnualQuota, quota.LeavesTaken, quota.LeavesPending, quota.CreatedAt, quota.UpdatedAt,
	); err != nil {
		return leave.LeaveQuota{}, fmt.Errorf("failed to create leave quota: %w", err)
	}
	return r.GetForUpdate(ctx, quota.EmployeeID, quota.Year)
}

// Get implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) Get(ctx context.Context, employeeID string, year int) (leave.LeaveQuota, error) {
	return r.getOne(ctx, `SELECT `+leaveQuotaColumns+` FROM leave_quotas WHERE employee_id = $1 AND year = $2`, employeeID, year)
}

// GetForUpdate implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) GetForUpdate(ctx context.Context, employeeID string, year int) (leave.LeaveQuota, error) {
	return r.getOne(ctx, `SELECT `+leaveQuotaColumns+` FROM leave_quotas WHERE employee_id = $1 AND year = $2 FOR UPDATE`, employeeID, year)
}

func (r *leaveQuotaRepositoryImpl) getOne(ctx context.Context, query string, args ...any) (leave.LeaveQuota, error) {
	q := GetQuerier(ctx, r.db)

	quota, err := scanLeaveQuota(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveQuota{}, leave.ErrLeaveQuotaNotFound
		}
		return leave.LeaveQuota{}, fmt.Errorf("failed to get leave quota: %w", err)
	}
	return quota, nil
}

// SetAnnualQuota implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) SetAnnualQuota(ctx context.Context, employeeID string, year int, annualQuota int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_quotas SET annual_quota = $3, updated_at = now()
		WHERE employee_id = $1 AND year = $2 AND leaves_taken + leaves_pending <= $3
	`, employeeID, year, annualQuota)
	if err != nil {
		return fmt.Errorf("failed to set annual quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, employeeID, year, leave.ErrQuotaBelowUsage)
	}
	return nil
}

// ReservePending implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) ReservePending(ctx context.Context, employeeID string, year int, days int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_quotas SET leaves_pending = leaves_pending + $3, updated_at = now()
		WHERE employee_id = $1 AND year = $2 AND leaves_taken + leaves_pending + $3 <= annual_quota
	`, employeeID, year, days)
	if err != nil {
		return fmt.Errorf("failed to reserve leave quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, employeeID, year, leave.ErrQuotaExceeded)
	}
	return nil
}

// ReleasePending implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) ReleasePending(ctx context.Context, employeeID string, year int, days int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_quotas SET leaves_pending = leaves_pending - $3, updated_at = now()
		WHERE employee_id = $1 AND year = $2 AND leaves_pending >= $3
	`, employeeID, year, days)
	if err != nil {
		return fmt.Errorf("failed to release leave quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, employeeID, year, fmt.Errorf("pending days below %d for %s/%d", days, employeeID, year))
	}
	return nil
}

// MovePendingToTaken implements leave.LeaveQuotaRepository.
func (r *leaveQuotaRepositoryImpl) MovePendingToTaken(ctx context.Context, employeeID string, year int, days int) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE leave_quotas
		SET leaves_pending = leaves_pending - $3, leaves_taken = leaves_taken + $3, updated_at = now()
		WHERE employee_id = $1 AND year = $2 AND leaves_pending >= $3
	`, employeeID, year, days)
	if err != nil {
		return fmt.Errorf("failed to commit leave quota: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOr(ctx, employeeID, year, fmt.Errorf("pending days below %d for %s/%d", days, employeeID, year))
	}
	return nil
}

// missingOr returns ErrLeaveQuotaNotFound when the row does not exist, otherwise guardErr.
func (r *leaveQuotaRepositoryImpl) missingOr(ctx context.Context, employeeID string, year int, guardErr error) error {
	if _, err := r.Get(ctx, employeeID, year); err != nil {
		return err
	}
	return guardErr
}
