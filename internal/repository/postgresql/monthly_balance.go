package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const monthlyBalanceColumns = `
	employee_id, year, month, total_hours_worked, expected_hours, balance_hours,
	working_days, days_present, days_wfh, days_half_day, days_on_leave,
	comp_off_earned, comp_off_used, comp_off_balance`

type monthlyBalanceRepositoryImpl struct {
	db *database.DB
}

func NewMonthlyBalanceRepository(db *database.DB) balance.MonthlyBalanceRepository {
	return &monthlyBalanceRepositoryImpl{db: db}
}

func scanMonthlyBalance(row pgx.Row) (balance.MonthlyBalance, error) {
	var b balance.MonthlyBalance
	err := row.Scan(
		&b.EmployeeID, &b.Year, &b.Month, &b.TotalHoursWorked, &b.ExpectedHours, &b.BalanceHours,
		&b.WorkingDays, &b.DaysPresent, &b.DaysWFH, &b.DaysHalfDay, &b.DaysOnLeave,
		&b.CompOffEarned, &b.CompOffUsed, &b.CompOffBalance,
	)
	return b, err
}

// Upsert implements balance.MonthlyBalanceRepository.
func (r *monthlyBalanceRepositoryImpl) Upsert(ctx context.Context, b balance.MonthlyBalance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO monthly_balances (` + monthlyBalanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (employee_id, year, month) DO UPDATE SET
			total_hours_worked = EXCLUDED.total_hours_worked,
			expected_hours     = EXCLUDED.expected_hours,
			balance_hours      = EXCLUDED.balance_hours,
			working_days       = EXCLUDED.working_days,
			days_present       = EXCLUDED.days_present,
			days_wfh           = EXCLUDED.days_wfh,
			days_half_day      = EXCLUDED.days_half_day,
			days_on_leave      = EXCLUDED.days_on_leave,
			comp_off_earned    = EXCLUDED.comp_off_earned,
			comp_off_used      = EXCLUDED.comp_off_used,
			comp_off_balance   = EXCLUDED.comp_off_balance
	`

	_, err := q.Exec(ctx, query,
		b.EmployeeID, b.Year, b.Month, b.TotalHoursWorked, b.ExpectedHours, b.BalanceHours,
		b.WorkingDays, b.DaysPresent, b.DaysWFH, b.DaysHalfDay, b.DaysOnLeave,
		b.CompOffEarned, b.CompOffUsed, b.CompOffBalance,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert monthly balance: %w", err)
	}
	return nil
}

// Get implements balance.MonthlyBalanceRepository.
func (r *monthlyBalanceRepositoryImpl) Get(ctx context.Context, employeeID string, year, month int) (balance.MonthlyBalance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanMonthlyBalance(q.QueryRow(ctx,
		`SELECT `+monthlyBalanceColumns+` FROM monthly_balances WHERE employee_id = $1 AND year = $2 AND month = $3`,
		employeeID, year, month))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return balance.MonthlyBalance{}, balance.ErrMonthlyBalanceNotFound
		}
		return balance.MonthlyBalance{}, fmt.Errorf("failed to get monthly balance: %w", err)
	}
	return b, nil
}

// ListByMonth implements balance.MonthlyBalanceRepository.
func (r *monthlyBalanceRepositoryImpl) ListByMonth(ctx context.Context, year, month int) ([]balance.MonthlyBalance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+monthlyBalanceColumns+` FROM monthly_balances WHERE year = $1 AND month = $2 ORDER BY employee_id`,
		year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly balances: %w", err)
	}
	defer rows.Close()

	items := make([]balance.MonthlyBalance, 0)
	for rows.Next() {
		b, err := scanMonthlyBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan monthly balance: %w", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}
