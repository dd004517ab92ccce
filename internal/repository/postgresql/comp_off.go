package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const compOffColumns = `id, employee_id, earned_date, earned_for_date, status, used_on, expires_at, created_at, updated_at`

type compOffRepositoryImpl struct {
	db *database.DB
}

func NewCompOffRepository(db *database.DB) balance.CompOffRepository {
	return &compOffRepositoryImpl{db: db}
}

func scanCompOff(row pgx.Row) (balance.CompOff, error) {
	var c balance.CompOff
	err := row.Scan(&c.ID, &c.EmployeeID, &c.EarnedDate, &c.EarnedForDate, &c.Status, &c.UsedOn, &c.ExpiresAt, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// Create implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) Create(ctx context.Context, c balance.CompOff) (balance.CompOff, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO comp_offs (id, employee_id, earned_date, earned_for_date, status, used_on, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + compOffColumns

	created, err := scanCompOff(q.QueryRow(ctx, query,
		c.ID, c.EmployeeID, c.EarnedDate, c.EarnedForDate, c.Status, c.UsedOn, c.ExpiresAt, c.CreatedAt, c.UpdatedAt))
	if err != nil {
		if database.IsUniqueViolation(err, "comp_offs_active_earned_for_key") {
			return balance.CompOff{}, balance.ErrCompOffExists
		}
		return balance.CompOff{}, fmt.Errorf("failed to create comp-off: %w", err)
	}
	return created, nil
}

// GetByID implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) GetByID(ctx context.Context, id string) (balance.CompOff, error) {
	return r.getOne(ctx, `SELECT `+compOffColumns+` FROM comp_offs WHERE id = $1`, id)
}

// GetByIDForUpdate implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (balance.CompOff, error) {
	return r.getOne(ctx, `SELECT `+compOffColumns+` FROM comp_offs WHERE id = $1 FOR UPDATE`, id)
}

// GetActiveByEarnedFor implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) GetActiveByEarnedFor(ctx context.Context, employeeID string, earnedFor time.Time) (balance.CompOff, error) {
	return r.getOne(ctx,
		`SELECT `+compOffColumns+` FROM comp_offs
		 WHERE employee_id = $1 AND earned_for_date = $2 AND status <> 'cancelled'
		 FOR UPDATE`,
		employeeID, earnedFor)
}

func (r *compOffRepositoryImpl) getOne(ctx context.Context, query string, args ...any) (balance.CompOff, error) {
	q := GetQuerier(ctx, r.db)

	c, err := scanCompOff(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return balance.CompOff{}, balance.ErrCompOffNotFound
		}
		return balance.CompOff{}, fmt.Errorf("failed to get comp-off: %w", err)
	}
	return c, nil
}

// Update implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) Update(ctx context.Context, c balance.CompOff) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx,
		`UPDATE comp_offs SET status = $2, used_on = $3, expires_at = $4, updated_at = $5 WHERE id = $1`,
		c.ID, c.Status, c.UsedOn, c.ExpiresAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update comp-off: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return balance.ErrCompOffNotFound
	}
	return nil
}

// List implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) List(ctx context.Context, filter balance.CompOffFilter) ([]balance.CompOff, error) {
	q := GetQuerier(ctx, r.db)

	where := "TRUE"
	args := []any{}
	argIdx := 1

	if filter.EmployeeID != nil {
		where += fmt.Sprintf(" AND employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil {
		where += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.AvailableOn != nil {
		where += fmt.Sprintf(" AND status = 'available' AND (expires_at IS NULL OR expires_at > $%d)", argIdx)
		args = append(args, *filter.AvailableOn)
	}

	rows, err := q.Query(ctx, `SELECT `+compOffColumns+` FROM comp_offs WHERE `+where+` ORDER BY earned_for_date DESC`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-offs: %w", err)
	}
	defer rows.Close()

	return collectCompOffs(rows)
}

// ListEarnedBetween implements balance.CompOffRepository.
func (r *compOffRepositoryImpl) ListEarnedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]balance.CompOff, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+compOffColumns+` FROM comp_offs
		 WHERE employee_id = $1 AND earned_date BETWEEN $2 AND $3
		 ORDER BY earned_date`,
		employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-offs: %w", err)
	}
	defer rows.Close()

	return collectCompOffs(rows)
}

func collectCompOffs(rows pgx.Rows) ([]balance.CompOff, error) {
	items := make([]balance.CompOff, 0)
	for rows.Next() {
		c, err := scanCompOff(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comp-off: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
