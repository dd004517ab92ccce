package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const expenseColumns = `id, site_visit_id, expense_type, amount, description, notes, created_at, updated_at`

type expenseRepositoryImpl struct {
	db *database.DB
}

func NewExpenseRepository(db *database.DB) sitevisit.ExpenseRepository {
	return &expenseRepositoryImpl{db: db}
}

func scanExpense(row pgx.Row) (sitevisit.Expense, error) {
	var e sitevisit.Expense
	err := row.Scan(&e.ID, &e.SiteVisitID, &e.ExpenseType, &e.Amount, &e.Description, &e.Notes, &e.CreatedAt, &e.UpdatedAt)
	return e, err
}

// Create implements sitevisit.ExpenseRepository.
func (r *expenseRepositoryImpl) Create(ctx context.Context, e sitevisit.Expense) (sitevisit.Expense, error) {
	q := GetQuerier(ctx, r.db)

	created, err := scanExpense(q.QueryRow(ctx, `
		INSERT INTO site_visit_expenses (id, site_visit_id, expense_type, amount, description, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+expenseColumns,
		e.ID, e.SiteVisitID, e.ExpenseType, e.Amount, e.Description, e.Notes, e.CreatedAt, e.UpdatedAt,
	))
	if err != nil {
		return sitevisit.Expense{}, fmt.Errorf("failed to create expense: %w", err)
	}
	return created, nil
}

// GetByID implements sitevisit.ExpenseRepository.
func (r *expenseRepositoryImpl) GetByID(ctx context.Context, id string) (sitevisit.Expense, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanExpense(q.QueryRow(ctx, `SELECT `+expenseColumns+` FROM site_visit_expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sitevisit.Expense{}, sitevisit.ErrExpenseNotFound
		}
		return sitevisit.Expense{}, fmt.Errorf("failed to get expense: %w", err)
	}
	return e, nil
}

// Update implements sitevisit.ExpenseRepository.
func (r *expenseRepositoryImpl) Update(ctx context.Context, e sitevisit.Expense) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE site_visit_expenses SET expense_type = $2, amount = $3, description = $4, notes = $5, updated_at = $6
		WHERE id = $1
	`, e.ID, e.ExpenseType, e.Amount, e.Description, e.Notes, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sitevisit.ErrExpenseNotFound
	}
	return nil
}

// Delete implements sitevisit.ExpenseRepository.
func (r *expenseRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM site_visit_expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sitevisit.ErrExpenseNotFound
	}
	return nil
}

// ListBySiteVisit implements sitevisit.ExpenseRepository.
func (r *expenseRepositoryImpl) ListBySiteVisit(ctx context.Context, siteVisitID string) ([]sitevisit.Expense, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx,
		`SELECT `+expenseColumns+` FROM site_visit_expenses WHERE site_visit_id = $1 ORDER BY created_at, id`, siteVisitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	items := make([]sitevisit.Expense, 0)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
