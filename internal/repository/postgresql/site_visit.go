package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const siteVisitColumns = `
	id, attendance_id, employee_id, visit_date, location, company_name, num_gauges,
	visit_summary, conclusion, status, submitted_at, submitted_total,
	reviewed_by, reviewed_at, rejection_reason, created_at, updated_at`

type siteVisitRepositoryImpl struct {
	db *database.DB
}

func NewSiteVisitRepository(db *database.DB) sitevisit.SiteVisitRepository {
	return &siteVisitRepositoryImpl{db: db}
}

func scanSiteVisit(row pgx.Row) (sitevisit.SiteVisit, error) {
	var sv sitevisit.SiteVisit
	err := row.Scan(
		&sv.ID, &sv.AttendanceID, &sv.EmployeeID, &sv.VisitDate, &sv.Location, &sv.CompanyName, &sv.NumGauges,
		&sv.VisitSummary, &sv.Conclusion, &sv.Status, &sv.SubmittedAt, &sv.SubmittedTotal,
		&sv.ReviewedBy, &sv.ReviewedAt, &sv.RejectionReason, &sv.CreatedAt, &sv.UpdatedAt,
	)
	return sv, err
}

// Create implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) Create(ctx context.Context, sv sitevisit.SiteVisit) (sitevisit.SiteVisit, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO site_visits (
			id, attendance_id, employee_id, visit_date, location, company_name, num_gauges,
			visit_summary, conclusion, status, submitted_at, submitted_total,
			reviewed_by, reviewed_at, rejection_reason, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING ` + siteVisitColumns

	created, err := scanSiteVisit(q.QueryRow(ctx, query,
		sv.ID, sv.AttendanceID, sv.EmployeeID, sv.VisitDate, sv.Location, sv.CompanyName, sv.NumGauges,
		sv.VisitSummary, sv.Conclusion, sv.Status, sv.SubmittedAt, sv.SubmittedTotal,
		sv.ReviewedBy, sv.ReviewedAt, sv.RejectionReason, sv.CreatedAt, sv.UpdatedAt,
	))
	if err != nil {
		if database.IsUniqueViolation(err, "site_visits_attendance_id_key") {
			return sitevisit.SiteVisit{}, sitevisit.ErrSiteVisitExists
		}
		return sitevisit.SiteVisit{}, fmt.Errorf("failed to create site visit: %w", err)
	}
	return created, nil
}

// GetByID implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) GetByID(ctx context.Context, id string) (sitevisit.SiteVisit, error) {
	return r.getOne(ctx, `SELECT `+siteVisitColumns+` FROM site_visits WHERE id = $1`, id)
}

// GetByIDForUpdate implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (sitevisit.SiteVisit, error) {
	return r.getOne(ctx, `SELECT `+siteVisitColumns+` FROM site_visits WHERE id = $1 FOR UPDATE`, id)
}

// GetByAttendanceID implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) GetByAttendanceID(ctx context.Context, attendanceID string) (sitevisit.SiteVisit, error) {
	return r.getOne(ctx, `SELECT `+siteVisitColumns+` FROM site_visits WHERE attendance_id = $1`, attendanceID)
}

func (r *siteVisitRepositoryImpl) getOne(ctx context.Context, query string, args ...any) (sitevisit.SiteVisit, error) {
	q := GetQuerier(ctx, r.db)

	sv, err := scanSiteVisit(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sitevisit.SiteVisit{}, sitevisit.ErrSiteVisitNotFound
		}
		return sitevisit.SiteVisit{}, fmt.Errorf("failed to get site visit: %w", err)
	}
	return sv, nil
}

// Update implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) Update(ctx context.Context, sv sitevisit.SiteVisit) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE site_visits SET
			location = $2, company_name = $3, num_gauges = $4, visit_summary = $5, conclusion = $6,
			status = $7, submitted_at = $8, submitted_total = $9,
			reviewed_by = $10, reviewed_at = $11, rejection_reason = $12, updated_at = $13
		WHERE id = $1
	`,
		sv.ID, sv.Location, sv.CompanyName, sv.NumGauges, sv.VisitSummary, sv.Conclusion,
		sv.Status, sv.SubmittedAt, sv.SubmittedTotal,
		sv.ReviewedBy, sv.ReviewedAt, sv.RejectionReason, sv.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update site visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sitevisit.ErrSiteVisitNotFound
	}
	return nil
}

// DeleteByAttendanceID implements sitevisit.SiteVisitRepository.
// Expenses go with the visit through ON DELETE CASCADE.
func (r *siteVisitRepositoryImpl) DeleteByAttendanceID(ctx context.Context, attendanceID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM site_visits WHERE attendance_id = $1`, attendanceID); err != nil {
		return fmt.Errorf("failed to delete site visit: %w", err)
	}
	return nil
}

// List implements sitevisit.SiteVisitRepository.
func (r *siteVisitRepositoryImpl) List(ctx context.Context, filter sitevisit.SiteVisitFilter) ([]sitevisit.SiteVisit, int64, error) {
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
	if filter.From != nil {
		where += fmt.Sprintf(" AND visit_date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		where += fmt.Sprintf(" AND visit_date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM site_visits WHERE "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count site visits: %w", err)
	}

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM site_visits
		WHERE %s
		ORDER BY visit_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d
	`, siteVisitColumns, where, argIdx, argIdx+1), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query site visits: %w", err)
	}
	defer rows.Close()

	items := make([]sitevisit.SiteVisit, 0)
	for rows.Next() {
		sv, err := scanSiteVisit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan site visit: %w", err)
		}
		items = append(items, sv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
