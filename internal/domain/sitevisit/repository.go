package sitevisit

import "context"

type SiteVisitRepository interface {
	Create(ctx context.Context, sv SiteVisit) (SiteVisit, error)
	GetByID(ctx context.Context, id string) (SiteVisit, error)
	GetByIDForUpdate(ctx context.Context, id string) (SiteVisit, error)
	GetByAttendanceID(ctx context.Context, attendanceID string) (SiteVisit, error)
	Update(ctx context.Context, sv SiteVisit) error
	// DeleteByAttendanceID removes the visit and its expenses; no-op when absent.
	DeleteByAttendanceID(ctx context.Context, attendanceID string) error
	List(ctx context.Context, filter SiteVisitFilter) ([]SiteVisit, int64, error)
}

type ExpenseRepository interface {
	Create(ctx context.Context, e Expense) (Expense, error)
	GetByID(ctx context.Context, id string) (Expense, error)
	Update(ctx context.Context, e Expense) error
	Delete(ctx context.Context, id string) error
	ListBySiteVisit(ctx context.Context, siteVisitID string) ([]Expense, error)
}
