package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
)

// deleteSiteVisitsOf cascades an attendance delete. Caller holds the lock.
func (s *Store) deleteSiteVisitsOf(attendanceID string) {
	for id, sv := range s.t.siteVisits {
		if sv.AttendanceID != attendanceID {
			continue
		}
		delete(s.t.siteVisits, id)
		for eid, e := range s.t.expenses {
			if e.SiteVisitID == id {
				delete(s.t.expenses, eid)
			}
		}
	}
}

type siteVisitRepository struct {
	s *Store
}

func NewSiteVisitRepository(s *Store) sitevisit.SiteVisitRepository {
	return &siteVisitRepository{s: s}
}

func (r *siteVisitRepository) Create(ctx context.Context, sv sitevisit.SiteVisit) (sitevisit.SiteVisit, error) {
	defer r.s.acquire(ctx)()

	for _, existing := range r.s.t.siteVisits {
		if existing.AttendanceID == sv.AttendanceID {
			return sitevisit.SiteVisit{}, sitevisit.ErrSiteVisitExists
		}
	}
	r.s.t.siteVisits[sv.ID] = sv
	return sv, nil
}

func (r *siteVisitRepository) GetByID(ctx context.Context, id string) (sitevisit.SiteVisit, error) {
	defer r.s.acquire(ctx)()

	sv, ok := r.s.t.siteVisits[id]
	if !ok {
		return sitevisit.SiteVisit{}, sitevisit.ErrSiteVisitNotFound
	}
	return sv, nil
}

func (r *siteVisitRepository) GetByIDForUpdate(ctx context.Context, id string) (sitevisit.SiteVisit, error) {
	return r.GetByID(ctx, id)
}

func (r *siteVisitRepository) GetByAttendanceID(ctx context.Context, attendanceID string) (sitevisit.SiteVisit, error) {
	defer r.s.acquire(ctx)()

	for _, sv := range r.s.t.siteVisits {
		if sv.AttendanceID == attendanceID {
			return sv, nil
		}
	}
	return sitevisit.SiteVisit{}, sitevisit.ErrSiteVisitNotFound
}

func (r *siteVisitRepository) Update(ctx context.Context, sv sitevisit.SiteVisit) error {
	defer r.s.acquire(ctx)()

	existing, ok := r.s.t.siteVisits[sv.ID]
	if !ok {
		return sitevisit.ErrSiteVisitNotFound
	}
	sv.AttendanceID, sv.EmployeeID, sv.VisitDate, sv.CreatedAt = existing.AttendanceID, existing.EmployeeID, existing.VisitDate, existing.CreatedAt
	r.s.t.siteVisits[sv.ID] = sv
	return nil
}

func (r *siteVisitRepository) DeleteByAttendanceID(ctx context.Context, attendanceID string) error {
	defer r.s.acquire(ctx)()

	r.s.deleteSiteVisitsOf(attendanceID)
	return nil
}

func (r *siteVisitRepository) List(ctx context.Context, f sitevisit.SiteVisitFilter) ([]sitevisit.SiteVisit, int64, error) {
	defer r.s.acquire(ctx)()

	items := sortedValues(r.s.t.siteVisits,
		func(sv sitevisit.SiteVisit) bool {
			if f.EmployeeID != nil && sv.EmployeeID != *f.EmployeeID {
				return false
			}
			if f.Status != nil && sv.Status != *f.Status {
				return false
			}
			if f.From != nil && sv.VisitDate.Before(*f.From) {
				return false
			}
			return f.To == nil || !sv.VisitDate.After(*f.To)
		},
		func(a, b sitevisit.SiteVisit) bool {
			if !a.VisitDate.Equal(b.VisitDate) {
				return a.VisitDate.After(b.VisitDate)
			}
			return a.CreatedAt.After(b.CreatedAt)
		},
	)
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}

type expenseRepository struct {
	s *Store
}

func NewExpenseRepository(s *Store) sitevisit.ExpenseRepository {
	return &expenseRepository{s: s}
}

func (r *expenseRepository) Create(ctx context.Context, e sitevisit.Expense) (sitevisit.Expense, error) {
	defer r.s.acquire(ctx)()

	if _, ok := r.s.t.siteVisits[e.SiteVisitID]; !ok {
		return sitevisit.Expense{}, sitevisit.ErrSiteVisitNotFound
	}
	r.s.t.expenses[e.ID] = e
	return e, nil
}

func (r *expenseRepository) GetByID(ctx context.Context, id string) (sitevisit.Expense, error) {
	defer r.s.acquire(ctx)()

	e, ok := r.s.t.expenses[id]
	if !ok {
		return sitevisit.Expense{}, sitevisit.ErrExpenseNotFound
	}
	return e, nil
}

func (r *expenseRepository) Update(ctx context.Context, e sitevisit.Expense) error {
	defer r.s.acquire(ctx)()

	existing, ok := r.s.t.expenses[e.ID]
	if !ok {
		return sitevisit.ErrExpenseNotFound
	}
	e.SiteVisitID, e.CreatedAt = existing.SiteVisitID, existing.CreatedAt
	r.s.t.expenses[e.ID] = e
	return nil
}

func (r *expenseRepository) Delete(ctx context.Context, id string) error {
	defer r.s.acquire(ctx)()

	if _, ok := r.s.t.expenses[id]; !ok {
		return sitevisit.ErrExpenseNotFound
	}
	delete(r.s.t.expenses, id)
	return nil
}

func (r *expenseRepository) ListBySiteVisit(ctx context.Context, siteVisitID string) ([]sitevisit.Expense, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.expenses,
		func(e sitevisit.Expense) bool { return e.SiteVisitID == siteVisitID },
		func(a, b sitevisit.Expense) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.ID < b.ID
		},
	), nil
}
