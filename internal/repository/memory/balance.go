package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
)

type monthlyBalanceRepository struct {
	s *Store
}

func NewMonthlyBalanceRepository(s *Store) balance.MonthlyBalanceRepository {
	return &monthlyBalanceRepository{s: s}
}

func (r *monthlyBalanceRepository) Upsert(ctx context.Context, b balance.MonthlyBalance) error {
	defer r.s.acquire(ctx)()

	r.s.t.balances[monthKey{b.EmployeeID, b.Year, b.Month}] = b
	return nil
}

func (r *monthlyBalanceRepository) Get(ctx context.Context, employeeID string, year, month int) (balance.MonthlyBalance, error) {
	defer r.s.acquire(ctx)()

	b, ok := r.s.t.balances[monthKey{employeeID, year, month}]
	if !ok {
		return balance.MonthlyBalance{}, balance.ErrMonthlyBalanceNotFound
	}
	return b, nil
}

func (r *monthlyBalanceRepository) ListByMonth(ctx context.Context, year, month int) ([]balance.MonthlyBalance, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.balances,
		func(b balance.MonthlyBalance) bool { return b.Year == year && b.Month == month },
		func(a, b balance.MonthlyBalance) bool { return a.EmployeeID < b.EmployeeID },
	), nil
}

type compOffRepository struct {
	s *Store
}

func NewCompOffRepository(s *Store) balance.CompOffRepository {
	return &compOffRepository{s: s}
}

func (r *compOffRepository) Create(ctx context.Context, c balance.CompOff) (balance.CompOff, error) {
	defer r.s.acquire(ctx)()

	c.EarnedForDate = calendar.DateOf(c.EarnedForDate)
	if c.Status != balance.CompOffStatusCancelled {
		for _, existing := range r.s.t.compOffs {
			if existing.EmployeeID == c.EmployeeID && existing.EarnedForDate.Equal(c.EarnedForDate) &&
				existing.Status != balance.CompOffStatusCancelled {
				return balance.CompOff{}, balance.ErrCompOffExists
			}
		}
	}
	r.s.t.compOffs[c.ID] = c
	return c, nil
}

func (r *compOffRepository) GetByID(ctx context.Context, id string) (balance.CompOff, error) {
	defer r.s.acquire(ctx)()

	c, ok := r.s.t.compOffs[id]
	if !ok {
		return balance.CompOff{}, balance.ErrCompOffNotFound
	}
	return c, nil
}

func (r *compOffRepository) GetByIDForUpdate(ctx context.Context, id string) (balance.CompOff, error) {
	return r.GetByID(ctx, id)
}

func (r *compOffRepository) GetActiveByEarnedFor(ctx context.Context, employeeID string, earnedFor time.Time) (balance.CompOff, error) {
	defer r.s.acquire(ctx)()

	earnedFor = calendar.DateOf(earnedFor)
	for _, c := range r.s.t.compOffs {
		if c.EmployeeID == employeeID && c.EarnedForDate.Equal(earnedFor) && c.Status != balance.CompOffStatusCancelled {
			return c, nil
		}
	}
	return balance.CompOff{}, balance.ErrCompOffNotFound
}

func (r *compOffRepository) Update(ctx context.Context, c balance.CompOff) error {
	defer r.s.acquire(ctx)()

	existing, ok := r.s.t.compOffs[c.ID]
	if !ok {
		return balance.ErrCompOffNotFound
	}
	existing.Status, existing.UsedOn, existing.ExpiresAt, existing.UpdatedAt = c.Status, c.UsedOn, c.ExpiresAt, c.UpdatedAt
	r.s.t.compOffs[c.ID] = existing
	return nil
}

func (r *compOffRepository) List(ctx context.Context, f balance.CompOffFilter) ([]balance.CompOff, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.compOffs,
		func(c balance.CompOff) bool {
			if f.EmployeeID != nil && c.EmployeeID != *f.EmployeeID {
				return false
			}
			if f.Status != nil && c.Status != *f.Status {
				return false
			}
			return f.AvailableOn == nil || c.IsAvailableOn(*f.AvailableOn)
		},
		func(a, b balance.CompOff) bool { return a.EarnedForDate.After(b.EarnedForDate) },
	), nil
}

func (r *compOffRepository) ListEarnedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]balance.CompOff, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.compOffs,
		func(c balance.CompOff) bool { return c.EmployeeID == employeeID && within(c.EarnedDate, from, to) },
		func(a, b balance.CompOff) bool { return a.EarnedDate.Before(b.EarnedDate) },
	), nil
}
