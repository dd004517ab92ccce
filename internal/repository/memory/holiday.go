package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
)

type holidayRepository struct {
	s *Store
}

func NewHolidayRepository(s *Store) calendar.HolidayRepository {
	return &holidayRepository{s: s}
}

func (r *holidayRepository) Create(ctx context.Context, h calendar.Holiday) (calendar.Holiday, error) {
	defer r.s.acquire(ctx)()

	h.Date = calendar.DateOf(h.Date)
	if _, exists := r.s.t.holidays[h.Date]; exists {
		return calendar.Holiday{}, calendar.ErrHolidayExists
	}
	r.s.t.holidays[h.Date] = h
	return h, nil
}

func (r *holidayRepository) Delete(ctx context.Context, date time.Time) error {
	defer r.s.acquire(ctx)()

	date = calendar.DateOf(date)
	if _, ok := r.s.t.holidays[date]; !ok {
		return calendar.ErrHolidayNotFound
	}
	delete(r.s.t.holidays, date)
	return nil
}

func (r *holidayRepository) GetByDate(ctx context.Context, date time.Time) (calendar.Holiday, error) {
	defer r.s.acquire(ctx)()

	h, ok := r.s.t.holidays[calendar.DateOf(date)]
	if !ok {
		return calendar.Holiday{}, calendar.ErrHolidayNotFound
	}
	return h, nil
}

func (r *holidayRepository) ListBetween(ctx context.Context, from, to time.Time) ([]calendar.Holiday, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.holidays,
		func(h calendar.Holiday) bool { return within(h.Date, from, to) },
		func(a, b calendar.Holiday) bool { return a.Date.Before(b.Date) },
	), nil
}
