package memory

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
)

type attendanceRepository struct {
	s *Store
}

func NewAttendanceRepository(s *Store) attendance.AttendanceRepository {
	return &attendanceRepository{s: s}
}

func (r *attendanceRepository) Create(ctx context.Context, a attendance.Attendance) (attendance.Attendance, error) {
	defer r.s.acquire(ctx)()

	a.Date = calendar.DateOf(a.Date)
	for _, existing := range r.s.t.attendances {
		if existing.EmployeeID == a.EmployeeID && existing.Date.Equal(a.Date) {
			return attendance.Attendance{}, attendance.ErrAlreadyMarked
		}
	}
	r.s.t.attendances[a.ID] = a
	return a, nil
}

func (r *attendanceRepository) Update(ctx context.Context, a attendance.Attendance) error {
	defer r.s.acquire(ctx)()

	existing, ok := r.s.t.attendances[a.ID]
	if !ok {
		return attendance.ErrAttendanceNotFound
	}
	// employee, date and created_at are immutable
	a.EmployeeID, a.Date, a.CreatedAt = existing.EmployeeID, existing.Date, existing.CreatedAt
	r.s.t.attendances[a.ID] = a
	return nil
}

// Delete removes the record together with its site visit and expenses.
func (r *attendanceRepository) Delete(ctx context.Context, id string) error {
	defer r.s.acquire(ctx)()

	if _, ok := r.s.t.attendances[id]; !ok {
		return attendance.ErrAttendanceNotFound
	}
	delete(r.s.t.attendances, id)
	r.s.deleteSiteVisitsOf(id)
	return nil
}

func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Attendance, error) {
	defer r.s.acquire(ctx)()

	a, ok := r.s.t.attendances[id]
	if !ok {
		return attendance.Attendance{}, attendance.ErrAttendanceNotFound
	}
	return a, nil
}

func (r *attendanceRepository) GetByIDForUpdate(ctx context.Context, id string) (attendance.Attendance, error) {
	return r.GetByID(ctx, id)
}

func (r *attendanceRepository) GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (attendance.Attendance, error) {
	defer r.s.acquire(ctx)()

	date = calendar.DateOf(date)
	for _, a := range r.s.t.attendances {
		if a.EmployeeID == employeeID && a.Date.Equal(date) {
			return a, nil
		}
	}
	return attendance.Attendance{}, attendance.ErrAttendanceNotFound
}

func (r *attendanceRepository) ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]attendance.Attendance, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.attendances,
		func(a attendance.Attendance) bool { return a.EmployeeID == employeeID && within(a.Date, from, to) },
		func(a, b attendance.Attendance) bool { return a.Date.Before(b.Date) },
	), nil
}

func (r *attendanceRepository) List(ctx context.Context, f attendance.AttendanceFilter) ([]attendance.Attendance, int64, error) {
	defer r.s.acquire(ctx)()

	items := sortedValues(r.s.t.attendances,
		func(a attendance.Attendance) bool {
			if f.EmployeeID != nil && a.EmployeeID != *f.EmployeeID {
				return false
			}
			if f.From != nil && a.Date.Before(*f.From) {
				return false
			}
			if f.To != nil && a.Date.After(*f.To) {
				return false
			}
			return f.Status == nil || a.Status == *f.Status
		},
		func(a, b attendance.Attendance) bool {
			if !a.Date.Equal(b.Date) {
				return a.Date.After(b.Date)
			}
			return a.EmployeeID < b.EmployeeID
		},
	)
	return paginate(items, f.Page, f.Limit), int64(len(items)), nil
}
