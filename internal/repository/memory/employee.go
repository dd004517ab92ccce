package memory

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type employeeRepository struct {
	s *Store
}

func NewEmployeeRepository(s *Store) employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	defer r.s.acquire(ctx)()

	e, ok := r.s.t.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (r *employeeRepository) GetByChatUserID(ctx context.Context, chatUserID string) (employee.Employee, error) {
	defer r.s.acquire(ctx)()

	for _, e := range r.s.t.employees {
		if e.ChatUserID != nil && *e.ChatUserID == chatUserID {
			return e, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.employees,
		func(e employee.Employee) bool { return e.IsActive },
		func(a, b employee.Employee) bool { return a.FullName < b.FullName },
	), nil
}

func (r *employeeRepository) ListByRole(ctx context.Context, role user.Role) ([]employee.Employee, error) {
	defer r.s.acquire(ctx)()

	return sortedValues(r.s.t.employees,
		func(e employee.Employee) bool { return e.IsActive && e.Role == role },
		func(a, b employee.Employee) bool { return a.FullName < b.FullName },
	), nil
}
