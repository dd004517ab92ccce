package attendance

import (
	"context"
	"time"
)

type AttendanceRepository interface {
	Create(ctx context.Context, a Attendance) (Attendance, error)
	Update(ctx context.Context, a Attendance) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Attendance, error)
	GetByIDForUpdate(ctx context.Context, id string) (Attendance, error)
	// GetByEmployeeAndDateForUpdate locks the (employee, date) row when it exists.
	GetByEmployeeAndDateForUpdate(ctx context.Context, employeeID string, date time.Time) (Attendance, error)
	ListByEmployeeBetween(ctx context.Context, employeeID string, from, to time.Time) ([]Attendance, error)
	List(ctx context.Context, filter AttendanceFilter) ([]Attendance, int64, error)
}
