package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

func strPtr(s string) *string { return &s }

// ==========================================
// DEVELOPMENT EMPLOYEES
// ==========================================

// Fixed ids so local tokens survive restarts of the in-memory store.
const (
	DevAdminID     = "0192f0c8-0000-7000-8000-000000000001"
	DevEmployeeID  = "0192f0c8-0000-7000-8000-000000000002"
	DevEmployee2ID = "0192f0c8-0000-7000-8000-000000000003"
)

// GetDevEmployees returns the employees seeded when DB_DRIVER=memory.
// In production the HR system owns this table.
func GetDevEmployees(now time.Time) []employee.Employee {
	return []employee.Employee{
		{ID: DevAdminID, FullName: "Dewi Admin", Email: "admin@example.com", Role: user.RoleAdmin, ChatUserID: strPtr("dev-admin"), IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: DevEmployeeID, FullName: "Budi Santoso", Email: "budi@example.com", Role: user.RoleEmployee, ChatUserID: strPtr("dev-budi"), IsActive: true, CreatedAt: now, UpdatedAt: now},
		{ID: DevEmployee2ID, FullName: "Sari Wulandari", Email: "sari@example.com", Role: user.RoleEmployee, IsActive: true, CreatedAt: now, UpdatedAt: now},
	}
}

// ==========================================
// DEFAULT HOLIDAYS
// ==========================================

// GetDefaultHolidays returns the fixed-date national holidays (Indonesia) for
// year. Moveable feasts are declared by an admin each year.
func GetDefaultHolidays(year int) []calendar.Holiday {
	day := func(m time.Month, d int) time.Time { return time.Date(year, m, d, 0, 0, 0, 0, time.UTC) }
	return []calendar.Holiday{
		{Date: day(time.January, 1), Name: "Tahun Baru Masehi"},
		{Date: day(time.May, 1), Name: "Hari Buruh Internasional"},
		{Date: day(time.June, 1), Name: "Hari Lahir Pancasila"},
		{Date: day(time.August, 17), Name: "Hari Kemerdekaan Republik Indonesia"},
		{Date: day(time.December, 25), Name: "Hari Raya Natal"},
	}
}

// EmployeeSeeder is implemented by the in-memory store.
type EmployeeSeeder interface {
	SeedEmployee(e employee.Employee)
}

// SeedDevelopment loads the development employees and this year's default
// holidays. Holidays that already exist are kept.
func SeedDevelopment(ctx context.Context, employees EmployeeSeeder, holidays calendar.HolidayRepository, now time.Time) error {
	for _, e := range GetDevEmployees(now) {
		employees.SeedEmployee(e)
	}
	for _, h := range GetDefaultHolidays(now.Year()) {
		h.CreatedAt = now
		if _, err := holidays.Create(ctx, h); err != nil && !errors.Is(err, calendar.ErrHolidayExists) {
			return fmt.Errorf("failed to seed holiday %s: %w", h.Date.Format(calendar.DateLayout), err)
		}
	}
	return nil
}
