package balance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	calendarService "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
)

var (
	employeeActor = user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}
	otherActor    = user.Actor{EmployeeID: "emp-2", Role: user.RoleEmployee}
	adminActor    = user.Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}
)

type testEnv struct {
	svc         *BalanceServiceImpl
	compOffs    balance.CompOffRepository
	attendances attendance.AttendanceRepository
}

func newTestEnv(t *testing.T, today time.Time) *testEnv {
	t.Helper()

	store := memory.NewStore()
	for _, e := range []employee.Employee{
		{ID: "emp-1", FullName: "Budi", Role: user.RoleEmployee, IsActive: true},
		{ID: "emp-2", FullName: "Sari", Role: user.RoleEmployee, IsActive: true},
		{ID: "emp-3", FullName: "Former", Role: user.RoleEmployee, IsActive: false},
		{ID: "adm-1", FullName: "Admin", Role: user.RoleAdmin, IsActive: true},
	} {
		store.SeedEmployee(e)
	}

	env := &testEnv{
		compOffs:    memory.NewCompOffRepository(store),
		attendances: memory.NewAttendanceRepository(store),
	}
	env.svc = NewBalanceService(
		store,
		memory.NewMonthlyBalanceRepository(store),
		env.compOffs,
		env.attendances,
		memory.NewLeaveRequestRepository(store),
		memory.NewEmployeeRepository(store),
		calendarService.NewCalendarService(memory.NewHolidayRepository(store), []time.Weekday{time.Saturday, time.Sunday}),
		balance.Policy{StandardDayHours: decimal.NewFromInt(8)},
		time.UTC,
	)
	env.svc.now = func() time.Time { return today }
	return env
}

func createBalanceTestCredit(t *testing.T, env *testEnv, id, employeeID string, earned time.Time, expires *time.Time) {
	t.Helper()
	_, err := env.compOffs.Create(context.Background(), balance.CompOff{
		ID:            id,
		EmployeeID:    employeeID,
		EarnedDate:    earned,
		EarnedForDate: earned,
		Status:        balance.CompOffStatusAvailable,
		ExpiresAt:     expires,
		CreatedAt:     earned,
		UpdatedAt:     earned,
	})
	require.NoError(t, err)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestUseCompOff_OnlyOnce(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	createBalanceTestCredit(t, env, "co-1", "emp-1", date(2026, 3, 7), nil)

	used, err := env.svc.UseCompOff(ctx, employeeActor, "co-1", balance.UseCompOffRequest{UsedOn: "2026-03-12"})
	require.NoError(t, err)
	assert.Equal(t, balance.CompOffStatusUsed, used.Status)
	require.NotNil(t, used.UsedOn)
	assert.Equal(t, "2026-03-12", *used.UsedOn)

	_, err = env.svc.UseCompOff(ctx, employeeActor, "co-1", balance.UseCompOffRequest{})
	assert.ErrorIs(t, err, balance.ErrCompOffNotAvailable)

	b, err := env.svc.GetMonthlyBalance(ctx, employeeActor, "", 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, b.CompOffEarned)
	assert.Equal(t, 1, b.CompOffUsed)
	assert.Equal(t, 0, b.CompOffBalance)
}

func TestUseCompOff_Rejections(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	expired := date(2026, 3, 9)
	createBalanceTestCredit(t, env, "co-expired", "emp-1", date(2026, 1, 4), &expired)
	createBalanceTestCredit(t, env, "co-mine", "emp-1", date(2026, 3, 1), nil)

	tests := []struct {
		name    string
		actor   user.Actor
		id      string
		req     balance.UseCompOffRequest
		wantErr error
	}{
		{name: "expired", actor: employeeActor, id: "co-expired", wantErr: balance.ErrCompOffNotAvailable},
		{name: "another employee", actor: otherActor, id: "co-mine", wantErr: balance.ErrNotOwner},
		{name: "unknown credit", actor: employeeActor, id: "nope", wantErr: balance.ErrCompOffNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.UseCompOff(ctx, tt.actor, tt.id, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("bad date", func(t *testing.T) {
		_, err := env.svc.UseCompOff(ctx, employeeActor, "co-mine", balance.UseCompOffRequest{UsedOn: "12/03/2026"})
		assert.Error(t, err)
	})
}

func TestListCompOffs_LazyExpiry(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	expired := date(2026, 3, 9)
	createBalanceTestCredit(t, env, "co-expired", "emp-1", date(2026, 1, 4), &expired)
	createBalanceTestCredit(t, env, "co-live", "emp-1", date(2026, 3, 1), nil)

	all, err := env.svc.ListCompOffs(ctx, employeeActor, balance.ListCompOffQuery{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	statuses := map[string]balance.CompOffStatus{}
	for _, c := range all {
		statuses[c.ID] = c.Status
	}
	assert.Equal(t, balance.CompOffStatusExpired, statuses["co-expired"])
	assert.Equal(t, balance.CompOffStatusAvailable, statuses["co-live"])

	available, err := env.svc.ListCompOffs(ctx, employeeActor, balance.ListCompOffQuery{AvailableOnly: true})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "co-live", available[0].ID)

	_, err = env.svc.ListCompOffs(ctx, otherActor, balance.ListCompOffQuery{EmployeeID: "emp-1"})
	assert.ErrorIs(t, err, user.ErrNotOwner)

	viaAdmin, err := env.svc.ListCompOffs(ctx, adminActor, balance.ListCompOffQuery{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, viaAdmin, 2)
}

func TestRecomputeMonthlyBalance_SkipsExpiredCredits(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	expires := date(2026, 4, 1)
	createBalanceTestCredit(t, env, "co-feb", "emp-1", date(2026, 2, 7), &expires)

	available, err := env.svc.ListCompOffs(ctx, employeeActor, balance.ListCompOffQuery{AvailableOnly: true})
	require.NoError(t, err)
	assert.Empty(t, available)

	b, err := env.svc.RecomputeMonthlyBalance(ctx, "emp-1", 2026, 2)
	require.NoError(t, err)
	assert.Zero(t, b.CompOffEarned)
	assert.Zero(t, b.CompOffBalance)
}

func TestRecomputeMonthlyBalance_Idempotent(t *testing.T) {
	env := newTestEnv(t, time.Date(2026, 3, 31, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	entry := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	exit := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)
	_, err := env.attendances.Create(ctx, attendance.Attendance{
		ID:         "att-1",
		EmployeeID: "emp-1",
		Date:       date(2026, 3, 2),
		Status:     attendance.StatusPresent,
		EntryTime:  &entry,
		ExitTime:   &exit,
	})
	require.NoError(t, err)

	first, err := env.svc.RecomputeMonthlyBalance(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)
	second, err := env.svc.RecomputeMonthlyBalance(ctx, "emp-1", 2026, 3)
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
	assert.True(t, decimal.RequireFromString("8.5").Equal(first.TotalHoursWorked))
	assert.Equal(t, 22, first.WorkingDays)
	assert.True(t, decimal.NewFromInt(176).Equal(first.ExpectedHours))
	assert.True(t, decimal.RequireFromString("-167.5").Equal(first.BalanceHours))
}

func TestRecomputeMonthlyBalance_Errors(t *testing.T) {
	env := newTestEnv(t, time.Now())
	ctx := context.Background()

	_, err := env.svc.RecomputeMonthlyBalance(ctx, "emp-1", 2026, 13)
	assert.ErrorIs(t, err, balance.ErrInvalidMonth)

	_, err = env.svc.RecomputeMonthlyBalance(ctx, "ghost", 2026, 3)
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)

	_, err = env.svc.GetMonthlyBalance(ctx, otherActor, "emp-1", 2026, 3)
	assert.ErrorIs(t, err, user.ErrNotOwner)
}

func TestRecomputeAll_ActiveEmployeesOnly(t *testing.T) {
	env := newTestEnv(t, time.Now())

	n, err := env.svc.RecomputeAll(context.Background(), 2026, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
