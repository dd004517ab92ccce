package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
	balanceService "github.com/cmlabs-hris/hris-attendance-go/internal/service/balance"
	calendarService "github.com/cmlabs-hris/hris-attendance-go/internal/service/calendar"
)

const (
	testEmployeeID = "emp-1"
	testOtherID    = "emp-2"
	testAdminID    = "adm-1"
)

var (
	employeeActor = user.Actor{EmployeeID: testEmployeeID, Role: user.RoleEmployee}
	adminActor    = user.Actor{EmployeeID: testAdminID, Role: user.RoleAdmin}
)

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []notification.Message
}

func (p *recordingPublisher) Publish(_ context.Context, msgs ...notification.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, msgs...)
}

func (p *recordingPublisher) types() []notification.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]notification.EventType, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Type)
	}
	return out
}

type testEnv struct {
	svc       *AttendanceServiceImpl
	balances  *balanceService.BalanceServiceImpl
	holidays  calendar.HolidayRepository
	compOffs  balance.CompOffRepository
	publisher *recordingPublisher
}

func newTestEnv(t *testing.T, weeklyOff ...time.Weekday) *testEnv {
	t.Helper()

	store := memory.NewStore()
	now := time.Now()
	for _, e := range []employee.Employee{
		{ID: testEmployeeID, FullName: "Budi", Role: user.RoleEmployee, IsActive: true, CreatedAt: now},
		{ID: testOtherID, FullName: "Sari", Role: user.RoleEmployee, IsActive: true, CreatedAt: now},
		{ID: testAdminID, FullName: "Admin", Role: user.RoleAdmin, IsActive: true, CreatedAt: now},
	} {
		store.SeedEmployee(e)
	}

	holidays := memory.NewHolidayRepository(store)
	compOffs := memory.NewCompOffRepository(store)
	attendances := memory.NewAttendanceRepository(store)
	employees := memory.NewEmployeeRepository(store)
	cal := calendarService.NewCalendarService(holidays, weeklyOff)

	balances := balanceService.NewBalanceService(
		store,
		memory.NewMonthlyBalanceRepository(store),
		compOffs,
		attendances,
		memory.NewLeaveRequestRepository(store),
		employees,
		cal,
		balance.Policy{StandardDayHours: decimal.NewFromInt(8)},
		time.UTC,
	)

	publisher := &recordingPublisher{}
	svc := NewAttendanceService(
		store,
		attendances,
		employees,
		compOffs,
		memory.NewSiteVisitRepository(store),
		cal,
		balances,
		publisher,
		Policy{Location: time.UTC, OnTimeCutoff: 9 * time.Hour, CompOffExpiryDays: 90},
	).(*AttendanceServiceImpl)

	return &testEnv{svc: svc, balances: balances, holidays: holidays, compOffs: compOffs, publisher: publisher}
}

func (e *testEnv) setNow(t time.Time) {
	e.svc.now = func() time.Time { return t }
}

func (e *testEnv) credits(t *testing.T, employeeID string) []balance.CompOff {
	t.Helper()
	list, err := e.compOffs.List(context.Background(), balance.CompOffFilter{EmployeeID: &employeeID})
	require.NoError(t, err)
	return list
}

func strPtr(s string) *string { return &s }

func TestMarkAttendance_RecomputesMonth(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-01",
		Status:     "present",
		EntryTime:  strPtr("09:30"),
		ExitTime:   strPtr("18:00"),
	})
	require.NoError(t, err)
	require.NotNil(t, resp.WorkedHours)
	assert.True(t, decimal.RequireFromString("8.5").Equal(*resp.WorkedHours))
	assert.True(t, resp.IsLate)
	assert.True(t, resp.AdminEdited)

	b, err := env.balances.GetMonthlyBalance(ctx, employeeActor, "", 2026, 2)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("8.5").Equal(b.TotalHoursWorked), "got %s", b.TotalHoursWorked)
	assert.Equal(t, 1, b.DaysPresent)
	assert.Equal(t, 28, b.WorkingDays)
}

func TestMarkAttendance_EmployeeRules(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(time.Date(2026, 2, 3, 8, 50, 0, 0, time.UTC))
	ctx := context.Background()

	tests := []struct {
		name    string
		actor   user.Actor
		req     attendance.MarkAttendanceRequest
		wantErr error
	}{
		{
			name:    "other employee",
			actor:   employeeActor,
			req:     attendance.MarkAttendanceRequest{EmployeeID: testOtherID, Date: "2026-02-03", Status: "present"},
			wantErr: attendance.ErrNotOwner,
		},
		{
			name:    "not today",
			actor:   employeeActor,
			req:     attendance.MarkAttendanceRequest{Date: "2026-02-02", Status: "present"},
			wantErr: attendance.ErrNotToday,
		},
		{
			name:    "exit before entry",
			actor:   adminActor,
			req:     attendance.MarkAttendanceRequest{EmployeeID: testOtherID, Date: "2026-02-02", Status: "present", EntryTime: strPtr("18:00"), ExitTime: strPtr("09:00")},
			wantErr: attendance.ErrExitBeforeEntry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.MarkAttendance(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMarkAttendance_SecondMarkOnlyByAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(time.Date(2026, 2, 3, 8, 50, 0, 0, time.UTC))
	ctx := context.Background()

	first, err := env.svc.MarkAttendance(ctx, employeeActor, attendance.MarkAttendanceRequest{Date: "2026-02-03", Status: "wfh"})
	require.NoError(t, err)
	assert.False(t, first.AdminEdited)

	_, err = env.svc.MarkAttendance(ctx, employeeActor, attendance.MarkAttendanceRequest{Date: "2026-02-03", Status: "present"})
	assert.ErrorIs(t, err, attendance.ErrAlreadyMarked)

	_, err = env.svc.CheckIn(ctx, employeeActor, attendance.CheckInRequest{})
	assert.ErrorIs(t, err, attendance.ErrAlreadyMarked)

	edited, err := env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-03",
		Status:     "half_day",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, edited.ID)
	assert.Equal(t, attendance.StatusHalfDay, edited.Status)
	assert.True(t, edited.AdminEdited)
}

func TestMarkAttendance_AdminSelfMarkIsFlagged(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(time.Date(2026, 2, 3, 8, 50, 0, 0, time.UTC))

	resp, err := env.svc.MarkAttendance(context.Background(), adminActor, attendance.MarkAttendanceRequest{Date: "2026-02-03", Status: "present"})
	require.NoError(t, err)
	assert.Equal(t, testAdminID, resp.EmployeeID)
	assert.True(t, resp.AdminEdited)
}

func TestCheckInCheckOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.CheckOut(ctx, employeeActor)
	require.ErrorIs(t, err, attendance.ErrNotCheckedIn)

	env.setNow(time.Date(2026, 2, 3, 9, 15, 0, 0, time.UTC))
	in, err := env.svc.CheckIn(ctx, employeeActor, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.Equal(t, attendance.StatusPresent, in.Status)
	assert.True(t, in.IsLate)
	assert.Nil(t, in.WorkedHours)

	env.setNow(time.Date(2026, 2, 3, 18, 0, 0, 0, time.UTC))
	out, err := env.svc.CheckOut(ctx, employeeActor)
	require.NoError(t, err)
	require.NotNil(t, out.WorkedHours)
	assert.True(t, decimal.RequireFromString("8.75").Equal(*out.WorkedHours))

	_, err = env.svc.CheckOut(ctx, employeeActor)
	assert.ErrorIs(t, err, attendance.ErrAlreadyCheckedOut)
}

func TestCheckIn_HolidayEarnsCompOff(t *testing.T) {
	env := newTestEnv(t, time.Saturday, time.Sunday)
	ctx := context.Background()
	holiday := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)

	_, err := env.holidays.Create(ctx, calendar.Holiday{Date: holiday, Name: "Chinese New Year"})
	require.NoError(t, err)

	env.setNow(time.Date(2026, 2, 17, 8, 30, 0, 0, time.UTC))
	resp, err := env.svc.CheckIn(ctx, employeeActor, attendance.CheckInRequest{})
	require.NoError(t, err)
	assert.True(t, resp.CompOffEarned)
	assert.False(t, resp.IsLate)

	credits := env.credits(t, testEmployeeID)
	require.Len(t, credits, 1)
	assert.Equal(t, balance.CompOffStatusAvailable, credits[0].Status)
	assert.True(t, credits[0].EarnedForDate.Equal(holiday))
	require.NotNil(t, credits[0].ExpiresAt)
	assert.True(t, credits[0].ExpiresAt.Equal(holiday.AddDate(0, 0, 90)))

	assert.Equal(t, []notification.EventType{notification.TypeCompOffEarned}, env.publisher.types())

	b, err := env.balances.GetMonthlyBalance(ctx, employeeActor, "", 2026, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, b.CompOffEarned)
	assert.Equal(t, 1, b.CompOffBalance)
}

func TestMarkAttendance_WeeklyOffCreditFollowsStatus(t *testing.T) {
	env := newTestEnv(t, time.Saturday, time.Sunday)
	env.setNow(time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	// 2026-02-07 is a Saturday.
	resp, err := env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-07",
		Status:     "present",
	})
	require.NoError(t, err)
	assert.True(t, resp.CompOffEarned)

	credits := env.credits(t, testEmployeeID)
	require.Len(t, credits, 1)
	// Earned on the day it was recorded, for the day that was worked.
	assert.True(t, credits[0].EarnedDate.Equal(time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)))
	assert.True(t, credits[0].EarnedForDate.Equal(time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)))

	// Marking the same day again keeps the single credit.
	_, err = env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-07",
		Status:     "wfh",
	})
	require.NoError(t, err)
	assert.Len(t, env.credits(t, testEmployeeID), 1)

	resp, err = env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-07",
		Status:     "absent",
	})
	require.NoError(t, err)
	assert.False(t, resp.CompOffEarned)

	credits = env.credits(t, testEmployeeID)
	require.Len(t, credits, 1)
	assert.Equal(t, balance.CompOffStatusCancelled, credits[0].Status)
}

func TestDeleteAttendance(t *testing.T) {
	env := newTestEnv(t, time.Saturday, time.Sunday)
	env.setNow(time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	resp, err := env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{
		EmployeeID: testEmployeeID,
		Date:       "2026-02-08",
		Status:     "present",
		EntryTime:  strPtr("09:00"),
		ExitTime:   strPtr("13:00"),
	})
	require.NoError(t, err)

	err = env.svc.DeleteAttendance(ctx, employeeActor, resp.ID)
	require.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	require.NoError(t, env.svc.DeleteAttendance(ctx, adminActor, resp.ID))

	_, err = env.svc.GetAttendance(ctx, adminActor, resp.ID)
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)

	credits := env.credits(t, testEmployeeID)
	require.Len(t, credits, 1)
	assert.Equal(t, balance.CompOffStatusCancelled, credits[0].Status)

	b, err := env.balances.GetMonthlyBalance(ctx, employeeActor, "", 2026, 2)
	require.NoError(t, err)
	assert.True(t, b.TotalHoursWorked.IsZero())
	assert.Equal(t, 0, b.CompOffEarned)
}

func TestListAttendance_ScopedToActor(t *testing.T) {
	env := newTestEnv(t)
	env.setNow(time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC))
	ctx := context.Background()

	for _, id := range []string{testEmployeeID, testOtherID} {
		_, err := env.svc.MarkAttendance(ctx, adminActor, attendance.MarkAttendanceRequest{EmployeeID: id, Date: "2026-02-02", Status: "present"})
		require.NoError(t, err)
	}

	own, err := env.svc.ListAttendance(ctx, employeeActor, attendance.ListAttendanceQuery{EmployeeID: testOtherID})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, testEmployeeID, own.Items[0].EmployeeID)

	all, err := env.svc.ListAttendance(ctx, adminActor, attendance.ListAttendanceQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)

	_, err = env.svc.GetAttendance(ctx, user.Actor{EmployeeID: testOtherID, Role: user.RoleEmployee}, own.Items[0].ID)
	assert.ErrorIs(t, err, attendance.ErrNotOwner)
}
