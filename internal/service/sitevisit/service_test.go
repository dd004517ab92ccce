package sitevisit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/repository/memory"
)

var (
	employeeActor = user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}
	otherActor    = user.Actor{EmployeeID: "emp-2", Role: user.RoleEmployee}
	adminActor    = user.Actor{EmployeeID: "adm-1", Role: user.RoleAdmin}
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

type testEnv struct {
	svc         *SiteVisitServiceImpl
	attendances attendance.AttendanceRepository
	expenses    sitevisit.ExpenseRepository
	publisher   *recordingPublisher
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	for _, e := range []employee.Employee{
		{ID: "emp-1", FullName: "Budi", Role: user.RoleEmployee, IsActive: true},
		{ID: "emp-2", FullName: "Sari", Role: user.RoleEmployee, IsActive: true},
		{ID: "adm-1", FullName: "Admin", Role: user.RoleAdmin, IsActive: true},
	} {
		store.SeedEmployee(e)
	}

	env := &testEnv{
		attendances: memory.NewAttendanceRepository(store),
		expenses:    memory.NewExpenseRepository(store),
		publisher:   &recordingPublisher{},
	}
	env.svc = NewSiteVisitService(
		store,
		memory.NewSiteVisitRepository(store),
		env.expenses,
		env.attendances,
		memory.NewEmployeeRepository(store),
		env.publisher,
	).(*SiteVisitServiceImpl)
	return env
}

func createSiteVisitTestAttendance(t *testing.T, env *testEnv, employeeID string) attendance.Attendance {
	t.Helper()
	att, err := env.attendances.Create(context.Background(), attendance.Attendance{
		ID:         uuid.Must(uuid.NewV7()).String(),
		EmployeeID: employeeID,
		Date:       time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC),
		Status:     attendance.StatusPresent,
	})
	require.NoError(t, err)
	return att
}

func createSiteVisitTestDraft(t *testing.T, env *testEnv) (sitevisit.SiteVisitResponse, attendance.Attendance) {
	t.Helper()
	att := createSiteVisitTestAttendance(t, env, "emp-1")
	sv, err := env.svc.Create(context.Background(), employeeActor, sitevisit.CreateSiteVisitRequest{
		AttendanceID: att.ID,
		Location:     "Cikarang plant",
		NumGauges:    4,
	})
	require.NoError(t, err)
	return sv, att
}

func expense(kind, amount string) sitevisit.ExpenseRequest {
	return sitevisit.ExpenseRequest{ExpenseType: kind, Amount: decimal.RequireFromString(amount)}
}

func TestSiteVisit_ApproveCopiesTotalToAttendance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sv, att := createSiteVisitTestDraft(t, env)
	assert.Equal(t, sitevisit.StatusDraft, sv.Status)
	assert.Equal(t, "2026-02-04", sv.VisitDate)

	flagged, err := env.attendances.GetByID(ctx, att.ID)
	require.NoError(t, err)
	assert.True(t, flagged.IsSiteVisit)

	_, err = env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("transport", "170"))
	require.NoError(t, err)
	_, err = env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("meal", "80"))
	require.NoError(t, err)

	submitted, err := env.svc.Submit(ctx, employeeActor, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, sitevisit.StatusSubmitted, submitted.Status)
	require.NotNil(t, submitted.SubmittedTotal)
	assert.True(t, decimal.NewFromInt(250).Equal(*submitted.SubmittedTotal))
	require.Len(t, env.publisher.msgs, 1)
	assert.Equal(t, notification.TypeSiteVisitSubmitted, env.publisher.msgs[0].Type)
	assert.Equal(t, "adm-1", env.publisher.msgs[0].EmployeeID)

	approved, err := env.svc.Approve(ctx, adminActor, sv.ID)
	require.NoError(t, err)
	assert.Equal(t, sitevisit.StatusApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "adm-1", *approved.ReviewedBy)

	got, err := env.attendances.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SiteVisitCost)
	assert.True(t, decimal.NewFromInt(250).Equal(*got.SiteVisitCost))
	assert.True(t, got.CostApproved)
	require.NotNil(t, got.CostApprovedBy)
	assert.Equal(t, "adm-1", *got.CostApprovedBy)

	last := env.publisher.msgs[len(env.publisher.msgs)-1]
	assert.Equal(t, notification.TypeSiteVisitApproved, last.Type)
	assert.Equal(t, "250.00", last.Payload["approved_total"])

	_, err = env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("parking", "5"))
	assert.ErrorIs(t, err, sitevisit.ErrNotEditable)
	_, err = env.svc.UpdateDetails(ctx, employeeActor, sv.ID, sitevisit.UpdateSiteVisitRequest{Location: "elsewhere"})
	assert.ErrorIs(t, err, sitevisit.ErrNotEditable)
	_, err = env.svc.Reject(ctx, adminActor, sv.ID, sitevisit.RejectSiteVisitRequest{Reason: "late"})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

func TestSiteVisit_ApproveUsesLiveItemTotal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sv, att := createSiteVisitTestDraft(t, env)

	_, err := env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("transport", "170"))
	require.NoError(t, err)
	submitted, err := env.svc.Submit(ctx, employeeActor, sv.ID)
	require.NoError(t, err)
	require.NotNil(t, submitted.SubmittedTotal)

	// A line item written after submission, bypassing the draft-only service guard.
	_, err = env.expenses.Create(ctx, sitevisit.Expense{
		ID:          uuid.Must(uuid.NewV7()).String(),
		SiteVisitID: sv.ID,
		ExpenseType: "meal",
		Amount:      decimal.RequireFromString("45.50"),
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, adminActor, sv.ID)
	require.NoError(t, err)

	live := decimal.RequireFromString("215.50")
	got, err := env.attendances.GetByID(ctx, att.ID)
	require.NoError(t, err)
	require.NotNil(t, got.SiteVisitCost)
	assert.True(t, live.Equal(*got.SiteVisitCost), "got %s", got.SiteVisitCost)
	assert.False(t, submitted.SubmittedTotal.Equal(*got.SiteVisitCost))

	last := env.publisher.msgs[len(env.publisher.msgs)-1]
	assert.Equal(t, notification.TypeSiteVisitApproved, last.Type)
	assert.Equal(t, "215.50", last.Payload["approved_total"])
}

func TestSiteVisit_DraftEditsReaggregate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sv, _ := createSiteVisitTestDraft(t, env)

	taxi, err := env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("transport", "120.50"))
	require.NoError(t, err)
	hotel, err := env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("lodging", "300"))
	require.NoError(t, err)

	_, err = env.svc.UpdateExpense(ctx, employeeActor, sv.ID, taxi.ID, expense("transport", "99.50"))
	require.NoError(t, err)
	require.NoError(t, env.svc.DeleteExpense(ctx, employeeActor, sv.ID, hotel.ID))

	got, err := env.svc.Get(ctx, employeeActor, sv.ID)
	require.NoError(t, err)
	require.Len(t, got.Expenses, 1)
	assert.True(t, decimal.RequireFromString("99.50").Equal(got.Total))

	updated, err := env.svc.UpdateDetails(ctx, employeeActor, sv.ID, sitevisit.UpdateSiteVisitRequest{Location: "Karawang", NumGauges: 6})
	require.NoError(t, err)
	assert.Equal(t, "Karawang", updated.Location)
	assert.Equal(t, 6, updated.NumGauges)

	err = env.svc.DeleteExpense(ctx, employeeActor, sv.ID, hotel.ID)
	assert.ErrorIs(t, err, sitevisit.ErrExpenseNotFound)
}

func TestSiteVisit_Rejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	sv, att := createSiteVisitTestDraft(t, env)

	_, err := env.svc.Submit(ctx, employeeActor, sv.ID)
	require.ErrorIs(t, err, sitevisit.ErrEmptyClaim)

	_, err = env.svc.Create(ctx, employeeActor, sitevisit.CreateSiteVisitRequest{AttendanceID: att.ID, Location: "again"})
	require.ErrorIs(t, err, sitevisit.ErrSiteVisitExists)

	_, err = env.svc.AddExpense(ctx, otherActor, sv.ID, expense("meal", "10"))
	require.ErrorIs(t, err, sitevisit.ErrNotOwner)

	_, err = env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("meal", "0"))
	require.Error(t, err)

	_, err = env.svc.Approve(ctx, adminActor, sv.ID)
	require.ErrorIs(t, err, workflow.ErrInvalidTransition)

	_, err = env.svc.AddExpense(ctx, employeeActor, sv.ID, expense("meal", "10"))
	require.NoError(t, err)
	_, err = env.svc.Submit(ctx, employeeActor, sv.ID)
	require.NoError(t, err)

	_, err = env.svc.Approve(ctx, employeeActor, sv.ID)
	require.ErrorIs(t, err, user.ErrAdminPrivilegeRequired)

	_, err = env.svc.Reject(ctx, adminActor, sv.ID, sitevisit.RejectSiteVisitRequest{})
	require.ErrorIs(t, err, sitevisit.ErrMissingReason)

	rejected, err := env.svc.Reject(ctx, adminActor, sv.ID, sitevisit.RejectSiteVisitRequest{Reason: "no receipts"})
	require.NoError(t, err)
	assert.Equal(t, sitevisit.StatusRejected, rejected.Status)

	got, err := env.attendances.GetByID(ctx, att.ID)
	require.NoError(t, err)
	assert.False(t, got.CostApproved)
	assert.Nil(t, got.CostApprovedBy)
}

func TestSiteVisit_CreateForOthersAttendance(t *testing.T) {
	env := newTestEnv(t)
	att := createSiteVisitTestAttendance(t, env, "emp-2")

	_, err := env.svc.Create(context.Background(), employeeActor, sitevisit.CreateSiteVisitRequest{AttendanceID: att.ID, Location: "site"})
	assert.ErrorIs(t, err, sitevisit.ErrNotOwner)

	_, err = env.svc.Create(context.Background(), employeeActor, sitevisit.CreateSiteVisitRequest{AttendanceID: uuid.Must(uuid.NewV7()).String(), Location: "site"})
	assert.ErrorIs(t, err, attendance.ErrAttendanceNotFound)
}

func TestSiteVisit_ListScopedToActor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	createSiteVisitTestDraft(t, env)

	other := createSiteVisitTestAttendance(t, env, "emp-2")
	_, err := env.svc.Create(ctx, otherActor, sitevisit.CreateSiteVisitRequest{AttendanceID: other.ID, Location: "Bekasi"})
	require.NoError(t, err)

	own, err := env.svc.List(ctx, employeeActor, sitevisit.ListSiteVisitQuery{})
	require.NoError(t, err)
	require.Len(t, own.Items, 1)
	assert.Equal(t, "emp-1", own.Items[0].EmployeeID)

	all, err := env.svc.List(ctx, adminActor, sitevisit.ListSiteVisitQuery{Status: "draft"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.Total)
}
