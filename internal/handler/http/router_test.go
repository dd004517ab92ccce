package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

const slashToken = "slash-secret"

type fakeAttendanceService struct {
	attendance.AttendanceService
	lastActor user.Actor
	lastMark  attendance.MarkAttendanceRequest
	markErr   error
	deleted   []string
}

func (f *fakeAttendanceService) MarkAttendance(ctx context.Context, actor user.Actor, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	f.lastActor, f.lastMark = actor, req
	if f.markErr != nil {
		return attendance.AttendanceResponse{}, f.markErr
	}
	return attendance.AttendanceResponse{ID: "att-1", EmployeeID: actor.EmployeeID, Date: req.Date, Status: attendance.Status(req.Status)}, nil
}

func (f *fakeAttendanceService) CheckIn(ctx context.Context, actor user.Actor, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	f.lastActor = actor
	entry := time.Date(2026, 3, 2, 2, 15, 0, 0, time.UTC)
	return attendance.AttendanceResponse{ID: "att-2", Status: attendance.Status(req.Status), EntryTime: &entry, IsLate: true}, nil
}

func (f *fakeAttendanceService) DeleteAttendance(ctx context.Context, actor user.Actor, id string) error {
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAttendanceService) ListAttendance(ctx context.Context, actor user.Actor, query attendance.ListAttendanceQuery) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{Items: []attendance.AttendanceResponse{{ID: "a"}}, Total: 45, Page: query.Page, Limit: query.Limit}, nil
}

type fakeBalanceService struct {
	balance.BalanceService
	recomputedAll int
}

func (f *fakeBalanceService) GetMonthlyBalance(ctx context.Context, actor user.Actor, employeeID string, year, month int) (balance.MonthlyBalanceResponse, error) {
	return balance.MonthlyBalanceResponse{
		EmployeeID:       employeeID,
		Year:             year,
		Month:            month,
		TotalHoursWorked: decimal.NewFromInt(152),
		ExpectedHours:    decimal.NewFromInt(160),
		BalanceHours:     decimal.NewFromInt(-8),
		DaysPresent:      19,
		CompOffBalance:   1,
	}, nil
}

func (f *fakeBalanceService) RecomputeAll(ctx context.Context, year, month int) (int, error) {
	f.recomputedAll++
	return 3, nil
}

type fakeLeaveService struct {
	leave.LeaveService
	approvedBy user.Actor
	err        error
}

func (f *fakeLeaveService) Approve(ctx context.Context, actor user.Actor, requestID string) (leave.LeaveRequestResponse, error) {
	f.approvedBy = actor
	if f.err != nil {
		return leave.LeaveRequestResponse{}, f.err
	}
	return leave.LeaveRequestResponse{ID: requestID, Status: leave.LeaveRequestStatusApproved}, nil
}

func (f *fakeLeaveService) CreateRequest(ctx context.Context, actor user.Actor, req leave.CreateLeaveRequestRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	return leave.LeaveRequestResponse{ID: "lr-1", StartDate: req.StartDate, EndDate: req.EndDate, Days: 3}, nil
}

type fakeNotificationService struct {
	notification.NotificationService
	events chan sse.Event
}

func (f *fakeNotificationService) Subscribe(ctx context.Context, employeeID string) (<-chan sse.Event, func()) {
	return f.events, func() {}
}

type fakeEmployeeRepo struct {
	employee.EmployeeRepository
	byChat map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByChatUserID(ctx context.Context, chatUserID string) (employee.Employee, error) {
	e, ok := f.byChat[chatUserID]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

type testServer struct {
	router     *chi.Mux
	jwt        jwt.Service
	attendance *fakeAttendanceService
	balance    *fakeBalanceService
	leave      *fakeLeaveService
	notify     *fakeNotificationService
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	require.NoError(t, i18n.Init("en"))

	s := &testServer{
		jwt:        jwt.NewJWTService("handler-test-secret", time.Hour, time.Minute),
		attendance: &fakeAttendanceService{},
		balance:    &fakeBalanceService{},
		leave:      &fakeLeaveService{},
		notify:     &fakeNotificationService{events: make(chan sse.Event, 4)},
	}
	chatID := "mm-user-1"
	employees := &fakeEmployeeRepo{byChat: map[string]employee.Employee{
		chatID: {ID: "emp-1", Role: user.RoleEmployee, IsActive: true, ChatUserID: &chatID},
	}}

	h := Handlers{
		Attendance:   NewAttendanceHandler(s.attendance),
		Balance:      NewBalanceHandler(s.balance),
		Leave:        NewLeaveHandler(s.leave),
		SiteVisit:    NewSiteVisitHandler(nil),
		Calendar:     NewCalendarHandler(nil),
		Notification: NewNotificationHandler(s.notify, s.jwt),
		Bot:          NewBotHandler(slashToken, "en", time.UTC, employees, s.attendance, s.balance, s.leave),
	}
	s.router = NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)), []string{"*"}, s.jwt, h)
	return s
}

func (s *testServer) do(t *testing.T, method, path, body string, role user.Role) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		token, _, err := s.jwt.GenerateAccessToken("emp-1", role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var body response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/attendance", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	sseToken, _, err := s.jwt.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/attendance", nil)
	req.Header.Set("Authorization", "Bearer "+sseToken)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "stream tokens must not authenticate API calls")
}

func TestAttendance_Mark(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance", `{"date":"2026-03-02","status":"present","entry_time":"09:00"}`, user.RoleEmployee)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.True(t, body.Success)
	assert.Equal(t, user.Actor{EmployeeID: "emp-1", Role: user.RoleEmployee}, s.attendance.lastActor)
	assert.Equal(t, "2026-03-02", s.attendance.lastMark.Date)
}

func TestAttendance_MarkErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"already marked", attendance.ErrAlreadyMarked, http.StatusConflict, "ALREADY_MARKED"},
		{"not today", attendance.ErrNotToday, http.StatusForbidden, "FORBIDDEN"},
		{"validation", validator.ValidationErrors{{Field: "status", Message: "bad"}}, http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.attendance.markErr = tt.err

			rec := s.do(t, http.MethodPost, "/api/v1/attendance", `{"date":"2026-03-02","status":"present"}`, user.RoleEmployee)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, decodeBody(t, rec).Error.Code)
		})
	}
}

func TestAttendance_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/attendance", `{"date":`, user.RoleEmployee)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendance_ListPaginates(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/attendance?page=2&limit=20", "", user.RoleEmployee)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	require.NotNil(t, body.Meta)
	assert.Equal(t, 2, body.Meta.Page)
	assert.Equal(t, 3, body.Meta.TotalPages)
}

func TestAttendance_DeleteRequiresPermission(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/api/v1/attendance/att-9", "", user.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Empty(t, s.attendance.deleted)

	rec = s.do(t, http.MethodDelete, "/api/v1/attendance/att-9", "", user.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"att-9"}, s.attendance.deleted)
}

func TestLeave_Approve(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/leave/requests/lr-1/approve", "", user.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/leave/requests/lr-1/approve", "", user.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, s.leave.approvedBy.IsAdmin())

	s.leave.err = workflow.ErrInvalidTransition
	rec = s.do(t, http.MethodPost, "/api/v1/leave/requests/lr-1/approve", "", user.RoleAdmin)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeBody(t, rec).Error.Code)
}

func TestBalance_Recompute(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/balances/2026/3/recompute", "", user.RoleEmployee)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/balances/2026/3/recompute", "", user.RoleAdmin)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, s.balance.recomputedAll)

	rec = s.do(t, http.MethodGet, "/api/v1/balances/2026/march", "", user.RoleEmployee)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestNotification_Stream(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/notifications/stream", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	s.notify.events <- sse.Event{Event: "notification", ID: "evt-1", Data: map[string]string{"type": "leave_approved"}}
	close(s.notify.events)

	token, _, err := s.jwt.GenerateSSEToken("emp-1")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/stream?token="+url.QueryEscape(token), nil)
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	assert.Contains(t, out, "event: connected")
	assert.Contains(t, out, "id: evt-1\nevent: notification\ndata: {\"type\":\"leave_approved\"}")
}

func postBotCommand(t *testing.T, s *testServer, form url.Values) (int, SlashResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bot/commands", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var reply SlashResponse
	if rec.Code == http.StatusOK {
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&reply))
	}
	return rec.Code, reply
}

func TestBot_Commands(t *testing.T) {
	tests := []struct {
		name     string
		chatUser string
		command  string
		text     string
		want     string
	}{
		{"check in late", "mm-user-1", "/checkin", "", "Checked in at 02:15. You are late today."},
		{"unlinked", "mm-stranger", "/checkin", "", "Your chat account is not linked to an employee."},
		{"unknown", "mm-user-1", "/dance", "", "Unknown command /dance."},
		{"leave usage", "mm-user-1", "/leave", "2026-03-02", "Usage: /leave"},
		{"leave ok", "mm-user-1", "/leave", "2026-03-02 2026-03-04 annual family trip", "(3 days) submitted"},
		{"leave invalid", "mm-user-1", "/leave", "soon later annual trip", "Invalid input:"},
		{"balance", "mm-user-1", "/balance", "2026-02", "2026-02: worked 152.00h of 160.00h (balance -8.00h)"},
		{"balance bad period", "mm-user-1", "/balance", "feb", "Usage: /balance"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			code, reply := postBotCommand(t, s, url.Values{
				"token":   {slashToken},
				"user_id": {tt.chatUser},
				"command": {tt.command},
				"text":    {tt.text},
			})
			require.Equal(t, http.StatusOK, code)
			assert.Equal(t, "ephemeral", reply.ResponseType)
			assert.Contains(t, reply.Text, tt.want)
		})
	}
}

func TestBot_RejectsBadToken(t *testing.T) {
	s := newTestServer(t)
	code, _ := postBotCommand(t, s, url.Values{"token": {"nope"}, "user_id": {"mm-user-1"}, "command": {"/checkin"}})
	assert.Equal(t, http.StatusUnauthorized, code)
}
