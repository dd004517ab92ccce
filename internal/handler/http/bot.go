package http

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// SlashCommand is the subset of the chat slash-command form the bot reads.
type SlashCommand struct {
	Token   string
	UserID  string
	Command string
	Text    string
}

// SlashResponse is the reply to a slash command.
type SlashResponse struct {
	ResponseType string `json:"response_type"` // "ephemeral" or "in_channel"
	Text         string `json:"text"`
}

type BotHandler interface {
	Command(w http.ResponseWriter, r *http.Request)
}

type botCommand func(ctx context.Context, actor user.Actor, args []string) (string, error)

type botHandlerImpl struct {
	slashToken        string
	locale            string
	loc               *time.Location
	employeeRepo      employee.EmployeeRepository
	attendanceService attendance.AttendanceService
	balanceService    balance.BalanceService
	leaveService      leave.LeaveService
	commands          map[string]botCommand
	now               func() time.Time
}

func NewBotHandler(
	slashToken string,
	locale string,
	loc *time.Location,
	employeeRepo employee.EmployeeRepository,
	attendanceService attendance.AttendanceService,
	balanceService balance.BalanceService,
	leaveService leave.LeaveService,
) BotHandler {
	if loc == nil {
		loc = time.UTC
	}
	h := &botHandlerImpl{
		slashToken:        slashToken,
		locale:            locale,
		loc:               loc,
		employeeRepo:      employeeRepo,
		attendanceService: attendanceService,
		balanceService:    balanceService,
		leaveService:      leaveService,
		now:               time.Now,
	}
	h.commands = map[string]botCommand{
		"checkin":  h.checkIn,
		"checkout": h.checkOut,
		"wfh":      h.wfh,
		"leave":    h.leave,
		"balance":  h.balance,
		"compoff":  h.compOff,
	}
	return h
}

// Command implements BotHandler.
func (h *botHandlerImpl) Command(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "Invalid form data", nil)
		return
	}
	cmd := SlashCommand{
		Token:   r.FormValue("token"),
		UserID:  r.FormValue("user_id"),
		Command: r.FormValue("command"),
		Text:    r.FormValue("text"),
	}

	if h.slashToken == "" || subtle.ConstantTimeCompare([]byte(cmd.Token), []byte(h.slashToken)) != 1 {
		response.Unauthorized(w, "Invalid command token")
		return
	}

	ctx := i18n.WithLocale(r.Context(), h.locale)

	emp, err := h.employeeRepo.GetByChatUserID(ctx, cmd.UserID)
	if err != nil || !emp.IsActive {
		if err != nil && !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Error("failed to resolve chat user", "chat_user_id", cmd.UserID, "error", err)
		}
		writeSlash(w, i18n.T(ctx, "bot.not_linked"))
		return
	}
	actor := user.Actor{EmployeeID: emp.ID, Role: emp.Role}

	name := strings.TrimPrefix(strings.TrimSpace(cmd.Command), "/")
	run, ok := h.commands[name]
	if !ok {
		text := i18n.T(ctx, "bot.unknown_command", map[string]any{"command": cmd.Command})
		writeSlash(w, text+"\n"+i18n.T(ctx, "bot.usage"))
		return
	}

	text, err := run(ctx, actor, strings.Fields(cmd.Text))
	if err != nil {
		text = h.errorText(ctx, err)
	}
	slog.Info("bot command handled", "command", name, "employee_id", emp.ID, "error", err)
	writeSlash(w, text)
}

func writeSlash(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(SlashResponse{ResponseType: "ephemeral", Text: text})
}

func (h *botHandlerImpl) errorText(ctx context.Context, err error) string {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		m := validationErrs.ToMap()
		fields := make([]string, 0, len(m))
		for f := range m {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		details := make([]string, 0, len(fields))
		for _, f := range fields {
			details = append(details, m[f])
		}
		return i18n.T(ctx, "bot.error.validation", map[string]any{"details": strings.Join(details, "; ")})
	}
	if kind, ok := apperror.KindOf(err); ok {
		return i18n.T(ctx, "bot.error."+string(kind))
	}
	slog.Error("bot command failed", "error", err)
	return i18n.T(ctx, "bot.error.internal")
}

func (h *botHandlerImpl) clock(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.In(h.loc).Format("15:04")
}

func (h *botHandlerImpl) checkIn(ctx context.Context, actor user.Actor, _ []string) (string, error) {
	resp, err := h.attendanceService.CheckIn(ctx, actor, attendance.CheckInRequest{Status: string(attendance.StatusPresent)})
	if err != nil {
		return "", err
	}
	key := "bot.checkin.ok"
	if resp.IsLate {
		key = "bot.checkin.late"
	}
	return i18n.T(ctx, key, map[string]any{"time": h.clock(resp.EntryTime)}), nil
}

func (h *botHandlerImpl) checkOut(ctx context.Context, actor user.Actor, _ []string) (string, error) {
	resp, err := h.attendanceService.CheckOut(ctx, actor)
	if err != nil {
		return "", err
	}
	hours := "0.00"
	if resp.WorkedHours != nil {
		hours = resp.WorkedHours.StringFixed(2)
	}
	return i18n.T(ctx, "bot.checkout.ok", map[string]any{"time": h.clock(resp.ExitTime), "hours": hours}), nil
}

func (h *botHandlerImpl) wfh(ctx context.Context, actor user.Actor, args []string) (string, error) {
	req := attendance.CheckInRequest{Status: string(attendance.StatusWFH)}
	if len(args) > 0 {
		note := strings.Join(args, " ")
		req.Notes = &note
	}
	if _, err := h.attendanceService.CheckIn(ctx, actor, req); err != nil {
		return "", err
	}
	return i18n.T(ctx, "bot.wfh.ok"), nil
}

// leave expects: <start> <end> <type> <reason...>
func (h *botHandlerImpl) leave(ctx context.Context, actor user.Actor, args []string) (string, error) {
	if len(args) < 4 {
		return i18n.T(ctx, "bot.leave.usage"), nil
	}
	resp, err := h.leaveService.CreateRequest(ctx, actor, leave.CreateLeaveRequestRequest{
		StartDate: args[0],
		EndDate:   args[1],
		LeaveType: args[2],
		Reason:    strings.Join(args[3:], " "),
	})
	if err != nil {
		return "", err
	}
	return i18n.T(ctx, "bot.leave.ok", map[string]any{
		"start_date": resp.StartDate,
		"end_date":   resp.EndDate,
		"days":       resp.Days,
	}), nil
}

func (h *botHandlerImpl) balance(ctx context.Context, actor user.Actor, args []string) (string, error) {
	today := h.now().In(h.loc)
	year, month := today.Year(), int(today.Month())
	if len(args) > 0 {
		y, m, ok := validator.IsValidYearMonth(args[0])
		if !ok {
			return i18n.T(ctx, "bot.balance.usage"), nil
		}
		year, month = y, m
	}

	b, err := h.balanceService.GetMonthlyBalance(ctx, actor, actor.EmployeeID, year, month)
	if err != nil {
		return "", err
	}
	return i18n.T(ctx, "bot.balance.ok", map[string]any{
		"period":   fmt.Sprintf("%04d-%02d", b.Year, b.Month),
		"worked":   b.TotalHoursWorked.StringFixed(2),
		"expected": b.ExpectedHours.StringFixed(2),
		"balance":  b.BalanceHours.StringFixed(2),
		"present":  b.DaysPresent,
		"wfh":      b.DaysWFH,
		"half_day": b.DaysHalfDay,
		"leave":    b.DaysOnLeave,
		"comp_off": b.CompOffBalance,
	}), nil
}

// compOff lists available credits, or with "use <id>" spends one today.
func (h *botHandlerImpl) compOff(ctx context.Context, actor user.Actor, args []string) (string, error) {
	switch {
	case len(args) == 0:
		credits, err := h.balanceService.ListCompOffs(ctx, actor, balance.ListCompOffQuery{
			EmployeeID:    actor.EmployeeID,
			AvailableOnly: true,
		})
		if err != nil {
			return "", err
		}
		if len(credits) == 0 {
			return i18n.T(ctx, "bot.compoff.none"), nil
		}
		lines := []string{i18n.T(ctx, "bot.compoff.header")}
		for _, c := range credits {
			expires := "-"
			if c.ExpiresAt != nil {
				expires = *c.ExpiresAt
			}
			lines = append(lines, i18n.T(ctx, "bot.compoff.item", map[string]any{
				"id":              c.ID,
				"earned_for_date": c.EarnedForDate,
				"expires_at":      expires,
			}))
		}
		return strings.Join(lines, "\n"), nil

	case len(args) == 2 && args[0] == "use":
		resp, err := h.balanceService.UseCompOff(ctx, actor, args[1], balance.UseCompOffRequest{})
		if err != nil {
			return "", err
		}
		usedOn := h.now().In(h.loc).Format(calendar.DateLayout)
		if resp.UsedOn != nil {
			usedOn = *resp.UsedOn
		}
		return i18n.T(ctx, "bot.compoff.used", map[string]any{"id": resp.ID, "used_on": usedOn}), nil
	}
	return i18n.T(ctx, "bot.compoff.usage"), nil
}
