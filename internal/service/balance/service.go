package balance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type BalanceServiceImpl struct {
	tx           database.Transactor
	balanceRepo  balance.MonthlyBalanceRepository
	compOffRepo  balance.CompOffRepository
	attRepo      attendance.AttendanceRepository
	leaveRepo    leave.LeaveRequestRepository
	employeeRepo employee.EmployeeRepository
	calendar     calendar.CalendarService
	policy       balance.Policy
	loc          *time.Location
	now          func() time.Time
}

func NewBalanceService(
	tx database.Transactor,
	balanceRepo balance.MonthlyBalanceRepository,
	compOffRepo balance.CompOffRepository,
	attRepo attendance.AttendanceRepository,
	leaveRepo leave.LeaveRequestRepository,
	employeeRepo employee.EmployeeRepository,
	calendarService calendar.CalendarService,
	policy balance.Policy,
	loc *time.Location,
) *BalanceServiceImpl {
	return &BalanceServiceImpl{
		tx:           tx,
		balanceRepo:  balanceRepo,
		compOffRepo:  compOffRepo,
		attRepo:      attRepo,
		leaveRepo:    leaveRepo,
		employeeRepo: employeeRepo,
		calendar:     calendarService,
		policy:       policy,
		loc:          loc,
		now:          time.Now,
	}
}

var _ balance.BalanceService = (*BalanceServiceImpl)(nil)

func (s *BalanceServiceImpl) today() time.Time {
	return calendar.Today(s.now(), s.loc)
}

// RecomputeMonthlyBalance implements balance.Recomputer.
func (s *BalanceServiceImpl) RecomputeMonthlyBalance(ctx context.Context, employeeID string, year, month int) (balance.MonthlyBalance, error) {
	if month < 1 || month > 12 {
		return balance.MonthlyBalance{}, balance.ErrInvalidMonth
	}
	if _, err := s.employeeRepo.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("recompute for unknown employee", "integrity", true, "employee_id", employeeID)
		}
		return balance.MonthlyBalance{}, err
	}

	first, last := calendar.MonthRange(year, month)

	cal, err := s.calendar.Between(ctx, first, last)
	if err != nil {
		return balance.MonthlyBalance{}, err
	}
	records, err := s.attRepo.ListByEmployeeBetween(ctx, employeeID, first, last)
	if err != nil {
		return balance.MonthlyBalance{}, fmt.Errorf("failed to load attendance: %w", err)
	}
	leaves, err := s.leaveRepo.ListApprovedBetween(ctx, employeeID, first, last)
	if err != nil {
		return balance.MonthlyBalance{}, fmt.Errorf("failed to load approved leave: %w", err)
	}
	credits, err := s.compOffRepo.ListEarnedBetween(ctx, employeeID, first, last)
	if err != nil {
		return balance.MonthlyBalance{}, fmt.Errorf("failed to load comp-offs: %w", err)
	}

	b := balance.Compute(balance.MonthInput{
		EmployeeID:     employeeID,
		Year:           year,
		Month:          month,
		Calendar:       cal,
		Attendance:     records,
		ApprovedLeaves: leaves,
		CompOffs:       credits,
		AsOf:           s.today(),
	}, s.policy)

	if err := s.balanceRepo.Upsert(ctx, b); err != nil {
		return balance.MonthlyBalance{}, fmt.Errorf("failed to store monthly balance: %w", err)
	}
	return b, nil
}

// RecomputeAll implements balance.BalanceService.
func (s *BalanceServiceImpl) RecomputeAll(ctx context.Context, year, month int) (int, error) {
	if month < 1 || month > 12 {
		return 0, balance.ErrInvalidMonth
	}
	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list active employees: %w", err)
	}

	done := 0
	for _, e := range employees {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if _, err := s.RecomputeMonthlyBalance(ctx, e.ID, year, month); err != nil {
			slog.Error("failed to recompute monthly balance", "employee_id", e.ID, "year", year, "month", month, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// GetMonthlyBalance implements balance.BalanceService. A month that was never
// projected is computed on read.
func (s *BalanceServiceImpl) GetMonthlyBalance(ctx context.Context, actor user.Actor, employeeID string, year, month int) (balance.MonthlyBalanceResponse, error) {
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.CanActFor(employeeID) && !actor.Can(user.PermissionViewAll) {
		return balance.MonthlyBalanceResponse{}, user.ErrNotOwner
	}
	if month < 1 || month > 12 {
		return balance.MonthlyBalanceResponse{}, balance.ErrInvalidMonth
	}

	b, err := s.balanceRepo.Get(ctx, employeeID, year, month)
	if errors.Is(err, balance.ErrMonthlyBalanceNotFound) {
		b, err = s.RecomputeMonthlyBalance(ctx, employeeID, year, month)
	}
	if err != nil {
		return balance.MonthlyBalanceResponse{}, err
	}
	return balance.ToBalanceResponse(b), nil
}

// UseCompOff implements balance.BalanceService.
func (s *BalanceServiceImpl) UseCompOff(ctx context.Context, actor user.Actor, creditID string, req balance.UseCompOffRequest) (balance.CompOffResponse, error) {
	if err := req.Validate(); err != nil {
		return balance.CompOffResponse{}, err
	}
	today := s.today()
	usedOn := today
	if req.UsedOn != "" {
		usedOn, _ = calendar.ParseDate(req.UsedOn)
	}

	var credit balance.CompOff
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		c, err := s.compOffRepo.GetByIDForUpdate(ctx, creditID)
		if err != nil {
			return err
		}
		if !actor.CanActFor(c.EmployeeID) {
			return balance.ErrNotOwner
		}
		if !c.IsAvailableOn(today) {
			return balance.ErrCompOffNotAvailable
		}
		next, err := balance.CompOffWorkflow.Fire(c.Status, workflow.TriggerUse)
		if err != nil {
			return fmt.Errorf("%w: %w", balance.ErrCompOffNotAvailable, err)
		}

		c.Status = next
		c.UsedOn = &usedOn
		c.UpdatedAt = s.now()
		if err := s.compOffRepo.Update(ctx, c); err != nil {
			return fmt.Errorf("failed to use comp-off: %w", err)
		}
		credit = c
		return nil
	})
	if err != nil {
		return balance.CompOffResponse{}, err
	}

	balance.RecomputeMonthsOf(ctx, s, credit.EmployeeID, credit.EarnedDate)
	return balance.ToCompOffResponse(credit, today), nil
}

// ListCompOffs implements balance.BalanceService.
func (s *BalanceServiceImpl) ListCompOffs(ctx context.Context, actor user.Actor, query balance.ListCompOffQuery) ([]balance.CompOffResponse, error) {
	employeeID := query.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.CanActFor(employeeID) && !actor.Can(user.PermissionViewAll) {
		return nil, user.ErrNotOwner
	}

	today := s.today()
	filter := balance.CompOffFilter{EmployeeID: &employeeID}
	if query.AvailableOnly {
		filter.AvailableOn = &today
	}

	credits, err := s.compOffRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list comp-offs: %w", err)
	}

	resp := make([]balance.CompOffResponse, 0, len(credits))
	for _, c := range credits {
		resp = append(resp, balance.ToCompOffResponse(c, today))
	}
	return resp, nil
}
