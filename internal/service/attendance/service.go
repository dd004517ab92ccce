package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// Policy holds the attendance rules that are deployment specific.
type Policy struct {
	Location          *time.Location
	OnTimeCutoff      time.Duration // offset from local midnight
	CompOffExpiryDays int           // zero means credits never expire
}

type AttendanceServiceImpl struct {
	tx             database.Transactor
	attendanceRepo attendance.AttendanceRepository
	employeeRepo   employee.EmployeeRepository
	compOffRepo    balance.CompOffRepository
	siteVisitRepo  sitevisit.SiteVisitRepository
	calendar       calendar.CalendarService
	recomputer     balance.Recomputer
	publisher      notification.Publisher
	policy         Policy
	now            func() time.Time
}

func NewAttendanceService(
	tx database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	compOffRepo balance.CompOffRepository,
	siteVisitRepo sitevisit.SiteVisitRepository,
	calendarService calendar.CalendarService,
	recomputer balance.Recomputer,
	publisher notification.Publisher,
	policy Policy,
) attendance.AttendanceService {
	if policy.Location == nil {
		policy.Location = time.UTC
	}
	return &AttendanceServiceImpl{
		tx:             tx,
		attendanceRepo: attendanceRepo,
		employeeRepo:   employeeRepo,
		compOffRepo:    compOffRepo,
		siteVisitRepo:  siteVisitRepo,
		calendar:       calendarService,
		recomputer:     recomputer,
		publisher:      publisher,
		policy:         policy,
		now:            time.Now,
	}
}

// markInput is the normalized form of a mark or check-in.
type markInput struct {
	employeeID string
	date       time.Time
	status     attendance.Status
	entry      *time.Time
	exit       *time.Time
	notes      *string
	siteVisit  bool
	overwrite  bool
}

func (s *AttendanceServiceImpl) today() time.Time {
	return calendar.Today(s.now(), s.policy.Location)
}

// atClock returns the instant clock after local midnight of date.
func (s *AttendanceServiceImpl) atClock(date time.Time, clock time.Duration) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.policy.Location).Add(clock).UTC()
}

func (s *AttendanceServiceImpl) toResponse(a attendance.Attendance) attendance.AttendanceResponse {
	return attendance.ToResponse(a, s.policy.OnTimeCutoff, s.policy.Location)
}

// activeEmployee loads the employee a record is written for.
func (s *AttendanceServiceImpl) activeEmployee(ctx context.Context, employeeID string) (employee.Employee, error) {
	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("attendance for unknown employee", "integrity", true, "employee_id", employeeID)
		}
		return employee.Employee{}, err
	}
	if !emp.IsActive {
		return employee.Employee{}, employee.ErrEmployeeInactive
	}
	return emp, nil
}

// MarkAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) MarkAttendance(ctx context.Context, actor user.Actor, req attendance.MarkAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	employeeID := req.EmployeeID
	if employeeID == "" {
		employeeID = actor.EmployeeID
	}
	if !actor.CanActFor(employeeID) {
		return attendance.AttendanceResponse{}, attendance.ErrNotOwner
	}

	date, _ := validator.IsValidDate(req.Date)
	if !actor.IsAdmin() && !date.Equal(s.today()) {
		return attendance.AttendanceResponse{}, attendance.ErrNotToday
	}

	in := markInput{
		employeeID: employeeID,
		date:       date,
		status:     attendance.Status(req.Status),
		notes:      req.Notes,
		siteVisit:  req.IsSiteVisit,
		overwrite:  actor.IsAdmin(),
	}
	if req.EntryTime != nil {
		clock, _ := validator.IsValidClock(*req.EntryTime)
		entry := s.atClock(date, clock)
		in.entry = &entry
	}
	if req.ExitTime != nil {
		clock, _ := validator.IsValidClock(*req.ExitTime)
		exit := s.atClock(date, clock)
		in.exit = &exit
	}
	if in.entry != nil && in.exit != nil && in.exit.Before(*in.entry) {
		return attendance.AttendanceResponse{}, attendance.ErrExitBeforeEntry
	}

	att, err := s.mark(ctx, in, actor.IsAdmin())
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.toResponse(att), nil
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, actor user.Actor, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	now := s.now().UTC()
	att, err := s.mark(ctx, markInput{
		employeeID: actor.EmployeeID,
		date:       s.today(),
		status:     attendance.Status(req.Status),
		entry:      &now,
		notes:      req.Notes,
	}, false)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return s.toResponse(att), nil
}

func (s *AttendanceServiceImpl) mark(ctx context.Context, in markInput, adminEdited bool) (attendance.Attendance, error) {
	if _, err := s.activeEmployee(ctx, in.employeeID); err != nil {
		return attendance.Attendance{}, err
	}

	cal, err := s.calendar.Between(ctx, in.date, in.date)
	if err != nil {
		return attendance.Attendance{}, err
	}
	nonWorking := cal.IsNonWorkingDay(in.date)

	today := s.today()
	now := s.now()

	var (
		saved   attendance.Attendance
		touched *balance.CompOff
	)
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.attendanceRepo.GetByEmployeeAndDateForUpdate(ctx, in.employeeID, in.date)
		found := err == nil
		if err != nil && !errors.Is(err, attendance.ErrAttendanceNotFound) {
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		if found && !in.overwrite {
			return attendance.ErrAlreadyMarked
		}

		att := attendance.Attendance{
			ID:         uuid.Must(uuid.NewV7()).String(),
			EmployeeID: in.employeeID,
			Date:       in.date,
			CreatedAt:  now,
		}
		if found {
			att = existing
			adminEdited = true
		}
		att.Status = in.status
		att.EntryTime = in.entry
		att.ExitTime = in.exit
		att.Notes = in.notes
		att.IsSiteVisit = att.IsSiteVisit || in.siteVisit
		att.AdminEdited = att.AdminEdited || adminEdited
		att.UpdatedAt = now

		touched, err = s.settleCompOff(ctx, &att, nonWorking, today, now)
		if err != nil {
			return err
		}

		if found {
			if err := s.attendanceRepo.Update(ctx, att); err != nil {
				return fmt.Errorf("failed to update attendance: %w", err)
			}
			saved = att
			return nil
		}
		saved, err = s.attendanceRepo.Create(ctx, att)
		if err != nil {
			if errors.Is(err, attendance.ErrAlreadyMarked) {
				return err
			}
			return fmt.Errorf("failed to create attendance: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Attendance{}, err
	}

	if touched == nil {
		balance.RecomputeMonthsOf(ctx, s.recomputer, saved.EmployeeID, saved.Date)
		return saved, nil
	}

	// Credits are counted in the month they were earned.
	balance.RecomputeMonthsOf(ctx, s.recomputer, saved.EmployeeID, saved.Date, touched.EarnedDate)
	if touched.Status == balance.CompOffStatusAvailable {
		s.publisher.Publish(ctx, notification.Message{
			EmployeeID: saved.EmployeeID,
			Type:       notification.TypeCompOffEarned,
			Payload: map[string]any{
				"comp_off_id":     touched.ID,
				"earned_for_date": touched.EarnedForDate.Format(calendar.DateLayout),
			},
		})
	}
	return saved, nil
}

// settleCompOff keeps the comp-off credit of a record in line with its
// status. It returns the credit it created or cancelled, if any.
func (s *AttendanceServiceImpl) settleCompOff(ctx context.Context, att *attendance.Attendance, nonWorking bool, today, now time.Time) (*balance.CompOff, error) {
	current, err := s.compOffRepo.GetActiveByEarnedFor(ctx, att.EmployeeID, att.Date)
	hasCredit := err == nil
	if err != nil && !errors.Is(err, balance.ErrCompOffNotFound) {
		return nil, fmt.Errorf("failed to load comp-off: %w", err)
	}

	earns := nonWorking && att.Status.IsWorked()

	switch {
	case earns && !hasCredit:
		credit := balance.CompOff{
			ID:            uuid.Must(uuid.NewV7()).String(),
			EmployeeID:    att.EmployeeID,
			EarnedDate:    today,
			EarnedForDate: att.Date,
			Status:        balance.CompOffStatusAvailable,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if s.policy.CompOffExpiryDays > 0 {
			expires := today.AddDate(0, 0, s.policy.CompOffExpiryDays)
			credit.ExpiresAt = &expires
		}
		created, err := s.compOffRepo.Create(ctx, credit)
		if err != nil {
			if errors.Is(err, balance.ErrCompOffExists) {
				att.CompOffEarned = true
				return nil, nil
			}
			return nil, fmt.Errorf("failed to create comp-off: %w", err)
		}
		att.CompOffEarned = true
		return &created, nil

	case earns:
		att.CompOffEarned = true

	case hasCredit:
		// A used credit stays; only an unused one is withdrawn.
		if next, err := balance.CompOffWorkflow.Fire(current.Status, workflow.TriggerCancel); err == nil {
			current.Status = next
			current.UpdatedAt = now
			if err := s.compOffRepo.Update(ctx, current); err != nil {
				return nil, fmt.Errorf("failed to cancel comp-off: %w", err)
			}
			att.CompOffEarned = false
			return &current, nil
		}
	}
	return nil, nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, actor user.Actor) (attendance.AttendanceResponse, error) {
	today := s.today()
	now := s.now().UTC()

	var saved attendance.Attendance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		att, err := s.attendanceRepo.GetByEmployeeAndDateForUpdate(ctx, actor.EmployeeID, today)
		if err != nil {
			if errors.Is(err, attendance.ErrAttendanceNotFound) {
				return attendance.ErrNotCheckedIn
			}
			return fmt.Errorf("failed to load attendance: %w", err)
		}
		if att.EntryTime == nil {
			return attendance.ErrNotCheckedIn
		}
		if att.ExitTime != nil {
			return attendance.ErrAlreadyCheckedOut
		}
		if now.Before(*att.EntryTime) {
			return attendance.ErrExitBeforeEntry
		}

		att.ExitTime = &now
		att.UpdatedAt = now
		if err := s.attendanceRepo.Update(ctx, att); err != nil {
			return fmt.Errorf("failed to check out: %w", err)
		}
		saved = att
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	balance.RecomputeMonthsOf(ctx, s.recomputer, saved.EmployeeID, saved.Date)
	return s.toResponse(saved), nil
}

// DeleteAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) DeleteAttendance(ctx context.Context, actor user.Actor, id string) error {
	if !actor.Can(user.PermissionAttendanceDelete) {
		return user.ErrAdminPrivilegeRequired
	}

	var (
		deleted   attendance.Attendance
		cancelled *balance.CompOff
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		att, err := s.attendanceRepo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := s.siteVisitRepo.DeleteByAttendanceID(ctx, att.ID); err != nil {
			return fmt.Errorf("failed to delete site visit: %w", err)
		}

		att.Status = attendance.StatusAbsent
		cancelled, err = s.settleCompOff(ctx, &att, false, s.today(), s.now())
		if err != nil {
			return err
		}

		if err := s.attendanceRepo.Delete(ctx, att.ID); err != nil {
			return fmt.Errorf("failed to delete attendance: %w", err)
		}
		deleted = att
		return nil
	})
	if err != nil {
		return err
	}

	dates := []time.Time{deleted.Date}
	if cancelled != nil {
		dates = append(dates, cancelled.EarnedDate)
	}
	balance.RecomputeMonthsOf(ctx, s.recomputer, deleted.EmployeeID, dates...)
	return nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, actor user.Actor, id string) (attendance.AttendanceResponse, error) {
	att, err := s.attendanceRepo.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	if !actor.CanActFor(att.EmployeeID) && !actor.Can(user.PermissionViewAll) {
		return attendance.AttendanceResponse{}, attendance.ErrNotOwner
	}
	return s.toResponse(att), nil
}

// ListAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendance(ctx context.Context, actor user.Actor, query attendance.ListAttendanceQuery) (attendance.ListAttendanceResponse, error) {
	filter, err := query.ToFilter()
	if err != nil {
		return attendance.ListAttendanceResponse{}, err
	}
	if !actor.Can(user.PermissionViewAll) {
		own := actor.EmployeeID
		filter.EmployeeID = &own
	}

	records, total, err := s.attendanceRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	items := make([]attendance.AttendanceResponse, 0, len(records))
	for _, a := range records {
		items = append(items, s.toResponse(a))
	}
	return attendance.ListAttendanceResponse{
		Items: items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}
