package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type CalendarServiceImpl struct {
	calendar.HolidayRepository
	weeklyOff []time.Weekday
	now       func() time.Time
}

func NewCalendarService(holidayRepo calendar.HolidayRepository, weeklyOff []time.Weekday) calendar.CalendarService {
	return &CalendarServiceImpl{
		HolidayRepository: holidayRepo,
		weeklyOff:         weeklyOff,
		now:               time.Now,
	}
}

// CreateHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) CreateHoliday(ctx context.Context, actor user.Actor, req calendar.CreateHolidayRequest) (calendar.Holiday, error) {
	if !actor.Can(user.PermissionCalendarManage) {
		return calendar.Holiday{}, user.ErrAdminPrivilegeRequired
	}
	if err := req.Validate(); err != nil {
		return calendar.Holiday{}, err
	}

	date, _ := calendar.ParseDate(req.Date)
	h, err := s.HolidayRepository.Create(ctx, calendar.Holiday{
		Date:      date,
		Name:      req.Name,
		CreatedAt: s.now(),
	})
	if err != nil {
		return calendar.Holiday{}, fmt.Errorf("failed to create holiday: %w", err)
	}
	return h, nil
}

// DeleteHoliday implements calendar.CalendarService.
func (s *CalendarServiceImpl) DeleteHoliday(ctx context.Context, actor user.Actor, date string) error {
	if !actor.Can(user.PermissionCalendarManage) {
		return user.ErrAdminPrivilegeRequired
	}
	d, err := calendar.ParseDate(date)
	if err != nil {
		return calendar.ErrHolidayNotFound
	}
	if err := s.HolidayRepository.Delete(ctx, d); err != nil {
		return fmt.Errorf("failed to delete holiday: %w", err)
	}
	return nil
}

// ListHolidays implements calendar.CalendarService.
func (s *CalendarServiceImpl) ListHolidays(ctx context.Context, query calendar.ListHolidayQuery) ([]calendar.Holiday, error) {
	from, to, err := query.Range(s.now())
	if err != nil {
		return nil, err
	}
	holidays, err := s.HolidayRepository.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	return holidays, nil
}

// Between implements calendar.CalendarService.
func (s *CalendarServiceImpl) Between(ctx context.Context, from, to time.Time) (calendar.Calendar, error) {
	holidays, err := s.HolidayRepository.ListBetween(ctx, calendar.DateOf(from), calendar.DateOf(to))
	if err != nil {
		return calendar.Calendar{}, fmt.Errorf("failed to load holidays: %w", err)
	}
	return calendar.New(s.weeklyOff, holidays), nil
}
