package calendar

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

type CalendarService interface {
	CreateHoliday(ctx context.Context, actor user.Actor, req CreateHolidayRequest) (Holiday, error)
	DeleteHoliday(ctx context.Context, actor user.Actor, date string) error
	ListHolidays(ctx context.Context, query ListHolidayQuery) ([]Holiday, error)

	// Between loads the calendar covering [from, to].
	Between(ctx context.Context, from, to time.Time) (Calendar, error)
}
