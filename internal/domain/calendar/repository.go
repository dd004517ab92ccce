package calendar

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, h Holiday) (Holiday, error)
	Delete(ctx context.Context, date time.Time) error
	GetByDate(ctx context.Context, date time.Time) (Holiday, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}
