package balance

import (
	"context"
	"time"
)

type MonthlyBalanceRepository interface {
	Upsert(ctx context.Context, b MonthlyBalance) error
	Get(ctx context.Context, employeeID string, year, month int) (MonthlyBalance, error)
	ListByMonth(ctx context.Context, year, month int) ([]MonthlyBalance, error)
}

type CompOffRepository interface {
	Create(ctx context.Context, c CompOff) (CompOff, error)
	GetByID(ctx context.Context, id string) (CompOff, error)
	GetByIDForUpdate(ctx context.Context, id string) (CompOff, error)
	// GetActiveByEarnedFor returns the non-cancelled credit for the worked day.
	GetActiveByEarnedFor(ctx context.Context, employeeID string, earnedFor time.Time) (CompOff, error)
	Update(ctx context.Context, c CompOff) error
	List(ctx context.Context, filter CompOffFilter) ([]CompOff, error)
	ListEarnedBetween(ctx context.Context, employeeID string, from, to time.Time) ([]CompOff, error)
}

type CompOffFilter struct {
	EmployeeID *string
	Status     *CompOffStatus
	// AvailableOn keeps only credits usable on that day (lazy expiry).
	AvailableOn *time.Time
}
