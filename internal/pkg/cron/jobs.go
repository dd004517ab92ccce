package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
)

// catchUpDays is how long into a month the previous month is still rebuilt,
// so late corrections to the last days of a month are projected.
const catchUpDays = 3

type Jobs struct {
	balanceService      balance.BalanceService
	notificationService notification.NotificationService
	loc                 *time.Location
	now                 func() time.Time
}

func NewJobs(balanceService balance.BalanceService, notificationService notification.NotificationService, loc *time.Location) *Jobs {
	if loc == nil {
		loc = time.UTC
	}
	return &Jobs{
		balanceService:      balanceService,
		notificationService: notificationService,
		loc:                 loc,
		now:                 time.Now,
	}
}

func (j *Jobs) RegisterJobs(scheduler *Scheduler, recomputeInterval, retryInterval time.Duration) {
	scheduler.AddJob("recompute_monthly_balances", recomputeInterval, j.RecomputeMonthlyBalances)
	scheduler.AddJob("retry_failed_notifications", retryInterval, j.RetryFailedNotifications)
}

// RecomputeMonthlyBalances rebuilds the current month for every active
// employee, and the previous month during the first days of a month.
func (j *Jobs) RecomputeMonthlyBalances(ctx context.Context) error {
	today := j.now().In(j.loc)

	months := [][2]int{{today.Year(), int(today.Month())}}
	if today.Day() <= catchUpDays {
		prev := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, j.loc).AddDate(0, -1, 0)
		months = append(months, [2]int{prev.Year(), int(prev.Month())})
	}

	for _, m := range months {
		n, err := j.balanceService.RecomputeAll(ctx, m[0], m[1])
		if err != nil {
			return fmt.Errorf("failed to recompute %04d-%02d: %w", m[0], m[1], err)
		}
		slog.Info("Cron: monthly balances recomputed", "year", m[0], "month", m[1], "employees", n)
	}
	return nil
}

func (j *Jobs) RetryFailedNotifications(ctx context.Context) error {
	if _, err := j.notificationService.RetryFailed(ctx); err != nil {
		return err
	}
	return nil
}
