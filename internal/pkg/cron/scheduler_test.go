package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
)

func TestScheduler_RunOnce(t *testing.T) {
	s := NewScheduler()
	var ran []string
	s.AddJob("ok", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "ok")
		return nil
	})
	s.AddJob("broken", time.Minute, func(ctx context.Context) error {
		ran = append(ran, "broken")
		return errors.New("boom")
	})
	s.AddJob("disabled", 0, func(ctx context.Context) error {
		ran = append(ran, "disabled")
		return nil
	})

	err := s.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken: boom")
	assert.Equal(t, []string{"ok", "broken"}, ran)
	assert.Equal(t, []string{"ok", "broken"}, s.Jobs())
}

func TestScheduler_StartStop(t *testing.T) {
	s := NewScheduler()
	var runs atomic.Int32
	s.AddJob("tick", 10*time.Millisecond, func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start()
	assert.Eventually(t, func() bool { return runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

type fakeBalanceService struct {
	balance.BalanceService
	months [][2]int
}

func (f *fakeBalanceService) RecomputeAll(ctx context.Context, year, month int) (int, error) {
	f.months = append(f.months, [2]int{year, month})
	return 3, nil
}

type fakeNotificationService struct {
	notification.NotificationService
	retries int
}

func (f *fakeNotificationService) RetryFailed(ctx context.Context) (int, error) {
	f.retries++
	return 0, nil
}

func TestJobs_RecomputeMonthlyBalances(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want [][2]int
	}{
		{"mid month", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), [][2]int{{2026, 3}}},
		{"first days include previous month", time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), [][2]int{{2026, 3}, {2026, 2}}},
		{"january catches up december", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC), [][2]int{{2026, 1}, {2025, 12}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBalanceService{}
			j := NewJobs(fb, &fakeNotificationService{}, time.UTC)
			j.now = func() time.Time { return tt.now }

			require.NoError(t, j.RecomputeMonthlyBalances(context.Background()))
			assert.Equal(t, tt.want, fb.months)
		})
	}
}

func TestJobs_Register(t *testing.T) {
	fn := &fakeNotificationService{}
	j := NewJobs(&fakeBalanceService{}, fn, nil)
	s := NewScheduler()
	j.RegisterJobs(s, time.Hour, time.Minute)

	assert.Equal(t, []string{"recompute_monthly_balances", "retry_failed_notifications"}, s.Jobs())
	require.NoError(t, s.RunOnce(context.Background()))
	assert.Equal(t, 1, fn.retries)
}
