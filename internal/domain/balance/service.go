package balance

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
)

// Recomputer is what writers of attendance and leave call after commit.
type Recomputer interface {
	RecomputeMonthlyBalance(ctx context.Context, employeeID string, year, month int) (MonthlyBalance, error)
}

type BalanceService interface {
	Recomputer

	// RecomputeAll rebuilds the month for every active employee.
	RecomputeAll(ctx context.Context, year, month int) (int, error)

	GetMonthlyBalance(ctx context.Context, actor user.Actor, employeeID string, year, month int) (MonthlyBalanceResponse, error)
	UseCompOff(ctx context.Context, actor user.Actor, creditID string, req UseCompOffRequest) (CompOffResponse, error)
	ListCompOffs(ctx context.Context, actor user.Actor, query ListCompOffQuery) ([]CompOffResponse, error)
}

// RecomputeMonthsOf refreshes the months containing dates. It runs after the
// writer has committed; failures are logged and do not fail the write.
func RecomputeMonthsOf(ctx context.Context, r Recomputer, employeeID string, dates ...time.Time) {
	seen := make(map[[2]int]bool, len(dates))
	for _, d := range dates {
		key := [2]int{d.Year(), int(d.Month())}
		if d.IsZero() || seen[key] {
			continue
		}
		seen[key] = true
		if _, err := r.RecomputeMonthlyBalance(ctx, employeeID, key[0], key[1]); err != nil {
			slog.Error("failed to recompute monthly balance",
				"employee_id", employeeID, "year", key[0], "month", key[1], "error", err)
		}
	}
}
