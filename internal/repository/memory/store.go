// Package memory is an in-process implementation of every repository and of
// database.Transactor. Transactions are serialized and roll back by restoring
// a snapshot, so it suits tests and single-node demos.
package memory

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/balance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/calendar"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/sitevisit"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

type txKey struct{}

type monthKey struct {
	employeeID  string
	year, month int
}

type quotaKey struct {
	employeeID string
	year       int
}

type tables struct {
	employees     map[string]employee.Employee
	holidays      map[time.Time]calendar.Holiday
	attendances   map[string]attendance.Attendance
	balances      map[monthKey]balance.MonthlyBalance
	compOffs      map[string]balance.CompOff
	leaveRequests map[string]leave.LeaveRequest
	leaveQuotas   map[quotaKey]leave.LeaveQuota
	siteVisits    map[string]sitevisit.SiteVisit
	expenses      map[string]sitevisit.Expense
	events        map[string]notification.Event
}

func (t tables) clone() tables {
	return tables{
		employees:     maps.Clone(t.employees),
		holidays:      maps.Clone(t.holidays),
		attendances:   maps.Clone(t.attendances),
		balances:      maps.Clone(t.balances),
		compOffs:      maps.Clone(t.compOffs),
		leaveRequests: maps.Clone(t.leaveRequests),
		leaveQuotas:   maps.Clone(t.leaveQuotas),
		siteVisits:    maps.Clone(t.siteVisits),
		expenses:      maps.Clone(t.expenses),
		events:        maps.Clone(t.events),
	}
}

// Store holds all tables. mu is held for the whole of a transaction, and
// for the duration of each call made outside one.
type Store struct {
	mu sync.Mutex
	t  tables
}

var _ database.Transactor = (*Store)(nil)

func NewStore() *Store {
	return &Store{t: tables{
		employees:     make(map[string]employee.Employee),
		holidays:      make(map[time.Time]calendar.Holiday),
		attendances:   make(map[string]attendance.Attendance),
		balances:      make(map[monthKey]balance.MonthlyBalance),
		compOffs:      make(map[string]balance.CompOff),
		leaveRequests: make(map[string]leave.LeaveRequest),
		leaveQuotas:   make(map[quotaKey]leave.LeaveQuota),
		siteVisits:    make(map[string]sitevisit.SiteVisit),
		expenses:      make(map[string]sitevisit.Expense),
		events:        make(map[string]notification.Event),
	}}
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// acquire locks the store unless ctx already belongs to a transaction on it.
func (s *Store) acquire(ctx context.Context) func() {
	if s.inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// WithinTransaction implements database.Transactor.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.t.clone()
	defer func() {
		if p := recover(); p != nil {
			s.t = snapshot
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.t = snapshot
		return err
	}
	return nil
}

// SeedEmployee inserts or replaces an employee row.
func (s *Store) SeedEmployee(e employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.t.employees[e.ID] = e
}

func paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		return items
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := min(start+limit, len(items))
	return items[start:end]
}

func sortedValues[K comparable, V any](m map[K]V, keep func(V) bool, less func(a, b V) bool) []V {
	out := make([]V, 0)
	for _, v := range m {
		if keep == nil || keep(v) {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func within(d, from, to time.Time) bool {
	return !d.Before(from) && !d.After(to)
}
