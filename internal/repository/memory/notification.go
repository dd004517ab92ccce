package memory

import (
	"context"
	"slices"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
)

type notificationRepository struct {
	s *Store
}

func NewNotificationRepository(s *Store) notification.EventRepository {
	return &notificationRepository{s: s}
}

func (r *notificationRepository) CreateBatch(ctx context.Context, events []notification.Event) error {
	defer r.s.acquire(ctx)()

	for _, e := range events {
		r.s.t.events[e.ID] = e
	}
	return nil
}

func (r *notificationRepository) GetByID(ctx context.Context, id string) (notification.Event, error) {
	defer r.s.acquire(ctx)()

	e, ok := r.s.t.events[id]
	if !ok {
		return notification.Event{}, notification.ErrEventNotFound
	}
	return e, nil
}

func (r *notificationRepository) MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error {
	defer r.s.acquire(ctx)()

	e, ok := r.s.t.events[id]
	if !ok {
		return notification.ErrEventNotFound
	}
	e.Status, e.Attempts, e.LastError, e.DeliveredAt = notification.StatusDelivered, attempts, nil, &at
	r.s.t.events[id] = e
	return nil
}

func (r *notificationRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	defer r.s.acquire(ctx)()

	e, ok := r.s.t.events[id]
	if !ok {
		return notification.ErrEventNotFound
	}
	e.Status, e.Attempts, e.LastError = notification.StatusFailed, attempts, &lastError
	r.s.t.events[id] = e
	return nil
}

func (r *notificationRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]notification.Event, error) {
	defer r.s.acquire(ctx)()

	items := sortedValues(r.s.t.events,
		func(e notification.Event) bool { return e.Status == notification.StatusFailed && e.Attempts < maxAttempts },
		func(a, b notification.Event) bool { return a.CreatedAt.Before(b.CreatedAt) },
	)
	return paginate(items, 1, limit), nil
}

func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, page, limit int, unreadOnly bool) ([]notification.Event, int64, error) {
	defer r.s.acquire(ctx)()

	items := sortedValues(r.s.t.events,
		func(e notification.Event) bool { return e.EmployeeID == employeeID && (!unreadOnly || !e.IsRead()) },
		func(a, b notification.Event) bool { return a.CreatedAt.After(b.CreatedAt) },
	)
	return paginate(items, page, limit), int64(len(items)), nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, employeeID string) (int64, error) {
	defer r.s.acquire(ctx)()

	var n int64
	for _, e := range r.s.t.events {
		if e.EmployeeID == employeeID && !e.IsRead() {
			n++
		}
	}
	return n, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, employeeID string, ids []string, at time.Time) error {
	defer r.s.acquire(ctx)()

	for id, e := range r.s.t.events {
		if e.EmployeeID == employeeID && !e.IsRead() && slices.Contains(ids, id) {
			e.ReadAt = &at
			r.s.t.events[id] = e
		}
	}
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, employeeID string, at time.Time) error {
	defer r.s.acquire(ctx)()

	for id, e := range r.s.t.events {
		if e.EmployeeID == employeeID && !e.IsRead() {
			e.ReadAt = &at
			r.s.t.events[id] = e
		}
	}
	return nil
}
