package notification

import (
	"context"
	"time"
)

type EventRepository interface {
	CreateBatch(ctx context.Context, events []Event) error
	GetByID(ctx context.Context, id string) (Event, error)
	MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error
	MarkFailed(ctx context.Context, id string, attempts int, lastError string) error
	// ListRetryable returns failed events with fewer than maxAttempts attempts, oldest first.
	ListRetryable(ctx context.Context, maxAttempts, limit int) ([]Event, error)
	ListByEmployee(ctx context.Context, employeeID string, page, limit int, unreadOnly bool) ([]Event, int64, error)
	GetUnreadCount(ctx context.Context, employeeID string) (int64, error)
	MarkAsRead(ctx context.Context, employeeID string, ids []string, at time.Time) error
	MarkAllAsRead(ctx context.Context, employeeID string, at time.Time) error
}
