package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

type NotificationService interface {
	Publisher

	ListNotifications(ctx context.Context, actor user.Actor, query ListNotificationQuery) (ListNotificationResponse, error)
	GetUnreadCount(ctx context.Context, actor user.Actor) (int64, error)
	MarkAsRead(ctx context.Context, actor user.Actor, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, actor user.Actor) error

	// RetryFailed redelivers failed events and returns how many succeeded.
	RetryFailed(ctx context.Context) (int, error)

	Subscribe(ctx context.Context, employeeID string) (<-chan sse.Event, func())

	// Stop drains the queue and waits for workers.
	Stop()
}
