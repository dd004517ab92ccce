package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
)

const eventColumns = `id, employee_id, event_type, payload, status, attempts, last_error, read_at, created_at, delivered_at`

type notificationRepository struct {
	db *database.DB
}

// NewNotificationRepository creates the outbox repository
func NewNotificationRepository(db *database.DB) notification.EventRepository {
	return &notificationRepository{db: db}
}

func scanEvent(row pgx.Row) (notification.Event, error) {
	var (
		e       notification.Event
		payload []byte
	)
	if err := row.Scan(&e.ID, &e.EmployeeID, &e.Type, &payload, &e.Status, &e.Attempts, &e.LastError, &e.ReadAt, &e.CreatedAt, &e.DeliveredAt); err != nil {
		return notification.Event{}, err
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Payload); err != nil {
			return notification.Event{}, fmt.Errorf("failed to unmarshal notification payload: %w", err)
		}
	}
	return e, nil
}

// CreateBatch inserts the events with one multi-row statement
func (r *notificationRepository) CreateBatch(ctx context.Context, events []notification.Event) error {
	if len(events) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	const cols = 7
	valueStrings := make([]string, 0, len(events))
	valueArgs := make([]any, 0, len(events)*cols)

	for i, e := range events {
		payload, err := json.Marshal(e.Payload)
		if err != nil {
			return fmt.Errorf("failed to marshal notification payload: %w", err)
		}

		base := i * cols
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
		))
		valueArgs = append(valueArgs, e.ID, e.EmployeeID, string(e.Type), payload, string(e.Status), e.Attempts, e.CreatedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO notification_events (id, employee_id, event_type, payload, status, attempts, created_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := q.Exec(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to batch create notifications: %w", err)
	}
	return nil
}

// GetByID implements notification.EventRepository.
func (r *notificationRepository) GetByID(ctx context.Context, id string) (notification.Event, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEvent(q.QueryRow(ctx, `SELECT `+eventColumns+` FROM notification_events WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return notification.Event{}, notification.ErrEventNotFound
		}
		return notification.Event{}, fmt.Errorf("failed to get notification: %w", err)
	}
	return e, nil
}

// MarkDelivered implements notification.EventRepository.
func (r *notificationRepository) MarkDelivered(ctx context.Context, id string, attempts int, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notification_events SET status = 'delivered', attempts = $2, last_error = NULL, delivered_at = $3
		WHERE id = $1
	`, id, attempts, at)
	if err != nil {
		return fmt.Errorf("failed to mark notification delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrEventNotFound
	}
	return nil
}

// MarkFailed implements notification.EventRepository.
func (r *notificationRepository) MarkFailed(ctx context.Context, id string, attempts int, lastError string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE notification_events SET status = 'failed', attempts = $2, last_error = $3
		WHERE id = $1
	`, id, attempts, lastError)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notification.ErrEventNotFound
	}
	return nil
}

// ListRetryable implements notification.EventRepository.
func (r *notificationRepository) ListRetryable(ctx context.Context, maxAttempts, limit int) ([]notification.Event, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT `+eventColumns+` FROM notification_events
		WHERE status = 'failed' AND attempts < $1
		ORDER BY created_at
		LIMIT $2
	`, maxAttempts, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list retryable notifications: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// ListByEmployee implements notification.EventRepository.
func (r *notificationRepository) ListByEmployee(ctx context.Context, employeeID string, page, limit int, unreadOnly bool) ([]notification.Event, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := "employee_id = $1"
	if unreadOnly {
		where += " AND read_at IS NULL"
	}

	var total int64
	if err := q.QueryRow(ctx, "SELECT COUNT(*) FROM notification_events WHERE "+where, employeeID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := q.Query(ctx, `
		SELECT `+eventColumns+` FROM notification_events
		WHERE `+where+`
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, employeeID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	events, err := collectEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// GetUnreadCount implements notification.EventRepository.
func (r *notificationRepository) GetUnreadCount(ctx context.Context, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	if err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM notification_events WHERE employee_id = $1 AND read_at IS NULL`, employeeID,
	).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

// MarkAsRead implements notification.EventRepository.
func (r *notificationRepository) MarkAsRead(ctx context.Context, employeeID string, ids []string, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `
		UPDATE notification_events SET read_at = $3
		WHERE employee_id = $1 AND id = ANY($2) AND read_at IS NULL
	`, employeeID, ids, at); err != nil {
		return fmt.Errorf("failed to mark notifications as read: %w", err)
	}
	return nil
}

// MarkAllAsRead implements notification.EventRepository.
func (r *notificationRepository) MarkAllAsRead(ctx context.Context, employeeID string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx,
		`UPDATE notification_events SET read_at = $2 WHERE employee_id = $1 AND read_at IS NULL`, employeeID, at,
	); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

func collectEvents(rows pgx.Rows) ([]notification.Event, error) {
	events := make([]notification.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
