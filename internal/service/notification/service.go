package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 2 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
	MaxAttempts   int           // default: 5
}

const retryBatchSize = 100

type service struct {
	repo      notification.EventRepository
	employees employee.EmployeeRepository
	hub       *sse.Hub
	sinks     []notification.Sink
	config    Config
	now       func() time.Time

	queue    chan notification.Message
	wg       sync.WaitGroup
	stopCh   chan struct{}
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
}

// NewNotificationService starts the delivery workers. The SSE hub is always
// a sink; extra sinks (chat, email) are tried after it.
func NewNotificationService(repo notification.EventRepository, employees employee.EmployeeRepository, hub *sse.Hub, cfg Config, sinks ...notification.Sink) notification.NotificationService {
	// Set defaults
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	s := &service{
		repo:      repo,
		employees: employees,
		hub:       hub,
		sinks:     append([]notification.Sink{NewHubSink(hub)}, sinks...),
		config:    cfg,
		now:       time.Now,
		queue:     make(chan notification.Message, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	names := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		names = append(names, sink.Name())
	}
	slog.Info("notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval, "sinks", names)

	return s
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.Message, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.process(ctx, batch, id)
		batch = batch[:0]
	}

	for {
		select {
		case msg := <-s.queue:
			batch = append(batch, msg)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// drain what is already queued
			for {
				select {
				case msg := <-s.queue:
					batch = append(batch, msg)
				default:
					flush()
					return
				}
			}
		}
	}
}

// process persists a batch to the outbox and delivers each event.
func (s *service) process(ctx context.Context, msgs []notification.Message, worker int) {
	now := s.now()
	events := make([]notification.Event, 0, len(msgs))
	for _, m := range msgs {
		events = append(events, notification.Event{
			ID:         uuid.Must(uuid.NewV7()).String(),
			EmployeeID: m.EmployeeID,
			Type:       m.Type,
			Payload:    m.Payload,
			Status:     notification.StatusPending,
			CreatedAt:  now,
		})
	}

	if err := s.repo.CreateBatch(ctx, events); err != nil {
		slog.Error("failed to persist notification batch", "worker", worker, "count", len(events), "error", err)
		return
	}
	slog.Debug("notification batch persisted", "worker", worker, "count", len(events))

	for _, e := range events {
		s.deliver(ctx, e)
	}
}

// deliver hands e to every sink and records the outcome. It reports whether
// every configured sink succeeded.
func (s *service) deliver(ctx context.Context, e notification.Event) bool {
	recipient, err := s.employees.GetByID(ctx, e.EmployeeID)
	if err != nil {
		s.markFailed(ctx, e, fmt.Errorf("failed to load recipient: %w", err))
		return false
	}
	e.Payload = s.enrich(ctx, e.Payload, recipient)

	var errs []error
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, recipient, e); err != nil && !errors.Is(err, notification.ErrSinkDisabled) {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		s.markFailed(ctx, e, err)
		return false
	}

	if _, err := notification.DeliveryWorkflow.Fire(e.Status, workflow.TriggerDeliver); err != nil {
		slog.Error("unexpected notification state", "event_id", e.ID, "error", err)
		return false
	}
	if err := s.repo.MarkDelivered(ctx, e.ID, e.Attempts+1, s.now()); err != nil {
		slog.Error("failed to mark notification delivered", "event_id", e.ID, "error", err)
		return false
	}
	return true
}

func (s *service) markFailed(ctx context.Context, e notification.Event, cause error) {
	if _, err := notification.DeliveryWorkflow.Fire(e.Status, workflow.TriggerFail); err != nil {
		slog.Error("unexpected notification state", "event_id", e.ID, "error", err)
		return
	}
	attempts := e.Attempts + 1
	slog.Warn("notification delivery failed", "event_id", e.ID, "employee_id", e.EmployeeID, "attempts", attempts, "error", cause)
	if err := s.repo.MarkFailed(ctx, e.ID, attempts, cause.Error()); err != nil {
		slog.Error("failed to mark notification failed", "event_id", e.ID, "error", err)
	}
}

// enrich adds display names used by message templates.
func (s *service) enrich(ctx context.Context, payload map[string]any, recipient employee.Employee) map[string]any {
	data := maps.Clone(payload)
	if data == nil {
		data = make(map[string]any)
	}
	data["recipient_name"] = recipient.FullName

	subjectID, _ := data["employee_id"].(string)
	switch subjectID {
	case "":
	case recipient.ID:
		data["employee_name"] = recipient.FullName
	default:
		if emp, err := s.employees.GetByID(ctx, subjectID); err == nil {
			data["employee_name"] = emp.FullName
		} else {
			data["employee_name"] = subjectID
		}
	}
	return data
}

// Publish implements notification.Publisher. It never blocks on delivery.
func (s *service) Publish(ctx context.Context, msgs ...notification.Message) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.stopped {
		slog.Warn("notification service stopped, dropping messages", "count", len(msgs))
		return
	}

	for _, m := range msgs {
		select {
		case s.queue <- m:
		default:
			// Queue full: persist this one on its own goroutine.
			slog.Warn("notification queue full, delivering directly", "type", m.Type, "employee_id", m.EmployeeID)
			s.wg.Add(1)
			go func(m notification.Message) {
				defer s.wg.Done()
				ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
				defer cancel()
				s.process(ctx, []notification.Message{m}, -1)
			}(m)
		}
	}
}

// ListNotifications implements notification.NotificationService.
func (s *service) ListNotifications(ctx context.Context, actor user.Actor, query notification.ListNotificationQuery) (notification.ListNotificationResponse, error) {
	page, limit := query.Page, query.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	events, total, err := s.repo.ListByEmployee(ctx, actor.EmployeeID, page, limit, query.UnreadOnly)
	if err != nil {
		return notification.ListNotificationResponse{}, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.GetUnreadCount(ctx, actor.EmployeeID)
	if err != nil {
		return notification.ListNotificationResponse{}, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	items := make([]notification.EventResponse, 0, len(events))
	for _, e := range events {
		items = append(items, notification.ToResponse(e))
	}
	return notification.ListNotificationResponse{
		Items:       items,
		Total:       total,
		UnreadCount: unread,
		Page:        page,
		Limit:       limit,
	}, nil
}

// GetUnreadCount implements notification.NotificationService.
func (s *service) GetUnreadCount(ctx context.Context, actor user.Actor) (int64, error) {
	return s.repo.GetUnreadCount(ctx, actor.EmployeeID)
}

// MarkAsRead implements notification.NotificationService.
func (s *service) MarkAsRead(ctx context.Context, actor user.Actor, req notification.MarkAsReadRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return s.repo.MarkAsRead(ctx, actor.EmployeeID, req.NotificationIDs, s.now())
}

// MarkAllAsRead implements notification.NotificationService.
func (s *service) MarkAllAsRead(ctx context.Context, actor user.Actor) error {
	return s.repo.MarkAllAsRead(ctx, actor.EmployeeID, s.now())
}

// RetryFailed implements notification.NotificationService.
func (s *service) RetryFailed(ctx context.Context) (int, error) {
	events, err := s.repo.ListRetryable(ctx, s.config.MaxAttempts, retryBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list retryable notifications: %w", err)
	}

	delivered := 0
	for _, e := range events {
		if err := ctx.Err(); err != nil {
			return delivered, err
		}
		if s.deliver(ctx, e) {
			delivered++
		}
	}
	if len(events) > 0 {
		slog.Info("notification retry finished", "retried", len(events), "delivered", delivered)
	}
	return delivered, nil
}

// Subscribe implements notification.NotificationService. The stream is
// closed when ctx ends or the returned cleanup is called.
func (s *service) Subscribe(ctx context.Context, employeeID string) (<-chan sse.Event, func()) {
	ch, cleanup := s.hub.Subscribe(employeeID)
	go func() {
		<-ctx.Done()
		cleanup()
	}()
	return ch, cleanup
}

// Stop implements notification.NotificationService.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()

		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
