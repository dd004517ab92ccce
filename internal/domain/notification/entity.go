package notification

import (
	"context"
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/workflow"
)

// EventType identifies what happened to the recipient's records.
type EventType string

const (
	TypeLeaveRequested     EventType = "leave_requested"
	TypeLeaveApproved      EventType = "leave_approved"
	TypeLeaveRejected      EventType = "leave_rejected"
	TypeLeaveCancelled     EventType = "leave_cancelled"
	TypeSiteVisitSubmitted EventType = "site_visit_submitted"
	TypeSiteVisitApproved  EventType = "site_visit_approved"
	TypeSiteVisitRejected  EventType = "site_visit_rejected"
	TypeCompOffEarned      EventType = "comp_off_earned"
)

// AllEventTypes returns all event types
func AllEventTypes() []EventType {
	return []EventType{
		TypeLeaveRequested,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypeLeaveCancelled,
		TypeSiteVisitSubmitted,
		TypeSiteVisitApproved,
		TypeSiteVisitRejected,
		TypeCompOffEarned,
	}
}

type DeliveryStatus string

const (
	StatusPending   DeliveryStatus = "pending"
	StatusDelivered DeliveryStatus = "delivered"
	StatusFailed    DeliveryStatus = "failed"
)

// DeliveryWorkflow tracks outbox delivery. Failed events may be retried.
var DeliveryWorkflow = workflow.New[DeliveryStatus]("notification delivery").
	Permit(StatusPending, workflow.TriggerDeliver, StatusDelivered).
	Permit(StatusPending, workflow.TriggerFail, StatusFailed).
	Permit(StatusFailed, workflow.TriggerDeliver, StatusDelivered).
	Permit(StatusFailed, workflow.TriggerFail, StatusFailed)

// Message is what domain services publish after a commit.
type Message struct {
	EmployeeID string
	Type       EventType
	Payload    map[string]any
}

// Event is a persisted outbox row.
type Event struct {
	ID          string
	EmployeeID  string
	Type        EventType
	Payload     map[string]any
	Status      DeliveryStatus
	Attempts    int
	LastError   *string
	ReadAt      *time.Time
	CreatedAt   time.Time
	DeliveredAt *time.Time
}

func (e Event) IsRead() bool {
	return e.ReadAt != nil
}

// Publisher accepts messages for asynchronous delivery. Publish never blocks
// on delivery and never reports delivery failures to the caller.
type Publisher interface {
	Publish(ctx context.Context, msgs ...Message)
}

// Sink delivers a single event to one channel (SSE, chat, email).
type Sink interface {
	Name() string
	Deliver(ctx context.Context, recipient employee.Employee, e Event) error
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ...Message) {}
