package notification

import (
	"context"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/email"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/i18n"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/sse"
)

// Message renders the localized text of an event.
func Message(ctx context.Context, e notification.Event) string {
	return i18n.T(ctx, "notification."+string(e.Type), e.Payload)
}

// Subject renders the localized title of an event.
func Subject(ctx context.Context, e notification.Event) string {
	return i18n.T(ctx, "subject."+string(e.Type))
}

// HubSink pushes events to open SSE streams. Having no open stream is not a
// failure; the event stays readable through the list endpoint.
type HubSink struct {
	hub *sse.Hub
}

func NewHubSink(hub *sse.Hub) *HubSink {
	return &HubSink{hub: hub}
}

func (s *HubSink) Name() string { return "sse" }

type streamPayload struct {
	notification.EventResponse
	Title   string `json:"title"`
	Message string `json:"message"`
}

func (s *HubSink) Deliver(ctx context.Context, recipient employee.Employee, e notification.Event) error {
	s.hub.Publish(recipient.ID, sse.Event{
		Event: "notification",
		ID:    e.ID,
		Data: streamPayload{
			EventResponse: notification.ToResponse(e),
			Title:         Subject(ctx, e),
			Message:       Message(ctx, e),
		},
	})
	return nil
}

// DirectMessenger sends a chat direct message.
type DirectMessenger interface {
	SendDM(ctx context.Context, userID, message string) error
}

// ChatSink sends events as bot direct messages to linked chat accounts.
type ChatSink struct {
	client DirectMessenger
}

func NewChatSink(client DirectMessenger) *ChatSink {
	return &ChatSink{client: client}
}

func (s *ChatSink) Name() string { return "chat" }

func (s *ChatSink) Deliver(ctx context.Context, recipient employee.Employee, e notification.Event) error {
	if recipient.ChatUserID == nil || *recipient.ChatUserID == "" {
		return notification.ErrSinkDisabled
	}
	return s.client.SendDM(ctx, *recipient.ChatUserID, Message(ctx, e))
}

// EmailSink mails events to the recipient address.
type EmailSink struct {
	mailer email.EmailService
}

func NewEmailSink(mailer email.EmailService) *EmailSink {
	return &EmailSink{mailer: mailer}
}

func (s *EmailSink) Name() string { return "email" }

func (s *EmailSink) Deliver(ctx context.Context, recipient employee.Employee, e notification.Event) error {
	if !s.mailer.Enabled() || recipient.Email == "" {
		return notification.ErrSinkDisabled
	}
	return s.mailer.SendNotification(ctx, recipient.Email, recipient.FullName, Subject(ctx, e), Message(ctx, e))
}
