package notification

import (
	"time"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "notification_ids", Message: "notification_ids must not be empty"})
	}
	if len(r.NotificationIDs) > 100 {
		errs = append(errs, validator.ValidationError{Field: "notification_ids", Message: "notification_ids must not exceed 100 items"})
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{Field: "notification_ids", Message: "notification_ids must contain valid UUIDs"})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ListNotificationQuery struct {
	Page       int
	Limit      int
	UnreadOnly bool
}

type EventResponse struct {
	ID          string         `json:"id"`
	Type        EventType      `json:"type"`
	Payload     map[string]any `json:"payload,omitempty"`
	Status      DeliveryStatus `json:"status"`
	IsRead      bool           `json:"is_read"`
	ReadAt      *time.Time     `json:"read_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeliveredAt *time.Time     `json:"delivered_at,omitempty"`
}

func ToResponse(e Event) EventResponse {
	return EventResponse{
		ID:          e.ID,
		Type:        e.Type,
		Payload:     e.Payload,
		Status:      e.Status,
		IsRead:      e.IsRead(),
		ReadAt:      e.ReadAt,
		CreatedAt:   e.CreatedAt,
		DeliveredAt: e.DeliveredAt,
	}
}

type ListNotificationResponse struct {
	Items       []EventResponse `json:"items"`
	Total       int64           `json:"total"`
	UnreadCount int64           `json:"unread_count"`
	Page        int             `json:"page"`
	Limit       int             `json:"limit"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

type RetryResponse struct {
	Delivered int `json:"delivered"`
}
