package notification

import (
	"context"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error
	QueueBulkNotification(ctx context.Context, reqs []CreateNotificationRequest) error

	// Send and Broadcast are the operator-facing fan-outs.
	Send(ctx context.Context, req SendRequest) (int, error)
	Broadcast(ctx context.Context, req BroadcastRequest) (int, error)

	// Direct operations
	GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*NotificationListResponse, error)
	GetUnreadCount(ctx context.Context, userID string) (int, error)
	MarkAsRead(ctx context.Context, userID string, req MarkAsReadRequest) error
	MarkAllAsRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, userID string, notificationID string) error

	// Preferences
	GetPreferences(ctx context.Context, userID string) ([]PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req UpdatePreferenceRequest) error

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}

// EmailSender delivers the mail channel of selected notification types.
type EmailSender interface {
	SendNotificationEmail(ctx context.Context, to, name, subject, message string, actionURL *string) error
}

// Recipient is a user able to receive notifications.
type Recipient struct {
	UserID string
	Email  string
	Name   string
}

// RecipientDirectory resolves notification audiences.
type RecipientDirectory interface {
	GetRecipient(ctx context.Context, userID string) (Recipient, error)
	ListRecipients(ctx context.Context, filter AudienceFilter) ([]Recipient, error)
}

type AudienceFilter struct {
	UserIDs    []string
	Department *string
	Role       *string
}
