package notification

import (
	"time"

	"github.com/timepay/timepay-backend/internal/pkg/validator"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Priority    Priority
	RelatedTo   *RelatedTo
	ActionURL   *string
	Data        map[string]interface{}
}

// SendRequest targets explicit users.
type SendRequest struct {
	SenderID     *string          `json:"-"`
	RecipientIDs []string         `json:"recipient_ids"`
	Type         NotificationType `json:"type"`
	Title        string           `json:"title"`
	Message      string           `json:"message"`
	Priority     Priority         `json:"priority,omitempty"`
	ActionURL    *string          `json:"action_url,omitempty"`
}

func (r *SendRequest) Validate() error {
	var errs validator.ValidationErrors
	if len(r.RecipientIDs) == 0 {
		errs = append(errs, validator.ValidationError{Field: "recipient_ids", Message: "at least one recipient is required"})
	}
	errs = append(errs, validateContent(r.Type, r.Title, r.Message, &r.Priority)...)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BroadcastRequest targets every active user, optionally narrowed by
// department or role.
type BroadcastRequest struct {
	SenderID   *string          `json:"-"`
	Type       NotificationType `json:"type"`
	Title      string           `json:"title"`
	Message    string           `json:"message"`
	Priority   Priority         `json:"priority,omitempty"`
	Department *string          `json:"department,omitempty"`
	Role       *string          `json:"role,omitempty"`
}

func (r *BroadcastRequest) Validate() error {
	if r.Type == "" {
		r.Type = TypeAnnouncement
	}
	errs := validateContent(r.Type, r.Title, r.Message, &r.Priority)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateContent(t NotificationType, title, message string, priority *Priority) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if !t.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type is invalid"})
	}
	if validator.IsEmpty(title) {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "title is required"})
	}
	if validator.IsEmpty(message) {
		errs = append(errs, validator.ValidationError{Field: "message", Message: "message is required"})
	}
	if *priority == "" {
		*priority = PriorityMedium
	}
	if !priority.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "priority", Message: "priority must be low, medium or high"})
	}
	return errs
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

// UpdatePreferenceRequest represents a request to update notification preference
type UpdatePreferenceRequest struct {
	NotificationType NotificationType `json:"notification_type"`
	EmailEnabled     bool             `json:"email_enabled"`
	PushEnabled      bool             `json:"push_enabled"`
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Priority  Priority               `json:"priority"`
	RelatedTo *RelatedTo             `json:"related_to,omitempty"`
	ActionURL *string                `json:"action_url,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func ToResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Priority:  n.Priority,
		RelatedTo: n.RelatedTo,
		ActionURL: n.ActionURL,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// PreferenceResponse represents a notification preference in API responses
type PreferenceResponse struct {
	NotificationType NotificationType `json:"notification_type"`
	EmailEnabled     bool             `json:"email_enabled"`
	PushEnabled      bool             `json:"push_enabled"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// RecipientCountResponse is returned by send and broadcast.
type RecipientCountResponse struct {
	Recipients int `json:"recipients"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
