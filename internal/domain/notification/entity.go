package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeLeaveRequest  NotificationType = "leave_request"
	TypeLeaveApproved NotificationType = "leave_approved"
	TypeLeaveRejected NotificationType = "leave_rejected"
	TypePayslip       NotificationType = "payslip"
	TypePayment       NotificationType = "payment"
	TypePaymentFailed NotificationType = "payment_failed"
	TypeAnnouncement  NotificationType = "announcement"
	TypeBirthday      NotificationType = "birthday"
	TypeTask          NotificationType = "task"
	TypeReminder      NotificationType = "reminder"
	TypeSystem        NotificationType = "system"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeLeaveRequest,
		TypeLeaveApproved,
		TypeLeaveRejected,
		TypePayslip,
		TypePayment,
		TypePaymentFailed,
		TypeAnnouncement,
		TypeBirthday,
		TypeTask,
		TypeReminder,
		TypeSystem,
	}
}

func (t NotificationType) IsValid() bool {
	for _, v := range AllNotificationTypes() {
		if t == v {
			return true
		}
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) IsValid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// RelatedTo points at the record a notification is about.
type RelatedTo struct {
	Model string `json:"model"`
	ID    string `json:"id"`
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Priority    Priority
	RelatedTo   *RelatedTo
	ActionURL   *string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents user preference for a notification type
type NotificationPreference struct {
	ID               string
	UserID           string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
