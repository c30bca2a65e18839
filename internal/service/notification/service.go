package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/timepay/timepay-backend/internal/domain/notification"
	"github.com/timepay/timepay-backend/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

// emailTypes are mirrored to the recipient's inbox when email is enabled.
var emailTypes = map[notification.NotificationType]bool{
	notification.TypePayslip:       true,
	notification.TypePaymentFailed: true,
}

type service struct {
	repo      notification.Repository
	directory notification.RecipientDirectory
	mailer    notification.EmailSender
	hub       *sse.Hub
	config    Config

	queue    chan notification.CreateNotificationRequest
	wg       sync.WaitGroup
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewNotificationService creates a new notification service with background
// workers. mailer may be nil to disable the email channel.
func NewNotificationService(
	repo notification.Repository,
	directory notification.RecipientDirectory,
	mailer notification.EmailSender,
	hub *sse.Hub,
	cfg Config,
) notification.Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:      repo,
		directory: directory,
		mailer:    mailer,
		hub:       hub,
		config:    cfg,
		queue:     make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh:    make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

func newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	priority := req.Priority
	if priority == "" {
		priority = notification.PriorityMedium
	}
	return &notification.Notification{
		ID:          uuid.Must(uuid.NewV7()).String(),
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Priority:    priority,
		RelatedTo:   req.RelatedTo,
		ActionURL:   req.ActionURL,
		Data:        req.Data,
		CreatedAt:   time.Now(),
	}
}

// worker is the background worker that processes notification queue
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = newNotification(req)
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("notification batch insert failed", "worker", id, "count", len(notifications), "error", err)
		} else {
			slog.Debug("notifications inserted", "worker", id, "count", len(notifications))
			for _, n := range notifications {
				s.deliver(ctx, n)
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			for {
				select {
				case req := <-s.queue:
					batch = append(batch, req)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver pushes a stored notification to live subscribers and, for
// selected types, to email.
func (s *service) deliver(ctx context.Context, n *notification.Notification) {
	s.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Event:  "notification",
		Data:   notification.ToResponse(n),
	})

	if s.mailer == nil || !emailTypes[n.Type] {
		return
	}
	enabled, err := s.repo.IsEmailEnabled(ctx, n.RecipientID, n.Type)
	if err != nil {
		slog.Error("failed to read email preference", "user_id", n.RecipientID, "error", err)
		return
	}
	if !enabled {
		return
	}
	r, err := s.directory.GetRecipient(ctx, n.RecipientID)
	if err != nil {
		slog.Error("failed to resolve notification recipient", "user_id", n.RecipientID, "error", err)
		return
	}
	if err := s.mailer.SendNotificationEmail(ctx, r.Email, r.Name, n.Title, n.Message, n.ActionURL); err != nil {
		slog.Error("failed to send notification email", "user_id", n.RecipientID, "type", n.Type, "error", err)
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	enabled, err := s.repo.IsNotificationEnabled(ctx, req.RecipientID, req.Type)
	if err != nil {
		return err
	}
	if !enabled {
		return nil
	}

	select {
	case s.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return s.directInsert(ctx, req)
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	var errs []error
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Error("failed to queue notification", "user_id", req.RecipientID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// directInsert inserts a notification directly when queue is full
func (s *service) directInsert(ctx context.Context, req notification.CreateNotificationRequest) error {
	n := newNotification(req)
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.deliver(ctx, n)
	return nil
}

func (s *service) fanOut(ctx context.Context, recipients []notification.Recipient, senderID *string, t notification.NotificationType, title, message string, priority notification.Priority, actionURL *string) (int, error) {
	if len(recipients) == 0 {
		return 0, notification.ErrNoRecipients
	}
	reqs := make([]notification.CreateNotificationRequest, 0, len(recipients))
	for _, r := range recipients {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID: r.UserID,
			SenderID:    senderID,
			Type:        t,
			Title:       title,
			Message:     message,
			Priority:    priority,
			ActionURL:   actionURL,
		})
	}
	if err := s.QueueBulkNotification(ctx, reqs); err != nil {
		return 0, err
	}
	return len(reqs), nil
}

// Send notifies the listed users. Unknown or inactive users are skipped.
func (s *service) Send(ctx context.Context, req notification.SendRequest) (int, error) {
	recipients, err := s.directory.ListRecipients(ctx, notification.AudienceFilter{UserIDs: req.RecipientIDs})
	if err != nil {
		return 0, err
	}
	return s.fanOut(ctx, recipients, req.SenderID, req.Type, req.Title, req.Message, req.Priority, req.ActionURL)
}

// Broadcast notifies every active user matching the optional filters.
func (s *service) Broadcast(ctx context.Context, req notification.BroadcastRequest) (int, error) {
	recipients, err := s.directory.ListRecipients(ctx, notification.AudienceFilter{Department: req.Department, Role: req.Role})
	if err != nil {
		return 0, err
	}
	n, err := s.fanOut(ctx, recipients, req.SenderID, req.Type, req.Title, req.Message, req.Priority, nil)
	if err == nil {
		slog.Info("broadcast queued", "recipients", n, "type", req.Type)
	}
	return n, err
}

// GetNotifications retrieves paginated notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.ToResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

// GetUnreadCount returns the count of unread notifications
func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

// MarkAsRead marks specified notifications as read
func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	if len(req.NotificationIDs) == 0 {
		return nil
	}
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

// MarkAllAsRead marks all notifications as read for a user
func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

// Delete removes a notification
func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences returns a preference for every type, defaulting to enabled.
func (s *service) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefMap := make(map[notification.NotificationType]*notification.NotificationPreference)
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		responses[i] = notification.PreferenceResponse{NotificationType: t, EmailEnabled: true, PushEnabled: true}
		if p, ok := prefMap[t]; ok {
			responses[i].EmailEnabled = p.EmailEnabled
			responses[i].PushEnabled = p.PushEnabled
		}
	}

	return responses, nil
}

// UpdatePreference updates a notification preference
func (s *service) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if !req.NotificationType.IsValid() {
		return notification.ErrInvalidNotificationType
	}
	pref := &notification.NotificationPreference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        time.Now(),
	}

	return s.repo.UpsertPreference(ctx, pref)
}

// Subscribe creates an SSE subscription for a user
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				if resp, ok := event.Data.(notification.NotificationResponse); ok {
					select {
					case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
					case <-ctx.Done():
						return
					}
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop drains the queue and waits for the workers to exit.
func (s *service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
		slog.Info("notification service stopped")
	})
}
