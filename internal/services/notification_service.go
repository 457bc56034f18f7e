package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Dias221467/EventEase/internal/metrics"
	"github.com/Dias221467/EventEase/internal/models"
	"github.com/Dias221467/EventEase/internal/realtime"
	"github.com/Dias221467/EventEase/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationStore is implemented by the Mongo and in-memory repositories.
type NotificationStore interface {
	Create(ctx context.Context, notif *models.Notification) (*models.Notification, error)
	ListByRecipient(ctx context.Context, recipient primitive.ObjectID, limit int) ([]models.Notification, error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
}

// NotificationService persists notifications and pushes every change to the
// recipient's room. Storage errors are returned; push errors are only logged.
type NotificationService struct {
	repo      NotificationStore
	publisher realtime.Publisher
	now       func() time.Time
}

func NewNotificationService(repo NotificationStore, publisher realtime.Publisher) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateNotification stores a new notification and pushes it to the recipient.
func (s *NotificationService) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	if notif.Recipient.IsZero() {
		return nil, ErrInvalidRecipient
	}
	if !notif.Type.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidType, notif.Type)
	}

	created, err := s.repo.Create(ctx, notif)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	metrics.NotificationsCreated.WithLabelValues(string(created.Type)).Inc()

	s.push(ctx, created.Recipient, realtime.EventNotification, created)
	return created, nil
}

// GetUserNotifications returns the newest notifications of a recipient.
func (s *NotificationService) GetUserNotifications(ctx context.Context, recipient primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.ListByRecipient(ctx, recipient, repository.DefaultListLimit)
}

func (s *NotificationService) GetUnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return s.repo.CountUnread(ctx, recipient)
}

// MarkNotificationAsRead sets isRead on one notification. A missing id returns
// ErrNotFound and nothing is pushed.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	updated, err := s.repo.MarkRead(ctx, id)
	if err != nil {
		return nil, err
	}

	s.push(ctx, updated.Recipient, realtime.EventNotificationUpdate, realtime.NotificationUpdate{
		ID:         updated.ID.Hex(),
		IsRead:     updated.IsRead,
		UpdateTime: s.now().UTC(),
	})
	return updated, nil
}

// MarkAllAsRead marks every unread notification of the recipient. The push is
// sent even when nothing was unread.
func (s *NotificationService) MarkAllAsRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	modified, err := s.repo.MarkAllRead(ctx, recipient)
	if err != nil {
		return 0, err
	}

	s.push(ctx, recipient, realtime.EventAllNotificationsRead, realtime.AllNotificationsRead{
		Timestamp: s.now().UTC(),
	})
	return modified, nil
}

// DeleteNotification removes one notification. A missing id returns
// ErrNotFound and nothing is pushed.
func (s *NotificationService) DeleteNotification(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}

	s.push(ctx, deleted.Recipient, realtime.EventNotificationDeleted, realtime.NotificationDeleted{
		ID:        deleted.ID.Hex(),
		DeletedAt: s.now().UTC(),
	})
	return deleted, nil
}

func (s *NotificationService) push(ctx context.Context, recipient primitive.ObjectID, event string, payload interface{}) {
	if err := s.publisher.Publish(ctx, recipient.Hex(), event, payload); err != nil {
		metrics.BestEffortFailures.WithLabelValues("push").Inc()
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient": recipient.Hex(),
			"event":     event,
		}).Warn("Failed to push notification event")
	}
}
