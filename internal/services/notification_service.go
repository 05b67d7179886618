package services

import (
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
	"procura_backend/internal/repositories"
	"procura_backend/internal/services/dto"
	"procura_backend/pkg/apperrors"
)

// NotificationPublisher pushes a freshly written notification to any live
// connection the recipient holds. Delivery is best effort; the ledger row is
// the source of truth.
type NotificationPublisher interface {
	Publish(userID string, notification *models.Notification)
}

type NotificationService interface {
	ListForUser(actor models.Actor, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error)
	UnreadCount(actor models.Actor) (int64, error)
	MarkAsRead(actor models.Actor, notificationID string) error
	MarkAllAsRead(actor models.Actor) (int64, error)

	Append(userID string, typ models.NotificationType, title, message string, opts ...NotificationOption) error
	AppendBulk(userIDs []string, typ models.NotificationType, title, message string, opts ...NotificationOption) error
}

type NotificationOption func(*models.Notification)

func WithTender(tenderID string) NotificationOption {
	return func(n *models.Notification) { n.TenderID = &tenderID }
}

func WithBid(bidID string) NotificationOption {
	return func(n *models.Notification) { n.BidID = &bidID }
}

func WithData(payload any) NotificationOption {
	return func(n *models.Notification) {
		raw, err := json.Marshal(payload)
		if err != nil {
			logger.Warn("notification payload not serializable", "error", err)
			return
		}
		n.Data = datatypes.JSON(raw)
	}
}

type notificationService struct {
	notifications repositories.NotificationRepository
	publisher     NotificationPublisher
}

func NewNotificationService(notifications repositories.NotificationRepository, publisher NotificationPublisher) NotificationService {
	return &notificationService{notifications: notifications, publisher: publisher}
}

func (s *notificationService) ListForUser(actor models.Actor, criteria dto.NotificationCriteria) (*dto.NotificationListResponse, error) {
	repoCriteria := repositories.NotificationCriteria{
		UnreadOnly: criteria.UnreadOnly,
		Page:       normalizePage(criteria.Page),
		PageSize:   normalizePageSize(criteria.PageSize),
	}

	items, total, err := s.notifications.FindUserNotifications(actor.UserID, repoCriteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.NotificationListResponse{
		Notifications: items,
		Total:         total,
		Page:          repoCriteria.Page,
		PageSize:      repoCriteria.PageSize,
		TotalPages:    totalPages(total, repoCriteria.PageSize),
	}, nil
}

func (s *notificationService) UnreadCount(actor models.Actor) (int64, error) {
	count, err := s.notifications.UnreadCount(actor.UserID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return count, nil
}

// MarkAsRead flips one notification. A notification that belongs to someone
// else is reported as not found rather than forbidden so ledger ids do not
// leak across accounts.
func (s *notificationService) MarkAsRead(actor models.Actor, notificationID string) error {
	notification, err := s.notifications.FindByID(notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotFound(err, "notifications")
		}
		return apperrors.InternalError(err)
	}
	if notification.UserID != actor.UserID {
		return apperrors.ErrNotFound(gorm.ErrRecordNotFound, "notifications")
	}
	if notification.IsRead {
		return nil
	}
	if err := s.notifications.MarkAsRead(notificationID); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(actor models.Actor) (int64, error) {
	updated, err := s.notifications.MarkAllAsRead(actor.UserID)
	if err != nil {
		return 0, apperrors.InternalError(err)
	}
	return updated, nil
}

func (s *notificationService) Append(userID string, typ models.NotificationType, title, message string, opts ...NotificationOption) error {
	notification := s.build(userID, typ, title, message, opts...)
	if err := s.notifications.Create(notification); err != nil {
		return apperrors.InternalError(fmt.Errorf("append notification: %w", err))
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, notification)
	}
	return nil
}

func (s *notificationService) AppendBulk(userIDs []string, typ models.NotificationType, title, message string, opts ...NotificationOption) error {
	if len(userIDs) == 0 {
		return nil
	}
	notifications := make([]*models.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		notifications = append(notifications, s.build(userID, typ, title, message, opts...))
	}
	if err := s.notifications.CreateBulk(notifications); err != nil {
		return apperrors.InternalError(fmt.Errorf("append notifications: %w", err))
	}
	if s.publisher != nil {
		for _, n := range notifications {
			s.publisher.Publish(n.UserID, n)
		}
	}
	return nil
}

func (s *notificationService) build(userID string, typ models.NotificationType, title, message string, opts ...NotificationOption) *models.Notification {
	notification := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	for _, opt := range opts {
		opt(notification)
	}
	return notification
}
