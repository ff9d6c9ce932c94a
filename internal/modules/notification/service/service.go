package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"anoa.com/campusforum/internal/entity"
	notifRepo "anoa.com/campusforum/internal/modules/notification/repository"
	"anoa.com/campusforum/pkg/apperror"
	"anoa.com/campusforum/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Channel is the redis pub/sub channel carrying a user's notifications.
func Channel(userID uuid.UUID) string {
	return fmt.Sprintf("user_notifications:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	// Notify persists and publishes in the background; failures are only logged.
	Notify(ctx context.Context, notification *entity.Notification)
	GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	timeout     time.Duration
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, timeout time.Duration) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		timeout:     timeout,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			if err := s.redisClient.Publish(ctx, Channel(notification.UserID), payload).Err(); err != nil {
				logger.FromContext(ctx).Warn("notification publish failed", "user_id", notification.UserID, "error", err)
			}
		}
	}

	return nil
}

func (s *notificationService) Notify(ctx context.Context, notification *entity.Notification) {
	log := logger.FromContext(ctx)
	bg, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	go func() {
		defer cancel()
		if err := s.CreateNotification(bg, notification); err != nil {
			log.Warn("notification not stored", "user_id", notification.UserID, "type", notification.Type, "error", err)
		}
	}()
}

func (s *notificationService) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(ctx, userID, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	found, err := s.repo.MarkAsRead(ctx, userID, id)
	if err != nil {
		return err
	}
	if !found {
		return apperror.NotFound("notification not found")
	}
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *notificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}
