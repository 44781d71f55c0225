package notifications

import (
	"context"

	"microTaskMarket/domain"
)

type NotificationRepository interface {
	FindByEmail(ctx context.Context, email string) ([]domain.Notification, error)
}

type NotificationsService struct {
	notifRepo NotificationRepository
}

func NewNotificationsService(notifRepo NotificationRepository) *NotificationsService {
	return &NotificationsService{
		notifRepo: notifRepo,
	}
}

func (s *NotificationsService) GetForUser(ctx context.Context, email string) ([]domain.Notification, error) {
	return s.notifRepo.FindByEmail(ctx, email)
}
