package postgres

import (
	"context"

	"microTaskMarket/domain"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{
		DB: db,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.DB.WithContext(ctx).Create(notification).Error
}

func (r *NotificationRepository) FindByEmail(ctx context.Context, email string) ([]domain.Notification, error) {
	var notifications []domain.Notification

	err := r.DB.WithContext(ctx).
		Where("to_email = ?", email).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	return notifications, nil
}
