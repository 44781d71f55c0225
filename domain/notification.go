package domain

import "time"

type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ToEmail   string    `gorm:"column:to_email;not null;index" json:"to_email"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	ActionURL string    `gorm:"column:action_url" json:"action_url"`
	CreatedAt time.Time `json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
