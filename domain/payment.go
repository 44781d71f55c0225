package domain

import "time"

type Payment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ExternalID  string    `gorm:"column:external_id;unique;not null" json:"external_id"`
	Email       string    `gorm:"column:email;not null;index" json:"email"`
	Coins       int64     `gorm:"column:coins;not null" json:"coins"`
	AmountCents int64     `gorm:"column:amount_cents;not null" json:"amount_cents"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// PaymentIntent is what the payment provider hands back when an intent is opened.
type PaymentIntent struct {
	ExternalID   string `json:"external_id"`
	ClientSecret string `json:"client_secret"`
	AmountCents  int64  `json:"amount_cents"`
	Coins        int64  `json:"coins"`
}
