package domain

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleWorker = "worker"
	RoleBuyer  = "buyer"
	RoleAdmin  = "admin"
)

// Starting balances granted at registration.
const (
	WorkerStartingCoins int64 = 10
	BuyerStartingCoins  int64 = 50
)

type User struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	FullName   string `gorm:"column:full_name;not null" json:"full_name"`
	Email      string `gorm:"column:email;unique;not null" json:"email"`
	PhotoURL   string `gorm:"column:photo_url" json:"photo_url"`
	IsVerified bool   `gorm:"column:is_verified;default:false" json:"is_verified"`
	Password   string `gorm:"column:password;not null" json:"password,omitempty"`
	Role       string `gorm:"column:role;default:worker" json:"role"`
	Coins      int64  `gorm:"column:coins;not null;default:0" json:"coins"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastLogin  time.Time      `gorm:"column:last_login" json:"last_login"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func ValidRole(role string) bool {
	switch role {
	case RoleWorker, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

// StartingCoins returns the balance a freshly registered account begins with.
func StartingCoins(role string) int64 {
	if role == RoleBuyer {
		return BuyerStartingCoins
	}
	return WorkerStartingCoins
}
