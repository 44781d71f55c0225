package domain

import "time"

const (
	WithdrawalStatusPending  = "pending"
	WithdrawalStatusApproved = "approved"
	WithdrawalStatusRejected = "rejected"
)

// Coin-to-USD conversion: 20 coins = 1 dollar. Withdrawals must be requested in
// whole-dollar multiples and never below the minimum.
const (
	CoinsPerDollar     int64 = 20
	MinWithdrawalCoins int64 = 200
)

type Withdrawal struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WorkerEmail   string    `gorm:"column:worker_email;not null;index" json:"worker_email"`
	WorkerName    string    `gorm:"column:worker_name" json:"worker_name"`
	Coins         int64     `gorm:"column:coins;not null" json:"coins"`
	AmountUSD     float64   `gorm:"column:amount_usd;not null" json:"amount_usd"`
	PaymentSystem string    `gorm:"column:payment_system;not null" json:"payment_system"`
	AccountNumber string    `gorm:"column:account_number;not null" json:"account_number"`
	Status        string    `gorm:"column:status;default:pending" json:"status"`
	RejectReason  string    `gorm:"column:reject_reason" json:"reject_reason,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Withdrawal) TableName() string {
	return "withdrawals"
}
