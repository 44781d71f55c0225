package domain

import "time"

const (
	SubmissionStatusPending  = "pending"
	SubmissionStatusApproved = "approved"
	SubmissionStatusRejected = "rejected"
)

// Submission snapshots the task's title, payout and buyer at creation time so a
// later task edit cannot retroactively change the terms of pending work.
type Submission struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	TaskID        uint      `gorm:"column:task_id;not null;uniqueIndex:idx_task_worker" json:"task_id"`
	TaskTitle     string    `gorm:"column:task_title" json:"task_title"`
	PayableAmount int64     `gorm:"column:payable_amount;not null" json:"payable_amount"`
	WorkerEmail   string    `gorm:"column:worker_email;not null;uniqueIndex:idx_task_worker" json:"worker_email"`
	WorkerName    string    `gorm:"column:worker_name" json:"worker_name"`
	BuyerEmail    string    `gorm:"column:buyer_email;not null;index" json:"buyer_email"`
	BuyerName     string    `gorm:"column:buyer_name" json:"buyer_name"`
	Details       string    `gorm:"column:details" json:"details"`
	Status        string    `gorm:"column:status;default:pending" json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
