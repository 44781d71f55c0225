package domain

import "time"

const (
	TaskStatusOpen     = "open"
	TaskStatusComplete = "complete"
)

type Task struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatorEmail    string    `gorm:"column:creator_email;not null;index" json:"creator_email"`
	Title           string    `gorm:"column:title;not null" json:"title"`
	Detail          string    `gorm:"column:detail" json:"detail"`
	RequiredWorkers int64     `gorm:"column:required_workers;not null" json:"required_workers"`
	PayableAmount   int64     `gorm:"column:payable_amount;not null" json:"payable_amount"`
	CompletionDate  time.Time `gorm:"column:completion_date" json:"completion_date"`
	SubmissionInfo  string    `gorm:"column:submission_info" json:"submission_info"`
	ImageURL        string    `gorm:"column:image_url" json:"image_url"`
	Status          string    `gorm:"column:status;default:open" json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// EscrowCost is the amount debited from the creator when the task is posted.
func (t Task) EscrowCost() int64 {
	return t.RequiredWorkers * t.PayableAmount
}
