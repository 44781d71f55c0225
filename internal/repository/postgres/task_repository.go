package postgres

import (
	"context"
	"errors"

	"microTaskMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TaskRepository struct {
	DB *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{
		DB: db,
	}
}

// CreateWithEscrow debits the creator and inserts the task in one transaction.
// A short balance leaves no task behind.
func (r *TaskRepository) CreateWithEscrow(ctx context.Context, task *domain.Task) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := debitCoins(tx, task.CreatorEmail, task.EscrowCost()); err != nil {
			return err
		}

		task.Status = domain.TaskStatusOpen
		return tx.Create(task).Error
	})
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (domain.Task, error) {
	var task domain.Task

	err := r.DB.WithContext(ctx).First(&task, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Task{}, domain.ErrTaskNotFound
		}
		return domain.Task{}, err
	}

	return task, nil
}

func (r *TaskRepository) FindOpen(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task

	err := r.DB.WithContext(ctx).
		Where("status = ? AND required_workers > 0", domain.TaskStatusOpen).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *TaskRepository) FindByCreator(ctx context.Context, creatorEmail string) ([]domain.Task, error) {
	var tasks []domain.Task

	err := r.DB.WithContext(ctx).
		Where("creator_email = ?", creatorEmail).
		Order("created_at DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	return tasks, nil
}

// UpdateDetails edits the descriptive fields only. Payout terms and worker count
// are frozen at creation so the escrow arithmetic stays consistent.
func (r *TaskRepository) UpdateDetails(ctx context.Context, id uint, title, detail, submissionInfo string) error {
	result := r.DB.WithContext(ctx).Model(&domain.Task{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":           title,
			"detail":          detail,
			"submission_info": submissionInfo,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}

	return nil
}

// DeleteWithRefund removes the task and credits the unspent escrow
// (required_workers * payable_amount) back to the creator, atomically. Shares
// already paid out to approved submissions are not part of the refund.
func (r *TaskRepository) DeleteWithRefund(ctx context.Context, id uint, requesterEmail string) (domain.Task, error) {
	var task domain.Task

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&task, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrTaskNotFound
			}
			return err
		}

		if task.CreatorEmail != requesterEmail {
			return domain.ErrForbidden
		}

		if err := tx.Delete(&domain.Task{}, id).Error; err != nil {
			return err
		}

		if refund := task.EscrowCost(); refund > 0 {
			return creditCoins(tx, task.CreatorEmail, refund)
		}

		return nil
	})
	if err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

// decrementWorkerSlot consumes one slot inside an ongoing transaction and flips
// the task to complete when the last slot is spent. Zero rows affected means the
// task is gone or already complete.
func decrementWorkerSlot(tx *gorm.DB, taskID uint) error {
	result := tx.Model(&domain.Task{}).
		Where("id = ? AND required_workers > 0", taskID).
		Update("required_workers", gorm.Expr("required_workers - 1"))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := tx.Model(&domain.Task{}).Where("id = ?", taskID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrTaskNotFound
		}
		return domain.ErrInvalidState
	}

	return tx.Model(&domain.Task{}).
		Where("id = ? AND required_workers = 0", taskID).
		Update("status", domain.TaskStatusComplete).Error
}
