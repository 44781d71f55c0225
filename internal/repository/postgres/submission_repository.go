package postgres

import (
	"context"
	"errors"
	"time"

	"microTaskMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{
		DB: db,
	}
}

// Create relies on the (task_id, worker_email) unique index for the duplicate
// guard rather than a read-then-write existence check.
func (r *SubmissionRepository) Create(ctx context.Context, submission *domain.Submission) error {
	submission.Status = domain.SubmissionStatusPending

	err := r.DB.WithContext(ctx).Create(submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateSubmission
		}
		return err
	}

	return nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uint) (domain.Submission, error) {
	var submission domain.Submission

	err := r.DB.WithContext(ctx).First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Submission{}, domain.ErrSubmissionNotFound
		}
		return domain.Submission{}, err
	}

	return submission, nil
}

func (r *SubmissionRepository) FindByWorker(ctx context.Context, workerEmail string) ([]domain.Submission, error) {
	var submissions []domain.Submission

	err := r.DB.WithContext(ctx).
		Where("worker_email = ?", workerEmail).
		Order("created_at DESC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

func (r *SubmissionRepository) FindPendingByBuyer(ctx context.Context, buyerEmail string) ([]domain.Submission, error) {
	var submissions []domain.Submission

	err := r.DB.WithContext(ctx).
		Where("buyer_email = ? AND status = ?", buyerEmail, domain.SubmissionStatusPending).
		Order("created_at ASC").
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	return submissions, nil
}

// Approve pays the worker, consumes a task slot and marks the submission
// approved as one transaction. A failure in any leg rolls back all three.
func (r *SubmissionRepository) Approve(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	var submission domain.Submission

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSubmissionNotFound
			}
			return err
		}

		if submission.BuyerEmail != buyerEmail {
			return domain.ErrForbidden
		}

		if submission.Status != domain.SubmissionStatusPending {
			return domain.ErrInvalidState
		}

		if err := creditCoins(tx, submission.WorkerEmail, submission.PayableAmount); err != nil {
			return err
		}

		if err := decrementWorkerSlot(tx, submission.TaskID); err != nil {
			return err
		}

		submission.Status = domain.SubmissionStatusApproved
		submission.UpdatedAt = time.Now()
		return tx.Model(&domain.Submission{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     domain.SubmissionStatusApproved,
				"updated_at": submission.UpdatedAt,
			}).Error
	})
	if err != nil {
		return domain.Submission{}, err
	}

	return submission, nil
}

func (r *SubmissionRepository) Reject(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	var submission domain.Submission

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrSubmissionNotFound
			}
			return err
		}

		if submission.BuyerEmail != buyerEmail {
			return domain.ErrForbidden
		}

		if submission.Status != domain.SubmissionStatusPending {
			return domain.ErrInvalidState
		}

		submission.Status = domain.SubmissionStatusRejected
		submission.UpdatedAt = time.Now()
		return tx.Model(&domain.Submission{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     domain.SubmissionStatusRejected,
				"updated_at": submission.UpdatedAt,
			}).Error
	})
	if err != nil {
		return domain.Submission{}, err
	}

	return submission, nil
}
