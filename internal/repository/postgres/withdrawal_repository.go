package postgres

import (
	"context"
	"errors"
	"time"

	"microTaskMarket/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WithdrawalRepository struct {
	DB *gorm.DB
}

func NewWithdrawalRepository(db *gorm.DB) *WithdrawalRepository {
	return &WithdrawalRepository{
		DB: db,
	}
}

func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *domain.Withdrawal) error {
	withdrawal.Status = domain.WithdrawalStatusPending
	return r.DB.WithContext(ctx).Create(withdrawal).Error
}

func (r *WithdrawalRepository) FindByID(ctx context.Context, id uint) (domain.Withdrawal, error) {
	var withdrawal domain.Withdrawal

	err := r.DB.WithContext(ctx).First(&withdrawal, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Withdrawal{}, domain.ErrWithdrawalNotFound
		}
		return domain.Withdrawal{}, err
	}

	return withdrawal, nil
}

func (r *WithdrawalRepository) FindByWorker(ctx context.Context, workerEmail string) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal

	err := r.DB.WithContext(ctx).
		Where("worker_email = ?", workerEmail).
		Order("created_at DESC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}

	return withdrawals, nil
}

func (r *WithdrawalRepository) FindPending(ctx context.Context) ([]domain.Withdrawal, error) {
	var withdrawals []domain.Withdrawal

	err := r.DB.WithContext(ctx).
		Where("status = ?", domain.WithdrawalStatusPending).
		Order("created_at ASC").
		Find(&withdrawals).Error
	if err != nil {
		return nil, err
	}

	return withdrawals, nil
}

func (r *WithdrawalRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64

	err := r.DB.WithContext(ctx).Model(&domain.Withdrawal{}).
		Where("status = ?", domain.WithdrawalStatusPending).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Approve re-verifies the balance at approval time: the debit and the status
// flip commit together, so the worker can never be debited for a withdrawal
// that stays pending, nor approved without the coins to cover it.
func (r *WithdrawalRepository) Approve(ctx context.Context, id uint) (domain.Withdrawal, error) {
	var withdrawal domain.Withdrawal

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrWithdrawalNotFound
			}
			return err
		}

		if withdrawal.Status != domain.WithdrawalStatusPending {
			return domain.ErrInvalidState
		}

		if err := debitCoins(tx, withdrawal.WorkerEmail, withdrawal.Coins); err != nil {
			return err
		}

		withdrawal.Status = domain.WithdrawalStatusApproved
		withdrawal.UpdatedAt = time.Now()
		return tx.Model(&domain.Withdrawal{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":     domain.WithdrawalStatusApproved,
				"updated_at": withdrawal.UpdatedAt,
			}).Error
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	return withdrawal, nil
}

func (r *WithdrawalRepository) Reject(ctx context.Context, id uint, reason string) (domain.Withdrawal, error) {
	var withdrawal domain.Withdrawal

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&withdrawal, id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrWithdrawalNotFound
			}
			return err
		}

		if withdrawal.Status != domain.WithdrawalStatusPending {
			return domain.ErrInvalidState
		}

		withdrawal.Status = domain.WithdrawalStatusRejected
		withdrawal.RejectReason = reason
		withdrawal.UpdatedAt = time.Now()
		return tx.Model(&domain.Withdrawal{}).Where("id = ?", id).
			Updates(map[string]interface{}{
				"status":        domain.WithdrawalStatusRejected,
				"reject_reason": reason,
				"updated_at":    withdrawal.UpdatedAt,
			}).Error
	})
	if err != nil {
		return domain.Withdrawal{}, err
	}

	return withdrawal, nil
}
