package postgres

import (
	"context"
	"errors"

	"microTaskMarket/domain"

	"gorm.io/gorm"
)

type PaymentRepository struct {
	DB *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{
		DB: db,
	}
}

// RecordWithCredit inserts the payment and credits the coins in one
// transaction. The unique external_id index makes provider retries no-ops:
// a duplicate confirmation returns created=false without a second credit.
func (r *PaymentRepository) RecordWithCredit(ctx context.Context, payment *domain.Payment) (bool, error) {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payment).Error; err != nil {
			return err
		}

		return creditCoins(tx, payment.Email, payment.Coins)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (r *PaymentRepository) FindByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	var payments []domain.Payment

	err := r.DB.WithContext(ctx).
		Where("email = ?", email).
		Order("created_at DESC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *PaymentRepository) SumAmountCents(ctx context.Context) (int64, error) {
	var total int64

	err := r.DB.WithContext(ctx).Model(&domain.Payment{}).
		Select("coalesce(sum(amount_cents), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, err
	}

	return total, nil
}
