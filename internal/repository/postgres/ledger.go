package postgres

import (
	"context"
	"errors"

	"microTaskMarket/domain"

	"gorm.io/gorm"
)

// creditCoins and debitCoins are the only two statements in the module that touch
// users.coins. Every workflow (escrow, payout, refund, withdrawal, top-up) goes
// through them, either directly or inside its own transaction.

func creditCoins(db *gorm.DB, email string, amount int64) error {
	result := db.Model(&domain.User{}).
		Where("email = ?", email).
		Update("coins", gorm.Expr("coins + ?", amount))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// debitCoins is a single guarded UPDATE: the balance precondition lives in the
// WHERE clause, so two concurrent debits can never both read a stale balance.
func debitCoins(db *gorm.DB, email string, amount int64) error {
	result := db.Model(&domain.User{}).
		Where("email = ? AND coins >= ?", email, amount).
		Update("coins", gorm.Expr("coins - ?", amount))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Zero rows means either no such user or a short balance.
		var count int64
		if err := db.Model(&domain.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrUserNotFound
		}
		return domain.ErrInsufficientBalance
	}

	return nil
}

type LedgerRepository struct {
	DB *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{
		DB: db,
	}
}

func (r *LedgerRepository) Credit(ctx context.Context, email string, amount int64) error {
	return creditCoins(r.DB.WithContext(ctx), email, amount)
}

func (r *LedgerRepository) Debit(ctx context.Context, email string, amount int64) error {
	return debitCoins(r.DB.WithContext(ctx), email, amount)
}

func (r *LedgerRepository) Balance(ctx context.Context, email string) (int64, error) {
	var user domain.User

	err := r.DB.WithContext(ctx).Select("coins").Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, domain.ErrUserNotFound
		}
		return 0, err
	}

	return user.Coins, nil
}
