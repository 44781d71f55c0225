package ledger

import (
	"context"
	"fmt"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"
)

// LedgerRepository contract interface. The postgres implementation performs
// each mutation as a single guarded UPDATE, so concurrent calls against the
// same user serialize at the store.
type LedgerRepository interface {
	Credit(ctx context.Context, email string, amount int64) error
	Debit(ctx context.Context, email string, amount int64) error
	Balance(ctx context.Context, email string) (int64, error)
}

type LedgerService struct {
	ledgerRepo LedgerRepository
}

func NewLedgerService(ledgerRepo LedgerRepository) *LedgerService {
	return &LedgerService{
		ledgerRepo: ledgerRepo,
	}
}

func (s *LedgerService) Credit(ctx context.Context, email string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", domain.ErrValidation)
	}

	if err := s.ledgerRepo.Credit(ctx, email, amount); err != nil {
		logger.Error("Failed to credit coins", err, "email", email)
		return err
	}

	metrics.CoinsCredited.Add(float64(amount))
	return nil
}

func (s *LedgerService) Debit(ctx context.Context, email string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: debit amount must be positive", domain.ErrValidation)
	}

	if err := s.ledgerRepo.Debit(ctx, email, amount); err != nil {
		logger.Error("Failed to debit coins", err, "email", email)
		return err
	}

	metrics.CoinsDebited.Add(float64(amount))
	return nil
}

func (s *LedgerService) Balance(ctx context.Context, email string) (int64, error) {
	balance, err := s.ledgerRepo.Balance(ctx, email)
	if err != nil {
		logger.Error("Failed to read balance", err, "email", email)
		return 0, err
	}

	return balance, nil
}
