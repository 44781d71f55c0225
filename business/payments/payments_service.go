package payments

import (
	"context"
	"fmt"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"

	"github.com/google/uuid"
)

// Coin purchases use the same rate as withdrawals: 20 coins per dollar.
const centsPerCoin = 100 / domain.CoinsPerDollar

// PaymentRepository contract interface. RecordWithCredit must be idempotent on
// external_id so retried provider confirmations cannot double-credit.
type PaymentRepository interface {
	RecordWithCredit(ctx context.Context, payment *domain.Payment) (bool, error)
	FindByEmail(ctx context.Context, email string) ([]domain.Payment, error)
}

// IntentCreator is the payment provider adapter.
type IntentCreator interface {
	CreateIntent(amountCents int64, email, externalID string) (string, error)
}

type PaymentsService struct {
	paymentRepo   PaymentRepository
	intentCreator IntentCreator
}

func NewPaymentsService(paymentRepo PaymentRepository, intentCreator IntentCreator) *PaymentsService {
	return &PaymentsService{
		paymentRepo:   paymentRepo,
		intentCreator: intentCreator,
	}
}

// CreateIntent opens a provider payment intent for a coin purchase. No coins
// are credited until the provider confirms the charge on the webhook.
func (s *PaymentsService) CreateIntent(ctx context.Context, email string, coins int64) (domain.PaymentIntent, error) {
	if coins <= 0 {
		return domain.PaymentIntent{}, fmt.Errorf("%w: coin amount must be positive", domain.ErrValidation)
	}

	if coins%domain.CoinsPerDollar != 0 {
		return domain.PaymentIntent{}, fmt.Errorf("%w: coins must be a multiple of %d", domain.ErrValidation, domain.CoinsPerDollar)
	}

	externalID := uuid.NewString()
	amountCents := coins * centsPerCoin

	clientSecret, err := s.intentCreator.CreateIntent(amountCents, email, externalID)
	if err != nil {
		logger.Error("Failed to create payment intent", err, "email", email)
		return domain.PaymentIntent{}, err
	}

	logger.Info("Payment intent created", "external_id", externalID, "email", email, "coins", coins)

	return domain.PaymentIntent{
		ExternalID:   externalID,
		ClientSecret: clientSecret,
		AmountCents:  amountCents,
		Coins:        coins,
	}, nil
}

// Record is invoked only after the provider reports the charge succeeded. A
// repeated confirmation for the same external id is a no-op.
func (s *PaymentsService) Record(ctx context.Context, externalID, email string, coins, amountCents int64) error {
	if externalID == "" || email == "" {
		return fmt.Errorf("%w: missing external id or email", domain.ErrValidation)
	}

	if coins <= 0 || amountCents <= 0 {
		return fmt.Errorf("%w: coins and amount must be positive", domain.ErrValidation)
	}

	created, err := s.paymentRepo.RecordWithCredit(ctx, &domain.Payment{
		ExternalID:  externalID,
		Email:       email,
		Coins:       coins,
		AmountCents: amountCents,
	})
	if err != nil {
		logger.Error("Failed to record payment", err, "external_id", externalID)
		return err
	}

	if !created {
		logger.Warn("Duplicate payment confirmation ignored", "external_id", externalID)
		return nil
	}

	metrics.CoinsCredited.Add(float64(coins))
	logger.Info("Payment recorded", "external_id", externalID, "email", email, "coins", coins)
	return nil
}

func (s *PaymentsService) GetByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	return s.paymentRepo.FindByEmail(ctx, email)
}
