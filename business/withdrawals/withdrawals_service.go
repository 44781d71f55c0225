package withdrawals

import (
	"context"
	"fmt"
	"math"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// WithdrawalRepository contract interface. Approve re-checks the balance inside
// its transaction, which is what makes concurrent approvals safe.
type WithdrawalRepository interface {
	Create(ctx context.Context, withdrawal *domain.Withdrawal) error
	FindByWorker(ctx context.Context, workerEmail string) ([]domain.Withdrawal, error)
	FindPending(ctx context.Context) ([]domain.Withdrawal, error)
	Approve(ctx context.Context, id uint) (domain.Withdrawal, error)
	Reject(ctx context.Context, id uint, reason string) (domain.Withdrawal, error)
}

// BalanceReader is the pre-check at request time; the balance is not reserved
// until approval, so the repository re-verifies it then.
type BalanceReader interface {
	Balance(ctx context.Context, email string) (int64, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
}

type WithdrawalsService struct {
	withdrawalRepo WithdrawalRepository
	balanceReader  BalanceReader
	notifRepo      NotificationRepository
}

func NewWithdrawalsService(
	withdrawalRepo WithdrawalRepository,
	balanceReader BalanceReader,
	notifRepo NotificationRepository,
) *WithdrawalsService {
	return &WithdrawalsService{
		withdrawalRepo: withdrawalRepo,
		balanceReader:  balanceReader,
		notifRepo:      notifRepo,
	}
}

func (s *WithdrawalsService) Request(ctx context.Context, workerEmail, workerName string, coins int64, paymentSystem, accountNumber string) (domain.Withdrawal, error) {
	if coins < domain.MinWithdrawalCoins {
		return domain.Withdrawal{}, fmt.Errorf("%w: minimum withdrawal is %d coins", domain.ErrValidation, domain.MinWithdrawalCoins)
	}

	if coins%domain.CoinsPerDollar != 0 {
		return domain.Withdrawal{}, fmt.Errorf("%w: withdrawal must be a multiple of %d coins", domain.ErrValidation, domain.CoinsPerDollar)
	}

	if paymentSystem == "" || accountNumber == "" {
		return domain.Withdrawal{}, fmt.Errorf("%w: payment system and account number are required", domain.ErrValidation)
	}

	balance, err := s.balanceReader.Balance(ctx, workerEmail)
	if err != nil {
		return domain.Withdrawal{}, err
	}

	if balance < coins {
		return domain.Withdrawal{}, domain.ErrInsufficientBalance
	}

	withdrawal := domain.Withdrawal{
		WorkerEmail:   workerEmail,
		WorkerName:    workerName,
		Coins:         coins,
		AmountUSD:     math.Round(float64(coins)/float64(domain.CoinsPerDollar)*100) / 100,
		PaymentSystem: paymentSystem,
		AccountNumber: accountNumber,
	}

	if err := s.withdrawalRepo.Create(ctx, &withdrawal); err != nil {
		logger.Error("Failed to create withdrawal request", err, "worker", workerEmail)
		return domain.Withdrawal{}, err
	}

	logger.Info("Withdrawal requested", "withdrawal_id", withdrawal.ID, "worker", workerEmail, "coins", coins)
	return withdrawal, nil
}

func (s *WithdrawalsService) GetByWorker(ctx context.Context, workerEmail string) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.FindByWorker(ctx, workerEmail)
}

func (s *WithdrawalsService) GetPending(ctx context.Context) ([]domain.Withdrawal, error) {
	return s.withdrawalRepo.FindPending(ctx)
}

// Approve debits the worker and marks the withdrawal approved atomically. If
// the coins were spent elsewhere since the request, it fails with
// ErrInsufficientBalance and the withdrawal stays pending.
func (s *WithdrawalsService) Approve(ctx context.Context, id uint) (domain.Withdrawal, error) {
	timer := prometheus.NewTimer(metrics.LedgerOperationLatency.WithLabelValues("approve_withdrawal"))
	defer timer.ObserveDuration()

	withdrawal, err := s.withdrawalRepo.Approve(ctx, id)
	if err != nil {
		logger.Error("Failed to approve withdrawal", err, "withdrawal_id", id)
		return domain.Withdrawal{}, err
	}

	metrics.WithdrawalsApproved.Inc()
	metrics.CoinsDebited.Add(float64(withdrawal.Coins))
	logger.Info("Withdrawal approved", "withdrawal_id", id, "worker", withdrawal.WorkerEmail, "coins", withdrawal.Coins)

	s.notify(ctx, withdrawal.WorkerEmail, fmt.Sprintf(
		"Your withdrawal of %d coins ($%.2f via %s) was approved", withdrawal.Coins, withdrawal.AmountUSD, withdrawal.PaymentSystem,
	))

	return withdrawal, nil
}

func (s *WithdrawalsService) Reject(ctx context.Context, id uint, reason string) (domain.Withdrawal, error) {
	withdrawal, err := s.withdrawalRepo.Reject(ctx, id, reason)
	if err != nil {
		logger.Error("Failed to reject withdrawal", err, "withdrawal_id", id)
		return domain.Withdrawal{}, err
	}

	logger.Info("Withdrawal rejected", "withdrawal_id", id, "worker", withdrawal.WorkerEmail)

	message := fmt.Sprintf("Your withdrawal of %d coins was rejected", withdrawal.Coins)
	if reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	s.notify(ctx, withdrawal.WorkerEmail, message)

	return withdrawal, nil
}

func (s *WithdrawalsService) notify(ctx context.Context, toEmail, message string) {
	err := s.notifRepo.Create(ctx, &domain.Notification{
		ToEmail: toEmail,
		Message: message,
	})
	if err != nil {
		logger.Warn("Failed to write notification", err, "to", toEmail)
	}
}
