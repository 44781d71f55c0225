package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/metrics"
)

func init() {
	metrics.Init()
}

// fakeLedgerRepo mirrors the guarded-update semantics of the SQL repo: the
// balance check and the mutation happen under one lock.
type fakeLedgerRepo struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newFakeLedgerRepo(balances map[string]int64) *fakeLedgerRepo {
	return &fakeLedgerRepo{balances: balances}
}

func (f *fakeLedgerRepo) Credit(ctx context.Context, email string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.balances[email]; !ok {
		return domain.ErrUserNotFound
	}

	f.balances[email] += amount
	return nil
}

func (f *fakeLedgerRepo) Debit(ctx context.Context, email string, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[email]
	if !ok {
		return domain.ErrUserNotFound
	}

	if balance < amount {
		return domain.ErrInsufficientBalance
	}

	f.balances[email] = balance - amount
	return nil
}

func (f *fakeLedgerRepo) Balance(ctx context.Context, email string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[email]
	if !ok {
		return 0, domain.ErrUserNotFound
	}

	return balance, nil
}

func TestCreditAndDebit(t *testing.T) {
	repo := newFakeLedgerRepo(map[string]int64{"worker@example.com": 100})
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if err := svc.Credit(ctx, "worker@example.com", 50); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	if err := svc.Debit(ctx, "worker@example.com", 120); err != nil {
		t.Fatalf("debit failed: %v", err)
	}

	balance, err := svc.Balance(ctx, "worker@example.com")
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if balance != 30 {
		t.Errorf("balance = %d, want 30", balance)
	}
}

func TestDebitInsufficientBalance(t *testing.T) {
	repo := newFakeLedgerRepo(map[string]int64{"worker@example.com": 100})
	svc := NewLedgerService(repo)

	err := svc.Debit(context.Background(), "worker@example.com", 101)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	balance, _ := svc.Balance(context.Background(), "worker@example.com")
	if balance != 100 {
		t.Errorf("balance changed on failed debit: %d", balance)
	}
}

func TestUnknownUser(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerRepo(map[string]int64{}))

	if err := svc.Credit(context.Background(), "ghost@example.com", 10); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("credit err = %v, want ErrUserNotFound", err)
	}

	if _, err := svc.Balance(context.Background(), "ghost@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("balance err = %v, want ErrUserNotFound", err)
	}
}

func TestNonPositiveAmounts(t *testing.T) {
	svc := NewLedgerService(newFakeLedgerRepo(map[string]int64{"u@example.com": 10}))

	for _, amount := range []int64{0, -5} {
		if err := svc.Credit(context.Background(), "u@example.com", amount); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("credit(%d) err = %v, want ErrValidation", amount, err)
		}
		if err := svc.Debit(context.Background(), "u@example.com", amount); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("debit(%d) err = %v, want ErrValidation", amount, err)
		}
	}
}

// One hundred concurrent debits of 10 against a balance of 500: exactly fifty
// may succeed and the balance must land on zero, never below.
func TestConcurrentDebitsNeverOverdraw(t *testing.T) {
	repo := newFakeLedgerRepo(map[string]int64{"worker@example.com": 500})
	svc := NewLedgerService(repo)

	const attempts = 100

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Debit(context.Background(), "worker@example.com", 10)
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrInsufficientBalance) {
			t.Errorf("unexpected error: %v", err)
		}
	}

	if succeeded != 50 {
		t.Errorf("succeeded = %d, want 50", succeeded)
	}

	balance, _ := svc.Balance(context.Background(), "worker@example.com")
	if balance != 0 {
		t.Errorf("final balance = %d, want 0", balance)
	}
}
