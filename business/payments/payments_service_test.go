package payments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"microTaskMarket/domain"
)

// fakePaymentStore enforces the external_id idempotency guard and credits the
// balance in the same critical section, like the postgres transaction.
type fakePaymentStore struct {
	mu       sync.Mutex
	balances map[string]int64
	payments map[string]domain.Payment
}

func newFakePaymentStore(balances map[string]int64) *fakePaymentStore {
	return &fakePaymentStore{
		balances: balances,
		payments: make(map[string]domain.Payment),
	}
}

func (f *fakePaymentStore) RecordWithCredit(ctx context.Context, payment *domain.Payment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exists := f.payments[payment.ExternalID]; exists {
		return false, nil
	}

	if _, ok := f.balances[payment.Email]; !ok {
		return false, domain.ErrUserNotFound
	}

	f.payments[payment.ExternalID] = *payment
	f.balances[payment.Email] += payment.Coins
	return true, nil
}

func (f *fakePaymentStore) FindByEmail(ctx context.Context, email string) ([]domain.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Payment
	for _, p := range f.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeIntentCreator struct {
	lastAmountCents int64
	lastExternalID  string
	err             error
}

func (f *fakeIntentCreator) CreateIntent(amountCents int64, email, externalID string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.lastAmountCents = amountCents
	f.lastExternalID = externalID
	return "secret_" + externalID, nil
}

func TestCreateIntentConvertsCoinsToCents(t *testing.T) {
	creator := &fakeIntentCreator{}
	svc := NewPaymentsService(newFakePaymentStore(nil), creator)

	intent, err := svc.CreateIntent(context.Background(), "buyer@example.com", 100)
	if err != nil {
		t.Fatalf("create intent failed: %v", err)
	}

	// 100 coins at 20 coins per dollar is $5.00
	if intent.AmountCents != 500 {
		t.Errorf("amount = %d cents, want 500", intent.AmountCents)
	}
	if creator.lastAmountCents != 500 {
		t.Errorf("provider charged %d cents, want 500", creator.lastAmountCents)
	}
	if intent.ExternalID == "" || intent.ExternalID != creator.lastExternalID {
		t.Error("external id not propagated to the provider")
	}
	if intent.ClientSecret != "secret_"+intent.ExternalID {
		t.Errorf("client secret = %q", intent.ClientSecret)
	}
}

func TestCreateIntentValidation(t *testing.T) {
	svc := NewPaymentsService(newFakePaymentStore(nil), &fakeIntentCreator{})

	for _, coins := range []int64{0, -20, 130} {
		if _, err := svc.CreateIntent(context.Background(), "b@example.com", coins); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("coins=%d: err = %v, want ErrValidation", coins, err)
		}
	}
}

func TestRecordCreditsOnce(t *testing.T) {
	store := newFakePaymentStore(map[string]int64{"buyer@example.com": 50})
	svc := NewPaymentsService(store, &fakeIntentCreator{})

	if err := svc.Record(context.Background(), "pi_123", "buyer@example.com", 100, 500); err != nil {
		t.Fatalf("record failed: %v", err)
	}
	if store.balances["buyer@example.com"] != 150 {
		t.Errorf("balance = %d, want 150", store.balances["buyer@example.com"])
	}

	// provider retries the confirmation
	if err := svc.Record(context.Background(), "pi_123", "buyer@example.com", 100, 500); err != nil {
		t.Fatalf("duplicate record errored: %v", err)
	}

	if store.balances["buyer@example.com"] != 150 {
		t.Errorf("balance = %d after retry, want 150", store.balances["buyer@example.com"])
	}
	if len(store.payments) != 1 {
		t.Errorf("payments = %d, want 1", len(store.payments))
	}
}

func TestRecordValidation(t *testing.T) {
	svc := NewPaymentsService(newFakePaymentStore(map[string]int64{"b@example.com": 0}), &fakeIntentCreator{})
	ctx := context.Background()

	cases := []struct {
		name        string
		externalID  string
		email       string
		coins       int64
		amountCents int64
	}{
		{"missing external id", "", "b@example.com", 100, 500},
		{"missing email", "pi_1", "", 100, 500},
		{"zero coins", "pi_1", "b@example.com", 0, 500},
		{"zero amount", "pi_1", "b@example.com", 100, 0},
	}

	for _, tc := range cases {
		if err := svc.Record(ctx, tc.externalID, tc.email, tc.coins, tc.amountCents); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: err = %v, want ErrValidation", tc.name, err)
		}
	}
}

// Concurrent confirmations of the same external id must produce a single credit.
func TestRecordConcurrentDuplicates(t *testing.T) {
	store := newFakePaymentStore(map[string]int64{"buyer@example.com": 0})
	svc := NewPaymentsService(store, &fakeIntentCreator{})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := svc.Record(context.Background(), "pi_once", "buyer@example.com", 200, 1000); err != nil {
				t.Errorf("record failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if store.balances["buyer@example.com"] != 200 {
		t.Errorf("balance = %d, want 200", store.balances["buyer@example.com"])
	}
}
