package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"

	"microTaskMarket/domain"
)

// fakeTaskRepo keeps user balances and tasks under one lock, mirroring the
// transactional escrow semantics of the postgres repo.
type fakeTaskRepo struct {
	mu       sync.Mutex
	balances map[string]int64
	tasks    map[uint]domain.Task
	nextID   uint
}

func newFakeTaskRepo(balances map[string]int64) *fakeTaskRepo {
	return &fakeTaskRepo{
		balances: balances,
		tasks:    make(map[uint]domain.Task),
		nextID:   1,
	}
}

func (f *fakeTaskRepo) CreateWithEscrow(ctx context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	balance, ok := f.balances[task.CreatorEmail]
	if !ok {
		return domain.ErrUserNotFound
	}

	cost := task.EscrowCost()
	if balance < cost {
		return domain.ErrInsufficientBalance
	}

	f.balances[task.CreatorEmail] = balance - cost
	task.ID = f.nextID
	task.Status = domain.TaskStatusOpen
	f.nextID++
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskRepo) FindByID(ctx context.Context, id uint) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, nil
}

func (f *fakeTaskRepo) FindOpen(ctx context.Context) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Task
	for _, task := range f.tasks {
		if task.Status == domain.TaskStatusOpen {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) FindByCreator(ctx context.Context, creatorEmail string) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Task
	for _, task := range f.tasks {
		if task.CreatorEmail == creatorEmail {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) UpdateDetails(ctx context.Context, id uint, title, detail, submissionInfo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return domain.ErrTaskNotFound
	}

	task.Title = title
	task.Detail = detail
	task.SubmissionInfo = submissionInfo
	f.tasks[id] = task
	return nil
}

func (f *fakeTaskRepo) DeleteWithRefund(ctx context.Context, id uint, requesterEmail string) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if task.CreatorEmail != requesterEmail {
		return domain.Task{}, domain.ErrForbidden
	}

	delete(f.tasks, id)
	f.balances[task.CreatorEmail] += task.EscrowCost()
	return task, nil
}

// Buyer with 500 coins posts a 5-worker task paying 20 each: escrow of 100 is
// debited up front.
func TestCreateTaskDebitsEscrow(t *testing.T) {
	repo := newFakeTaskRepo(map[string]int64{"buyer@example.com": 500})
	svc := NewTasksService(repo)

	task, err := svc.Create(context.Background(), &domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Label 10 images",
		RequiredWorkers: 5,
		PayableAmount:   20,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if repo.balances["buyer@example.com"] != 400 {
		t.Errorf("buyer balance = %d, want 400", repo.balances["buyer@example.com"])
	}
	if task.RequiredWorkers != 5 {
		t.Errorf("required workers = %d, want 5", task.RequiredWorkers)
	}
	if task.Status != domain.TaskStatusOpen {
		t.Errorf("status = %q, want open", task.Status)
	}
}

func TestCreateTaskInsufficientBalance(t *testing.T) {
	repo := newFakeTaskRepo(map[string]int64{"buyer@example.com": 99})
	svc := NewTasksService(repo)

	_, err := svc.Create(context.Background(), &domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Too expensive",
		RequiredWorkers: 5,
		PayableAmount:   20,
	})
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	if len(repo.tasks) != 0 {
		t.Error("task was created despite failed debit")
	}
	if repo.balances["buyer@example.com"] != 99 {
		t.Errorf("balance mutated on failed create: %d", repo.balances["buyer@example.com"])
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := NewTasksService(newFakeTaskRepo(map[string]int64{"b@example.com": 1000}))

	// missing title, zero workers, zero payout, negative workers
	cases := []domain.Task{
		{CreatorEmail: "b@example.com", RequiredWorkers: 5, PayableAmount: 20},
		{CreatorEmail: "b@example.com", Title: "t", RequiredWorkers: 0, PayableAmount: 20},
		{CreatorEmail: "b@example.com", Title: "t", RequiredWorkers: 5, PayableAmount: 0},
		{CreatorEmail: "b@example.com", Title: "t", RequiredWorkers: -1, PayableAmount: 20},
	}

	for i, task := range cases {
		if _, err := svc.Create(context.Background(), &task); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}
}

// Delete after one approval refunds only the unspent escrow: 4 slots * 20 = 80.
func TestDeleteTaskRefundsUnspentEscrow(t *testing.T) {
	repo := newFakeTaskRepo(map[string]int64{"buyer@example.com": 500})
	svc := NewTasksService(repo)

	task, err := svc.Create(context.Background(), &domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Label 10 images",
		RequiredWorkers: 5,
		PayableAmount:   20,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// one approval has consumed a slot
	stored := repo.tasks[task.ID]
	stored.RequiredWorkers = 4
	repo.tasks[task.ID] = stored

	refund, err := svc.Delete(context.Background(), task.ID, "buyer@example.com")
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if refund != 80 {
		t.Errorf("refund = %d, want 80", refund)
	}
	if repo.balances["buyer@example.com"] != 480 {
		t.Errorf("buyer balance = %d, want 480", repo.balances["buyer@example.com"])
	}
}

func TestDeleteTaskForbiddenForNonOwner(t *testing.T) {
	repo := newFakeTaskRepo(map[string]int64{"buyer@example.com": 500})
	svc := NewTasksService(repo)

	task, err := svc.Create(context.Background(), &domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Mine",
		RequiredWorkers: 1,
		PayableAmount:   10,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Delete(context.Background(), task.ID, "other@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	if _, ok := repo.tasks[task.ID]; !ok {
		t.Error("task deleted by non-owner")
	}
}

func TestUpdateTaskKeepsPayoutTerms(t *testing.T) {
	repo := newFakeTaskRepo(map[string]int64{"buyer@example.com": 500})
	svc := NewTasksService(repo)

	task, err := svc.Create(context.Background(), &domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Old title",
		RequiredWorkers: 2,
		PayableAmount:   30,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), task.ID, "buyer@example.com", "New title", "", "")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Title != "New title" {
		t.Errorf("title = %q, want %q", updated.Title, "New title")
	}
	if updated.PayableAmount != 30 || updated.RequiredWorkers != 2 {
		t.Error("payout terms changed by update")
	}

	if _, err := svc.Update(context.Background(), task.ID, "other@example.com", "Hijack", "", ""); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}
