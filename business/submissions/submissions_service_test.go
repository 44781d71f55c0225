package submissions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"microTaskMarket/domain"
)

// fakeStore backs all four repository interfaces the service consumes, with
// the same guard semantics as the postgres transactions.
type fakeStore struct {
	mu            sync.Mutex
	balances      map[string]int64
	users         map[string]domain.User
	tasks         map[uint]domain.Task
	submissions   map[uint]domain.Submission
	notifications []domain.Notification
	nextID        uint
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		balances:    make(map[string]int64),
		users:       make(map[string]domain.User),
		tasks:       make(map[uint]domain.Task),
		submissions: make(map[uint]domain.Submission),
		nextID:      1,
	}
}

func (f *fakeStore) addUser(email, name string, coins int64) {
	f.users[email] = domain.User{Email: email, FullName: name}
	f.balances[email] = coins
}

func (f *fakeStore) addTask(task domain.Task) uint {
	id := f.nextID
	f.nextID++
	task.ID = id
	f.tasks[id] = task
	return id
}

func (f *fakeStore) Create(ctx context.Context, submission *domain.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.submissions {
		if existing.TaskID == submission.TaskID && existing.WorkerEmail == submission.WorkerEmail {
			return domain.ErrDuplicateSubmission
		}
	}

	submission.ID = f.nextID
	submission.Status = domain.SubmissionStatusPending
	f.nextID++
	f.submissions[submission.ID] = *submission
	return nil
}

func (f *fakeStore) FindByID(ctx context.Context, id uint) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	submission, ok := f.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return submission, nil
}

func (f *fakeStore) FindByWorker(ctx context.Context, workerEmail string) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Submission
	for _, s := range f.submissions {
		if s.WorkerEmail == workerEmail {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) FindPendingByBuyer(ctx context.Context, buyerEmail string) ([]domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []domain.Submission
	for _, s := range f.submissions {
		if s.BuyerEmail == buyerEmail && s.Status == domain.SubmissionStatusPending {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeStore) Approve(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	submission, ok := f.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}

	if submission.BuyerEmail != buyerEmail {
		return domain.Submission{}, domain.ErrForbidden
	}

	if submission.Status != domain.SubmissionStatusPending {
		return domain.Submission{}, domain.ErrInvalidState
	}

	task, ok := f.tasks[submission.TaskID]
	if !ok {
		return domain.Submission{}, domain.ErrTaskNotFound
	}
	if task.RequiredWorkers <= 0 {
		return domain.Submission{}, domain.ErrInvalidState
	}

	f.balances[submission.WorkerEmail] += submission.PayableAmount
	task.RequiredWorkers--
	if task.RequiredWorkers == 0 {
		task.Status = domain.TaskStatusComplete
	}
	f.tasks[task.ID] = task

	submission.Status = domain.SubmissionStatusApproved
	f.submissions[id] = submission
	return submission, nil
}

func (f *fakeStore) Reject(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	submission, ok := f.submissions[id]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}

	if submission.BuyerEmail != buyerEmail {
		return domain.Submission{}, domain.ErrForbidden
	}

	if submission.Status != domain.SubmissionStatusPending {
		return domain.Submission{}, domain.ErrInvalidState
	}

	submission.Status = domain.SubmissionStatusRejected
	f.submissions[id] = submission
	return submission, nil
}

// TaskReader
func (f *fakeStore) findTask(ctx context.Context, id uint) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	task, ok := f.tasks[id]
	if !ok {
		return domain.Task{}, domain.ErrTaskNotFound
	}
	return task, nil
}

// UserReader
func (f *fakeStore) FindByEmail(ctx context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// NotificationRepository
func (f *fakeStore) createNotification(ctx context.Context, n *domain.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.notifications = append(f.notifications, *n)
	return nil
}

type taskReaderFunc struct{ store *fakeStore }

func (r taskReaderFunc) FindByID(ctx context.Context, id uint) (domain.Task, error) {
	return r.store.findTask(ctx, id)
}

type notifRepoFunc struct{ store *fakeStore }

func (r notifRepoFunc) Create(ctx context.Context, n *domain.Notification) error {
	return r.store.createNotification(ctx, n)
}

func newTestService(store *fakeStore) *SubmissionsService {
	return NewSubmissionsService(store, taskReaderFunc{store}, store, notifRepoFunc{store})
}

func TestSubmitSnapshotsTaskTerms(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea Buyer", 400)
	store.addUser("worker@example.com", "Walt Worker", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Label 10 images",
		RequiredWorkers: 5,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	submission, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt Worker", "done, see links")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if submission.PayableAmount != 20 || submission.TaskTitle != "Label 10 images" {
		t.Error("task terms not snapshotted onto submission")
	}
	if submission.BuyerEmail != "buyer@example.com" || submission.BuyerName != "Bea Buyer" {
		t.Error("buyer not snapshotted onto submission")
	}
	if submission.Status != domain.SubmissionStatusPending {
		t.Errorf("status = %q, want pending", submission.Status)
	}

	// a later title edit must not change the recorded terms
	task := store.tasks[taskID]
	task.Title = "Renamed"
	store.tasks[taskID] = task

	got, _ := store.FindByID(context.Background(), submission.ID)
	if got.TaskTitle != "Label 10 images" {
		t.Error("submission title changed by task edit")
	}
}

func TestSubmitDuplicate(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Task",
		RequiredWorkers: 5,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	if _, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "first"); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}

	_, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "second")
	if !errors.Is(err, domain.ErrDuplicateSubmission) {
		t.Fatalf("err = %v, want ErrDuplicateSubmission", err)
	}
}

func TestSubmitGuards(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	openID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Open",
		RequiredWorkers: 1,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})
	completeID := store.addTask(domain.Task{
		CreatorEmail:  "buyer@example.com",
		Title:         "Done",
		PayableAmount: 20,
		Status:        domain.TaskStatusComplete,
	})

	svc := newTestService(store)

	if _, err := svc.Submit(context.Background(), completeID, "worker@example.com", "Walt", "late"); !errors.Is(err, domain.ErrInvalidState) {
		t.Errorf("complete task: err = %v, want ErrInvalidState", err)
	}

	if _, err := svc.Submit(context.Background(), 999, "worker@example.com", "Walt", "ghost"); !errors.Is(err, domain.ErrTaskNotFound) {
		t.Errorf("missing task: err = %v, want ErrTaskNotFound", err)
	}

	if _, err := svc.Submit(context.Background(), openID, "buyer@example.com", "Bea", "self"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("own task: err = %v, want ErrValidation", err)
	}

	if _, err := svc.Submit(context.Background(), openID, "worker@example.com", "Walt", ""); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("empty details: err = %v, want ErrValidation", err)
	}
}

// Approval pays the worker once, consumes one slot, and a second approval of
// the same submission is an invalid transition with no further effects.
func TestApproveIsTerminalAndPaysOnce(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Task",
		RequiredWorkers: 5,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	submission, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "done")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	approved, err := svc.Approve(context.Background(), submission.ID, "buyer@example.com")
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != domain.SubmissionStatusApproved {
		t.Errorf("status = %q, want approved", approved.Status)
	}

	if store.balances["worker@example.com"] != 30 {
		t.Errorf("worker balance = %d, want 30", store.balances["worker@example.com"])
	}
	if store.tasks[taskID].RequiredWorkers != 4 {
		t.Errorf("required workers = %d, want 4", store.tasks[taskID].RequiredWorkers)
	}

	if _, err := svc.Approve(context.Background(), submission.ID, "buyer@example.com"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("second approve err = %v, want ErrInvalidState", err)
	}

	if store.balances["worker@example.com"] != 30 {
		t.Error("double approval double-credited the worker")
	}
	if store.tasks[taskID].RequiredWorkers != 4 {
		t.Error("double approval double-decremented the slot count")
	}
}

func TestApproveForbiddenForWrongBuyer(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Task",
		RequiredWorkers: 1,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	submission, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "done")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Approve(context.Background(), submission.ID, "other@example.com"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if store.balances["worker@example.com"] != 10 {
		t.Error("forbidden approval credited the worker")
	}
}

func TestApproveLastSlotCompletesTask(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Task",
		RequiredWorkers: 1,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	submission, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "done")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if _, err := svc.Approve(context.Background(), submission.ID, "buyer@example.com"); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	task := store.tasks[taskID]
	if task.RequiredWorkers != 0 || task.Status != domain.TaskStatusComplete {
		t.Errorf("task = {workers: %d, status: %q}, want complete with 0 workers", task.RequiredWorkers, task.Status)
	}
}

func TestRejectHasNoLedgerEffect(t *testing.T) {
	store := newFakeStore()
	store.addUser("buyer@example.com", "Bea", 400)
	store.addUser("worker@example.com", "Walt", 10)
	taskID := store.addTask(domain.Task{
		CreatorEmail:    "buyer@example.com",
		Title:           "Task",
		RequiredWorkers: 3,
		PayableAmount:   20,
		Status:          domain.TaskStatusOpen,
	})

	svc := newTestService(store)

	submission, err := svc.Submit(context.Background(), taskID, "worker@example.com", "Walt", "done")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	rejected, err := svc.Reject(context.Background(), submission.ID, "buyer@example.com")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != domain.SubmissionStatusRejected {
		t.Errorf("status = %q, want rejected", rejected.Status)
	}

	if store.balances["worker@example.com"] != 10 {
		t.Error("rejection changed the worker balance")
	}
	if store.tasks[taskID].RequiredWorkers != 3 {
		t.Error("rejection consumed a worker slot")
	}

	// terminal: no approve after reject
	if _, err := svc.Approve(context.Background(), submission.ID, "buyer@example.com"); !errors.Is(err, domain.ErrInvalidState) {
		t.Fatalf("approve after reject err = %v, want ErrInvalidState", err)
	}
}
