package submissions

import (
	"context"
	"fmt"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionRepository contract interface. Approve and Reject are transactional
// in the store: status CAS, worker credit and slot decrement commit together.
type SubmissionRepository interface {
	Create(ctx context.Context, submission *domain.Submission) error
	FindByID(ctx context.Context, id uint) (domain.Submission, error)
	FindByWorker(ctx context.Context, workerEmail string) ([]domain.Submission, error)
	FindPendingByBuyer(ctx context.Context, buyerEmail string) ([]domain.Submission, error)
	Approve(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error)
	Reject(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error)
}

// TaskReader supplies the snapshot fields copied onto a new submission.
type TaskReader interface {
	FindByID(ctx context.Context, id uint) (domain.Task, error)
}

// UserReader resolves the buyer's display name for the snapshot.
type UserReader interface {
	FindByEmail(ctx context.Context, email string) (domain.User, error)
}

// NotificationRepository is the best-effort side channel; its failures never
// fail the core operation.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) error
}

type SubmissionsService struct {
	submissionRepo SubmissionRepository
	taskReader     TaskReader
	userReader     UserReader
	notifRepo      NotificationRepository
}

func NewSubmissionsService(
	submissionRepo SubmissionRepository,
	taskReader TaskReader,
	userReader UserReader,
	notifRepo NotificationRepository,
) *SubmissionsService {
	return &SubmissionsService{
		submissionRepo: submissionRepo,
		taskReader:     taskReader,
		userReader:     userReader,
		notifRepo:      notifRepo,
	}
}

// Submit files work against an open task. The payout terms are snapshotted onto
// the submission so later task edits cannot change them. The duplicate guard is
// the store's (task_id, worker_email) unique index, not a read-then-write check.
func (s *SubmissionsService) Submit(ctx context.Context, taskID uint, workerEmail, workerName, details string) (domain.Submission, error) {
	if details == "" {
		return domain.Submission{}, fmt.Errorf("%w: submission details are required", domain.ErrValidation)
	}

	task, err := s.taskReader.FindByID(ctx, taskID)
	if err != nil {
		return domain.Submission{}, err
	}

	if task.Status != domain.TaskStatusOpen || task.RequiredWorkers <= 0 {
		return domain.Submission{}, domain.ErrInvalidState
	}

	if task.CreatorEmail == workerEmail {
		return domain.Submission{}, fmt.Errorf("%w: cannot submit to your own task", domain.ErrValidation)
	}

	buyerName := ""
	if buyer, err := s.userReader.FindByEmail(ctx, task.CreatorEmail); err == nil {
		buyerName = buyer.FullName
	}

	submission := domain.Submission{
		TaskID:        task.ID,
		TaskTitle:     task.Title,
		PayableAmount: task.PayableAmount,
		WorkerEmail:   workerEmail,
		WorkerName:    workerName,
		BuyerEmail:    task.CreatorEmail,
		BuyerName:     buyerName,
		Details:       details,
	}

	if err := s.submissionRepo.Create(ctx, &submission); err != nil {
		logger.Error("Failed to create submission", err, "task_id", taskID, "worker", workerEmail)
		return domain.Submission{}, err
	}

	logger.Info("Submission created", "submission_id", submission.ID, "task_id", taskID, "worker", workerEmail)
	return submission, nil
}

func (s *SubmissionsService) GetByWorker(ctx context.Context, workerEmail string) ([]domain.Submission, error) {
	return s.submissionRepo.FindByWorker(ctx, workerEmail)
}

func (s *SubmissionsService) GetPendingByBuyer(ctx context.Context, buyerEmail string) ([]domain.Submission, error) {
	return s.submissionRepo.FindPendingByBuyer(ctx, buyerEmail)
}

// Approve pays the worker and consumes a task slot. Calling it twice returns
// ErrInvalidState on the second call with no double credit.
func (s *SubmissionsService) Approve(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	timer := prometheus.NewTimer(metrics.LedgerOperationLatency.WithLabelValues("approve_submission"))
	defer timer.ObserveDuration()

	submission, err := s.submissionRepo.Approve(ctx, id, buyerEmail)
	if err != nil {
		logger.Error("Failed to approve submission", err, "submission_id", id, "buyer", buyerEmail)
		return domain.Submission{}, err
	}

	metrics.SubmissionsApproved.Inc()
	metrics.CoinsCredited.Add(float64(submission.PayableAmount))
	logger.Info("Submission approved", "submission_id", id, "worker", submission.WorkerEmail, "payout", submission.PayableAmount)

	s.notify(ctx, submission.WorkerEmail, fmt.Sprintf(
		"You earned %d coins from %s for %q", submission.PayableAmount, submission.BuyerName, submission.TaskTitle,
	))

	return submission, nil
}

func (s *SubmissionsService) Reject(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error) {
	submission, err := s.submissionRepo.Reject(ctx, id, buyerEmail)
	if err != nil {
		logger.Error("Failed to reject submission", err, "submission_id", id, "buyer", buyerEmail)
		return domain.Submission{}, err
	}

	logger.Info("Submission rejected", "submission_id", id, "worker", submission.WorkerEmail)

	s.notify(ctx, submission.WorkerEmail, fmt.Sprintf(
		"Your submission for %q was rejected by %s", submission.TaskTitle, submission.BuyerName,
	))

	return submission, nil
}

func (s *SubmissionsService) notify(ctx context.Context, toEmail, message string) {
	err := s.notifRepo.Create(ctx, &domain.Notification{
		ToEmail: toEmail,
		Message: message,
	})
	if err != nil {
		logger.Warn("Failed to write notification", err, "to", toEmail)
	}
}
