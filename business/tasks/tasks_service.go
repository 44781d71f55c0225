package tasks

import (
	"context"
	"fmt"
	"time"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"
	"microTaskMarket/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

// TaskRepository contract interface
type TaskRepository interface {
	CreateWithEscrow(ctx context.Context, task *domain.Task) error
	FindByID(ctx context.Context, id uint) (domain.Task, error)
	FindOpen(ctx context.Context) ([]domain.Task, error)
	FindByCreator(ctx context.Context, creatorEmail string) ([]domain.Task, error)
	UpdateDetails(ctx context.Context, id uint, title, detail, submissionInfo string) error
	DeleteWithRefund(ctx context.Context, id uint, requesterEmail string) (domain.Task, error)
}

type TasksService struct {
	taskRepo TaskRepository
}

func NewTasksService(taskRepo TaskRepository) *TasksService {
	return &TasksService{
		taskRepo: taskRepo,
	}
}

// Create debits required_workers * payable_amount from the creator and posts
// the task. The repository runs both as one transaction, so a short balance
// leaves nothing behind.
func (s *TasksService) Create(ctx context.Context, task *domain.Task) (domain.Task, error) {
	timer := prometheus.NewTimer(metrics.LedgerOperationLatency.WithLabelValues("create_task"))
	defer timer.ObserveDuration()

	if task.Title == "" {
		return domain.Task{}, fmt.Errorf("%w: task title is required", domain.ErrValidation)
	}

	if task.RequiredWorkers <= 0 {
		return domain.Task{}, fmt.Errorf("%w: required workers must be positive", domain.ErrValidation)
	}

	if task.PayableAmount <= 0 {
		return domain.Task{}, fmt.Errorf("%w: payable amount must be positive", domain.ErrValidation)
	}

	if !task.CompletionDate.IsZero() && task.CompletionDate.Before(time.Now()) {
		return domain.Task{}, fmt.Errorf("%w: completion date is in the past", domain.ErrValidation)
	}

	if err := s.taskRepo.CreateWithEscrow(ctx, task); err != nil {
		logger.Error("Failed to create task", err, "creator", task.CreatorEmail)
		return domain.Task{}, err
	}

	metrics.TasksCreated.Inc()
	metrics.CoinsDebited.Add(float64(task.EscrowCost()))
	logger.Info("Task created", "task_id", task.ID, "creator", task.CreatorEmail, "escrow", task.EscrowCost())

	return *task, nil
}

func (s *TasksService) GetByID(ctx context.Context, id uint) (domain.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

func (s *TasksService) GetOpen(ctx context.Context) ([]domain.Task, error) {
	return s.taskRepo.FindOpen(ctx)
}

func (s *TasksService) GetByCreator(ctx context.Context, creatorEmail string) ([]domain.Task, error) {
	return s.taskRepo.FindByCreator(ctx, creatorEmail)
}

// Update touches descriptive fields only; payout terms are frozen at creation.
func (s *TasksService) Update(ctx context.Context, id uint, requesterEmail, title, detail, submissionInfo string) (domain.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return domain.Task{}, err
	}

	if task.CreatorEmail != requesterEmail {
		return domain.Task{}, domain.ErrForbidden
	}

	if title == "" {
		title = task.Title
	}
	if detail == "" {
		detail = task.Detail
	}
	if submissionInfo == "" {
		submissionInfo = task.SubmissionInfo
	}

	if err := s.taskRepo.UpdateDetails(ctx, id, title, detail, submissionInfo); err != nil {
		logger.Error("Failed to update task", err, "task_id", id)
		return domain.Task{}, err
	}

	task.Title = title
	task.Detail = detail
	task.SubmissionInfo = submissionInfo
	return task, nil
}

// Delete refunds the unspent escrow to the creator; shares already paid out to
// approved submissions stay paid.
func (s *TasksService) Delete(ctx context.Context, id uint, requesterEmail string) (int64, error) {
	timer := prometheus.NewTimer(metrics.LedgerOperationLatency.WithLabelValues("delete_task"))
	defer timer.ObserveDuration()

	task, err := s.taskRepo.DeleteWithRefund(ctx, id, requesterEmail)
	if err != nil {
		logger.Error("Failed to delete task", err, "task_id", id, "requester", requesterEmail)
		return 0, err
	}

	refund := task.EscrowCost()
	if refund > 0 {
		metrics.CoinsCredited.Add(float64(refund))
	}
	logger.Info("Task deleted", "task_id", id, "refund", refund)

	return refund, nil
}
