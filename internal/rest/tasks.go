package rest

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	TasksHandler struct {
		validate     *validator.Validate
		tasksService TasksService
		timeout      time.Duration
	}

	TasksService interface {
		Create(ctx context.Context, task *domain.Task) (domain.Task, error)
		GetByID(ctx context.Context, id uint) (domain.Task, error)
		GetOpen(ctx context.Context) ([]domain.Task, error)
		GetByCreator(ctx context.Context, creatorEmail string) ([]domain.Task, error)
		Update(ctx context.Context, id uint, requesterEmail, title, detail, submissionInfo string) (domain.Task, error)
		Delete(ctx context.Context, id uint, requesterEmail string) (int64, error)
	}

	TaskCreateInput struct {
		Title           string    `json:"title" validate:"required"`
		Detail          string    `json:"detail"`
		RequiredWorkers int64     `json:"required_workers" validate:"required,gt=0"`
		PayableAmount   int64     `json:"payable_amount" validate:"required,gt=0"`
		CompletionDate  time.Time `json:"completion_date"`
		SubmissionInfo  string    `json:"submission_info"`
		ImageURL        string    `json:"image_url"`
	}

	TaskUpdateInput struct {
		Title          string `json:"title,omitempty"`
		Detail         string `json:"detail,omitempty"`
		SubmissionInfo string `json:"submission_info,omitempty"`
	}
)

func NewTasksHandler(tasksService TasksService) *TasksHandler {
	return &TasksHandler{
		validate:     validator.New(),
		tasksService: tasksService,
		timeout:      10 * time.Second,
	}
}

func (h *TasksHandler) CreateTask(c echo.Context) error {
	email := c.Get("email").(string)

	var request TaskCreateInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate create task", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	task, err := h.tasksService.Create(ctx, &domain.Task{
		CreatorEmail:    email,
		Title:           request.Title,
		Detail:          request.Detail,
		RequiredWorkers: request.RequiredWorkers,
		PayableAmount:   request.PayableAmount,
		CompletionDate:  request.CompletionDate,
		SubmissionInfo:  request.SubmissionInfo,
		ImageURL:        request.ImageURL,
	})
	if err != nil {
		logger.Error("Failed to create task", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(task))
}

func (h *TasksHandler) GetOpenTasks(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tasks, err := h.tasksService.GetOpen(ctx)
	if err != nil {
		logger.Error("Failed to list open tasks", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(tasks))
}

func (h *TasksHandler) GetMyTasks(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	tasks, err := h.tasksService.GetByCreator(ctx, email)
	if err != nil {
		logger.Error("Failed to list own tasks", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(tasks))
}

func (h *TasksHandler) GetTaskByID(c echo.Context) error {
	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid task ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	task, err := h.tasksService.GetByID(ctx, uint(taskID))
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(task))
}

func (h *TasksHandler) UpdateTask(c echo.Context) error {
	email := c.Get("email").(string)

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid task ID"})
	}

	var request TaskUpdateInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	task, err := h.tasksService.Update(ctx, uint(taskID), email, request.Title, request.Detail, request.SubmissionInfo)
	if err != nil {
		logger.Error("Failed to update task", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(task))
}

func (h *TasksHandler) DeleteTask(c echo.Context) error {
	email := c.Get("email").(string)

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid task ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	refund, err := h.tasksService.Delete(ctx, uint(taskID), email)
	if err != nil {
		logger.Error("Failed to delete task", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(map[string]interface{}{
		"message":        "Task deleted successfully",
		"refunded_coins": refund,
	}))
}
