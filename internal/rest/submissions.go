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
	SubmissionsHandler struct {
		validate           *validator.Validate
		submissionsService SubmissionsService
		timeout            time.Duration
	}

	SubmissionsService interface {
		Submit(ctx context.Context, taskID uint, workerEmail, workerName, details string) (domain.Submission, error)
		GetByWorker(ctx context.Context, workerEmail string) ([]domain.Submission, error)
		GetPendingByBuyer(ctx context.Context, buyerEmail string) ([]domain.Submission, error)
		Approve(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error)
		Reject(ctx context.Context, id uint, buyerEmail string) (domain.Submission, error)
	}

	SubmissionInput struct {
		TaskID     uint   `json:"task_id" validate:"required"`
		WorkerName string `json:"worker_name"`
		Details    string `json:"details" validate:"required"`
	}
)

func NewSubmissionsHandler(submissionsService SubmissionsService) *SubmissionsHandler {
	return &SubmissionsHandler{
		validate:           validator.New(),
		submissionsService: submissionsService,
		timeout:            10 * time.Second,
	}
}

func (h *SubmissionsHandler) SubmitWork(c echo.Context) error {
	email := c.Get("email").(string)

	var request SubmissionInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate submission", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	submission, err := h.submissionsService.Submit(ctx, request.TaskID, email, request.WorkerName, request.Details)
	if err != nil {
		logger.Error("Failed to submit work", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(submission))
}

func (h *SubmissionsHandler) GetMySubmissions(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	submissions, err := h.submissionsService.GetByWorker(ctx, email)
	if err != nil {
		logger.Error("Failed to list submissions", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(submissions))
}

func (h *SubmissionsHandler) GetPendingSubmissions(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	submissions, err := h.submissionsService.GetPendingByBuyer(ctx, email)
	if err != nil {
		logger.Error("Failed to list pending submissions", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(submissions))
}

func (h *SubmissionsHandler) ApproveSubmission(c echo.Context) error {
	email := c.Get("email").(string)

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid submission ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	submission, err := h.submissionsService.Approve(ctx, uint(submissionID), email)
	if err != nil {
		logger.Error("Failed to approve submission", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(submission))
}

func (h *SubmissionsHandler) RejectSubmission(c echo.Context) error {
	email := c.Get("email").(string)

	submissionID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid submission ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	submission, err := h.submissionsService.Reject(ctx, uint(submissionID), email)
	if err != nil {
		logger.Error("Failed to reject submission", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(submission))
}
