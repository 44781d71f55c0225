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
	WithdrawalsHandler struct {
		validate           *validator.Validate
		withdrawalsService WithdrawalsService
		timeout            time.Duration
	}

	WithdrawalsService interface {
		Request(ctx context.Context, workerEmail, workerName string, coins int64, paymentSystem, accountNumber string) (domain.Withdrawal, error)
		GetByWorker(ctx context.Context, workerEmail string) ([]domain.Withdrawal, error)
		GetPending(ctx context.Context) ([]domain.Withdrawal, error)
		Approve(ctx context.Context, id uint) (domain.Withdrawal, error)
		Reject(ctx context.Context, id uint, reason string) (domain.Withdrawal, error)
	}

	WithdrawalInput struct {
		Coins         int64  `json:"coins" validate:"required,gt=0"`
		WorkerName    string `json:"worker_name"`
		PaymentSystem string `json:"payment_system" validate:"required"`
		AccountNumber string `json:"account_number" validate:"required"`
	}

	WithdrawalRejectInput struct {
		Reason string `json:"reason"`
	}
)

func NewWithdrawalsHandler(withdrawalsService WithdrawalsService) *WithdrawalsHandler {
	return &WithdrawalsHandler{
		validate:           validator.New(),
		withdrawalsService: withdrawalsService,
		timeout:            10 * time.Second,
	}
}

func (h *WithdrawalsHandler) RequestWithdrawal(c echo.Context) error {
	email := c.Get("email").(string)

	var request WithdrawalInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate withdrawal request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	withdrawal, err := h.withdrawalsService.Request(ctx, email, request.WorkerName, request.Coins, request.PaymentSystem, request.AccountNumber)
	if err != nil {
		logger.Error("Failed to request withdrawal", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(withdrawal))
}

func (h *WithdrawalsHandler) GetMyWithdrawals(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	withdrawals, err := h.withdrawalsService.GetByWorker(ctx, email)
	if err != nil {
		logger.Error("Failed to list withdrawals", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(withdrawals))
}

func (h *WithdrawalsHandler) GetPendingWithdrawals(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	withdrawals, err := h.withdrawalsService.GetPending(ctx)
	if err != nil {
		logger.Error("Failed to list pending withdrawals", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(withdrawals))
}

func (h *WithdrawalsHandler) ApproveWithdrawal(c echo.Context) error {
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid withdrawal ID"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	withdrawal, err := h.withdrawalsService.Approve(ctx, uint(withdrawalID))
	if err != nil {
		logger.Error("Failed to approve withdrawal", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(withdrawal))
}

func (h *WithdrawalsHandler) RejectWithdrawal(c echo.Context) error {
	withdrawalID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ResponseError{Message: "invalid withdrawal ID"})
	}

	var request WithdrawalRejectInput
	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	withdrawal, err := h.withdrawalsService.Reject(ctx, uint(withdrawalID), request.Reason)
	if err != nil {
		logger.Error("Failed to reject withdrawal", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(withdrawal))
}
