package rest

import (
	"context"
	"net/http"
	"time"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type (
	PaymentsHandler struct {
		validate        *validator.Validate
		paymentsService PaymentsService
		timeout         time.Duration
	}

	PaymentsService interface {
		CreateIntent(ctx context.Context, email string, coins int64) (domain.PaymentIntent, error)
		Record(ctx context.Context, externalID, email string, coins, amountCents int64) error
		GetByEmail(ctx context.Context, email string) ([]domain.Payment, error)
	}

	IntentInput struct {
		Coins int64 `json:"coins" validate:"required,gt=0"`
	}
)

func NewPaymentsHandler(paymentsService PaymentsService) *PaymentsHandler {
	return &PaymentsHandler{
		validate:        validator.New(),
		paymentsService: paymentsService,
		timeout:         10 * time.Second,
	}
}

func (h *PaymentsHandler) CreateIntent(c echo.Context) error {
	email := c.Get("email").(string)

	var request IntentInput

	if err := c.Bind(&request); err != nil {
		logger.Error("Invalid request body", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	if err := h.validate.Struct(&request); err != nil {
		logger.Error("Failed to validate intent request", err)
		return c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	intent, err := h.paymentsService.CreateIntent(ctx, email, request.Coins)
	if err != nil {
		logger.Error("Failed to create payment intent", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, fres.Response.StatusCreated(intent))
}

func (h *PaymentsHandler) GetMyPayments(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	payments, err := h.paymentsService.GetByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to list payments", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(payments))
}
