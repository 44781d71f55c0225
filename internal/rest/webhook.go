package rest

import (
	"context"
	"net/http"
	"time"

	"microTaskMarket/domain"
	"microTaskMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	WebhookHandler struct {
		paymentsService PaymentsService
		webhookToken    string
		timeout         time.Duration
	}

	// PaymentWebhookRequest is the provider's charge confirmation, already
	// flattened to the fields this service consumes.
	PaymentWebhookRequest struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID           string            `json:"id"`
				Amount       int64             `json:"amount"`
				Status       string            `json:"status"`
				ReceiptEmail string            `json:"receipt_email"`
				Metadata     map[string]string `json:"metadata"`
			} `json:"object"`
		} `json:"data"`
	}
)

func NewWebhookHandler(paymentsService PaymentsService, webhookToken string) *WebhookHandler {
	return &WebhookHandler{
		paymentsService: paymentsService,
		webhookToken:    webhookToken,
		timeout:         10 * time.Second,
	}
}

// HandlePaymentWebhook records a confirmed charge and credits the coins.
// Retried deliveries of the same confirmation are no-ops.
func (h *WebhookHandler) HandlePaymentWebhook(c echo.Context) error {
	if h.webhookToken != "" && c.Request().Header.Get("X-Webhook-Token") != h.webhookToken {
		return c.JSON(http.StatusUnauthorized, ResponseError{Message: "invalid webhook token"})
	}

	var request PaymentWebhookRequest
	if err := c.Bind(&request); err != nil {
		logger.Error("Failed to bind webhook request", err)
		return c.JSON(http.StatusBadRequest, fres.Response.StatusBadRequest("Invalid request"))
	}

	object := request.Data.Object
	if request.Type != "payment_intent.succeeded" || object.Status != "succeeded" {
		logger.Info("Ignoring webhook event", "type", request.Type, "status", object.Status)
		return c.JSON(http.StatusOK, fres.Response.StatusOK("ignored"))
	}

	externalID := object.Metadata["external_id"]
	if externalID == "" {
		externalID = object.ID
	}

	coins := object.Amount * domain.CoinsPerDollar / 100

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	err := h.paymentsService.Record(ctx, externalID, object.ReceiptEmail, coins, object.Amount)
	if err != nil {
		logger.Error("Failed to record payment from webhook", err, "external_id", externalID)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK("recorded"))
}
