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
	NotificationsHandler struct {
		notificationsService NotificationsService
		timeout              time.Duration
	}

	NotificationsService interface {
		GetForUser(ctx context.Context, email string) ([]domain.Notification, error)
	}
)

func NewNotificationsHandler(notificationsService NotificationsService) *NotificationsHandler {
	return &NotificationsHandler{
		notificationsService: notificationsService,
		timeout:              10 * time.Second,
	}
}

func (h *NotificationsHandler) GetMyNotifications(c echo.Context) error {
	email := c.Get("email").(string)

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	notifications, err := h.notificationsService.GetForUser(ctx, email)
	if err != nil {
		logger.Error("Failed to list notifications", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(notifications))
}
