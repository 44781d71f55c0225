package rest

import (
	"context"
	"net/http"
	"time"

	"microTaskMarket/business/user"
	"microTaskMarket/pkg/logger"

	"github.com/AMFarhan21/fres"
	"github.com/labstack/echo/v4"
)

type (
	AdminHandler struct {
		statsService StatsService
		timeout      time.Duration
	}

	StatsService interface {
		Stats(ctx context.Context) (user.AdminStats, error)
	}
)

func NewAdminHandler(statsService StatsService) *AdminHandler {
	return &AdminHandler{
		statsService: statsService,
		timeout:      10 * time.Second,
	}
}

func (h *AdminHandler) GetStats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	stats, err := h.statsService.Stats(ctx)
	if err != nil {
		logger.Error("Failed to compute admin stats", err)
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, fres.Response.StatusOK(stats))
}
