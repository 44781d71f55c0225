package middleware

import (
	"net/http"

	"microTaskMarket/pkg/logger"
	jsonres "microTaskMarket/pkg/response"

	"github.com/labstack/echo/v4"
)

// ErrorHandler is the catch-all for errors that escape a handler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := "Internal server error"

	if httpErr, ok := err.(*echo.HTTPError); ok {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok {
			message = msg
		}
	} else {
		logger.Error("Unhandled error", err, "path", c.Request().URL.Path)
	}

	if writeErr := c.JSON(code, jsonres.Error("ERROR", message, nil)); writeErr != nil {
		logger.Error("Failed to write error response", writeErr)
	}
}
