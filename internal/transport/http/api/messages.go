package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// ListMessages returns every conversation record ordered by id.
// GET /api/messages
func (h *Handler) ListMessages(c echo.Context) error {
	start := time.Now()
	logger := h.logger.With(slog.String("request_id", requestID(c)))

	records, err := h.service.ListMessages(c.Request().Context())
	if err != nil {
		return h.fail(c, logger, start, err)
	}

	logger.Info("retrieved messages", slog.Int("count", len(records)))
	return c.JSON(http.StatusOK, records)
}
