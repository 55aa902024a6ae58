package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/audrey/internal/auth"
	"github.com/xiaot623/audrey/internal/domain"
)

// Chat sends the message to the completion provider and records the exchange.
// POST /api/chat?message=...
func (h *Handler) Chat(c echo.Context) error {
	start := time.Now()
	logger := h.logger.With(slog.String("request_id", requestID(c)))

	user, err := h.authenticate(c)
	if err != nil {
		return h.fail(c, logger, start, err)
	}
	logger = logger.With(slog.String("user_id", user.ID))

	if !c.QueryParams().Has("message") {
		return h.fail(c, logger, start, &domain.InvalidRequestError{
			Field:   "message",
			Message: "message query parameter is required",
		})
	}
	message := c.QueryParam("message")
	logger.Info("received chat request", slog.Int("message_length", len(message)))

	res, err := h.service.Chat(c.Request().Context(), user, message)
	if err != nil {
		return h.fail(c, logger, start, err)
	}

	h.service.Metrics().ObserveChat(domain.ChatOutcomeResponded)
	logger.Info("successfully processed chat request",
		slog.Int64("record_id", int64(res.Handle)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return c.JSON(http.StatusOK, domain.ChatResponse{Response: res.Response})
}

// authenticate resolves the caller. The open variant has no validator and an anonymous caller.
func (h *Handler) authenticate(c echo.Context) (domain.UserIdentity, error) {
	if h.validator == nil {
		return domain.UserIdentity{}, nil
	}

	credential, err := auth.ExtractBearer(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return domain.UserIdentity{}, err
	}
	claims, err := h.validator.Validate(c.Request().Context(), credential)
	if err != nil {
		return domain.UserIdentity{}, err
	}
	return auth.ResolveIdentity(claims), nil
}

func requestID(c echo.Context) string {
	if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
		return id
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}
