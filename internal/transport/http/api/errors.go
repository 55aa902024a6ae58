package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/audrey/internal/domain"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// failure is the HTTP rendering of an error.
type failure struct {
	status  int
	detail  string
	outcome domain.ChatOutcome
	class   string
}

func classify(err error) failure {
	var (
		ae *domain.AuthError
		ie *domain.InvalidRequestError
		se *domain.StorageError
		ge *domain.GatewayError
	)
	switch {
	case errors.As(err, &ae):
		return failure{ae.Status, ae.Reason, domain.ChatOutcomeAuthFailed, "AuthenticationError"}
	case errors.As(err, &ie):
		return failure{http.StatusUnprocessableEntity, ie.Message, domain.ChatOutcomeInvalidRequest, "InvalidRequestError"}
	case errors.As(err, &se):
		return failure{http.StatusInternalServerError, se.Error(), domain.ChatOutcomeStorageFailed, "StorageError"}
	case errors.As(err, &ge):
		return failure{http.StatusInternalServerError, ge.Message, domain.ChatOutcomeGatewayFailed, "GatewayError"}
	default:
		return failure{http.StatusInternalServerError, err.Error(), domain.ChatOutcomeInternalError, "InternalError"}
	}
}

// fail logs err, counts it and writes the {detail} body.
func (h *Handler) fail(c echo.Context, logger *slog.Logger, start time.Time, err error) error {
	f := classify(err)

	level := slog.LevelError
	if f.status < http.StatusInternalServerError {
		level = slog.LevelWarn
	}
	logger.LogAttrs(c.Request().Context(), level, "request failed",
		slog.String("path", c.Path()),
		slog.String("error_class", f.class),
		slog.Int("status", f.status),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("error", err.Error()),
	)

	if c.Path() == "/api/chat" {
		h.service.Metrics().ObserveChat(f.outcome)
	}
	if f.status == http.StatusUnauthorized {
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	}
	return c.JSON(f.status, ErrorResponse{Detail: f.detail})
}

// ErrorHandler renders framework errors (unknown routes, panics) as {detail}.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		detail := http.StatusText(http.StatusInternalServerError)
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			detail = fmt.Sprint(he.Message)
		} else {
			logger.Error("unhandled error",
				slog.String("path", c.Request().URL.Path),
				slog.String("error", err.Error()),
			)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, ErrorResponse{Detail: detail})
		}
		if writeErr != nil {
			logger.Error("failed to write error response", slog.String("error", writeErr.Error()))
		}
	}
}
