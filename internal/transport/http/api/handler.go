// Package api provides the chat HTTP handlers.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xiaot623/audrey/internal/domain"
	"github.com/xiaot623/audrey/internal/service"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// WelcomeMessage is returned by the root endpoint.
const WelcomeMessage = "Welcome to Audrey AI API"

// TokenValidator verifies a bearer credential.
type TokenValidator interface {
	Validate(ctx context.Context, credential string) (*domain.ClaimSet, error)
}

// Handler handles HTTP requests.
type Handler struct {
	service   *service.Service
	validator TokenValidator
	logger    *slog.Logger
}

// NewHandler creates a new handler. A nil validator serves the open variant.
func NewHandler(svc *service.Service, validator TokenValidator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:   svc,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Root)
	e.POST("/api/chat", h.Chat)
	e.GET("/api/messages", h.ListMessages)

	e.GET("/health", h.Health)
}

// Root returns the welcome message.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": WelcomeMessage})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": Version,
	})
}
