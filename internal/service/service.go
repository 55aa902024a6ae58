// Package service implements the chat pipeline on top of the store and the completion gateway.
package service

import (
	"log/slog"

	"github.com/xiaot623/audrey/internal/adapter/llm"
	"github.com/xiaot623/audrey/internal/metrics"
	"github.com/xiaot623/audrey/internal/repository"
)

// Service orchestrates chat requests. It holds no per-request state.
type Service struct {
	store        repository.ConversationStore
	completer    llm.Completer
	systemPrompt string
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithSystemPrompt overrides the system message sent to the provider.
func WithSystemPrompt(prompt string) Option {
	return func(s *Service) {
		if prompt != "" {
			s.systemPrompt = prompt
		}
	}
}

// WithMetrics attaches Prometheus instrumentation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Service.
func New(store repository.ConversationStore, completer llm.Completer, opts ...Option) *Service {
	s := &Service{
		store:        store,
		completer:    completer,
		systemPrompt: llm.DefaultSystemPrompt,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Metrics returns the attached instrumentation, possibly nil.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}
