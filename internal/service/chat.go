package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/xiaot623/audrey/internal/domain"
)

// Chat persists message, asks the completion provider for a reply and persists the reply.
//
// A failed BeginRecord stops before the provider is called. A failed completion leaves
// the opened record with no response. A failed CompleteRecord is still an error even
// though the returned result carries the generated text.
func (s *Service) Chat(ctx context.Context, user domain.UserIdentity, message string) (*domain.ChatResult, error) {
	result := &domain.ChatResult{State: domain.ChatStateAuthenticated}
	logger := s.logger.With(slog.String("user_id", user.ID))

	handle, err := s.store.BeginRecord(ctx, message)
	if err != nil {
		result.State = domain.ChatStateFailed
		return result, asStorageError("begin_record", err)
	}
	result.Handle = handle
	result.State = domain.ChatStateRecordOpened

	start := time.Now()
	text, err := s.completer.Complete(ctx, s.systemPrompt, message)
	s.metrics.ObserveCompletion(time.Since(start))
	if err != nil {
		logger.Warn("completion failed, record left open",
			slog.Int64("record_id", int64(handle)),
			slog.String("error", err.Error()),
		)
		result.State = domain.ChatStateFailed
		return result, asGatewayError(err)
	}
	result.Response = text
	result.State = domain.ChatStateCompletionRequested

	if err := s.store.CompleteRecord(ctx, handle, text); err != nil {
		logger.Error("failed to store completion",
			slog.Int64("record_id", int64(handle)),
			slog.String("error", err.Error()),
		)
		result.State = domain.ChatStateFailed
		return result, asStorageError("complete_record", err)
	}
	result.State = domain.ChatStateRecordClosed

	logger.Debug("chat record closed", slog.Int64("record_id", int64(handle)))
	result.State = domain.ChatStateResponded
	return result, nil
}

func asStorageError(op string, err error) error {
	var se *domain.StorageError
	if errors.As(err, &se) {
		return err
	}
	return &domain.StorageError{Op: op, Err: err}
}

func asGatewayError(err error) error {
	var ge *domain.GatewayError
	if errors.As(err, &ge) {
		return err
	}
	return &domain.GatewayError{Message: err.Error(), Err: err}
}
