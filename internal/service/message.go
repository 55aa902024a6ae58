package service

import (
	"context"

	"github.com/xiaot623/audrey/internal/domain"
)

// ListMessages returns the whole conversation log ordered by id.
func (s *Service) ListMessages(ctx context.Context) ([]domain.ConversationRecord, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, asStorageError("list_all", err)
	}
	s.metrics.ObserveListing(len(records))
	return records, nil
}
