// Package repotest provides conversation stores for tests.
package repotest

import (
	"testing"

	"github.com/xiaot623/audrey/internal/repository"
)

// NewMemoryStore opens an in-memory SQLite store closed at test cleanup.
func NewMemoryStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore("sqlite://")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}
