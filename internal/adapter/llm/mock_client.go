package llm

import (
	"context"
	"fmt"
	"sync"
)

// MockClient is a Completer that answers locally, for development and tests.
type MockClient struct {
	// Reply, when set, is returned for every message.
	Reply string
	// Err, when set, is returned instead of a reply.
	Err error

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records one Complete invocation.
type MockCall struct {
	SystemPrompt string
	UserMessage  string
}

// NewMockClient creates a new mock completion client.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Complete returns the configured reply or error.
func (m *MockClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{SystemPrompt: systemPrompt, UserMessage: userMessage})
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	return fmt.Sprintf("[MOCK] Received your message: %q. This is a mock response.", truncate(userMessage, 100)), nil
}

// Calls returns the invocations seen so far.
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// truncate truncates a string to the given length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
