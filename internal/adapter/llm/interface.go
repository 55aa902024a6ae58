// Package llm provides the completion gateway to the hosted chat-completion provider.
package llm

import "context"

// DefaultSystemPrompt is the fixed system message sent with every request.
const DefaultSystemPrompt = "You are a helpful assistant."

// Completer performs one chat completion: a system message and a user message, no history.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Ensure the implementations satisfy Completer.
var (
	_ Completer = (*AzureClient)(nil)
	_ Completer = (*MockClient)(nil)
)
