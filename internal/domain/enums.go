// Package domain defines the core domain models for the chat backend.
package domain

// ChatState is a step of the chat request pipeline.
type ChatState string

const (
	ChatStateUnauthenticated     ChatState = "UNAUTHENTICATED"
	ChatStateAuthenticated       ChatState = "AUTHENTICATED"
	ChatStateRecordOpened        ChatState = "RECORD_OPENED"
	ChatStateCompletionRequested ChatState = "COMPLETION_REQUESTED"
	ChatStateRecordClosed        ChatState = "RECORD_CLOSED"
	ChatStateResponded           ChatState = "RESPONDED"
	ChatStateFailed              ChatState = "FAILED"
)

// ChatOutcome classifies how a chat request terminated.
type ChatOutcome string

const (
	ChatOutcomeResponded      ChatOutcome = "responded"
	ChatOutcomeAuthFailed     ChatOutcome = "auth_failed"
	ChatOutcomeInvalidRequest ChatOutcome = "invalid_request"
	ChatOutcomeStorageFailed  ChatOutcome = "storage_failed"
	ChatOutcomeGatewayFailed  ChatOutcome = "gateway_failed"
	ChatOutcomeInternalError  ChatOutcome = "internal_error"
)

// Chat roles sent to the completion provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)
