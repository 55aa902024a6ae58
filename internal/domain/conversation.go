package domain

// RecordHandle addresses a conversation record opened by BeginRecord.
type RecordHandle int64

// ConversationRecord is one persisted (content, response) pair.
// Content is fixed at creation; Response is nil until the completion is written back.
type ConversationRecord struct {
	ID       int64   `json:"id"`
	Content  string  `json:"content"`
	Response *string `json:"response"`
}

// ChatResponse is the body returned by a successful chat request.
type ChatResponse struct {
	Response string `json:"response"`
}

// ChatResult carries the outcome of one pass through the chat pipeline.
type ChatResult struct {
	Handle   RecordHandle
	Response string
	State    ChatState
}
