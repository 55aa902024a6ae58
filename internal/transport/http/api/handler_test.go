package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xiaot623/audrey/internal/adapter/llm"
	"github.com/xiaot623/audrey/internal/domain"
	"github.com/xiaot623/audrey/internal/repository"
	"github.com/xiaot623/audrey/internal/repository/repotest"
	"github.com/xiaot623/audrey/internal/service"
)

type stubValidator struct {
	claims *domain.ClaimSet
	err    error
	got    []string
}

func (s *stubValidator) Validate(_ context.Context, credential string) (*domain.ClaimSet, error) {
	s.got = append(s.got, credential)
	return s.claims, s.err
}

func newTestHandler(t *testing.T, validator TokenValidator, completer llm.Completer) (*Handler, *repository.SQLiteStore) {
	t.Helper()
	store := repotest.NewMemoryStore(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store, completer, service.WithLogger(logger))
	return NewHandler(svc, validator, logger), store
}

func chatRequest(t *testing.T, target, authorization string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.SetPath("/api/chat")
	return c, rec
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestRoot(t *testing.T) {
	h, _ := newTestHandler(t, nil, llm.NewMockClient())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, h.Root(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Welcome to Audrey AI API"}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t, nil, llm.NewMockClient())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)
	require.NoError(t, h.Health(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"healthy"`)
}

func TestChatAuthenticated(t *testing.T) {
	v := &stubValidator{claims: &domain.ClaimSet{Subject: "o1", Scopes: []string{"access_as_user"}}}
	h, store := newTestHandler(t, v, &llm.MockClient{Reply: "hi there"})

	c, rec := chatRequest(t, "/api/chat?message=hello", "Bearer abc.def.ghi")
	require.NoError(t, h.Chat(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"response":"hi there"}`, rec.Body.String())
	assert.Equal(t, []string{"abc.def.ghi"}, v.got)

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "hello", records[0].Content)
}

func TestChatWithoutCredential(t *testing.T) {
	v := &stubValidator{}
	mock := &llm.MockClient{Reply: "unused"}
	h, _ := newTestHandler(t, v, mock)

	c, rec := chatRequest(t, "/api/chat?message=hello", "")
	require.NoError(t, h.Chat(c))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Not authenticated", decodeDetail(t, rec))
	assert.Equal(t, "Bearer", rec.Header().Get(echo.HeaderWWWAuthenticate))
	assert.Empty(t, v.got)
	assert.Empty(t, mock.Calls())
}

func TestChatForbidden(t *testing.T) {
	v := &stubValidator{err: domain.NewForbidden("Token does not have required scope")}
	h, store := newTestHandler(t, v, &llm.MockClient{Reply: "unused"})

	c, rec := chatRequest(t, "/api/chat?message=hello", "Bearer abc")
	require.NoError(t, h.Chat(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Token does not have required scope", decodeDetail(t, rec))
	assert.Empty(t, rec.Header().Get(echo.HeaderWWWAuthenticate))

	records, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestChatMissingMessage(t *testing.T) {
	h, _ := newTestHandler(t, nil, llm.NewMockClient())

	c, rec := chatRequest(t, "/api/chat", "")
	require.NoError(t, h.Chat(c))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestChatEmptyMessageIsAccepted(t *testing.T) {
	mock := &llm.MockClient{Reply: "ok"}
	h, _ := newTestHandler(t, nil, mock)

	c, rec := chatRequest(t, "/api/chat?message=", "")
	require.NoError(t, h.Chat(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, mock.Calls(), 1)
	assert.Equal(t, "", mock.Calls()[0].UserMessage)
}

func TestChatGatewayFailure(t *testing.T) {
	h, _ := newTestHandler(t, nil, &llm.MockClient{Err: &domain.GatewayError{Message: "rate limited"}})

	c, rec := chatRequest(t, "/api/chat?message=hello", "")
	require.NoError(t, h.Chat(c))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "rate limited", decodeDetail(t, rec))
}

func TestListMessagesEmpty(t *testing.T) {
	h, _ := newTestHandler(t, nil, llm.NewMockClient())

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/api/messages", nil), rec)
	require.NoError(t, h.ListMessages(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		detail  string
		outcome domain.ChatOutcome
	}{
		{"unauthorized", domain.NewUnauthorized("Invalid token: bad", nil), http.StatusUnauthorized, "Invalid token: bad", domain.ChatOutcomeAuthFailed},
		{"forbidden", domain.NewForbidden("nope"), http.StatusForbidden, "nope", domain.ChatOutcomeAuthFailed},
		{"invalid", &domain.InvalidRequestError{Field: "message", Message: "required"}, http.StatusUnprocessableEntity, "required", domain.ChatOutcomeInvalidRequest},
		{"storage", &domain.StorageError{Op: "list_all", Err: errors.New("locked")}, http.StatusInternalServerError, "storage list_all failed: locked", domain.ChatOutcomeStorageFailed},
		{"gateway", &domain.GatewayError{Message: "timeout"}, http.StatusInternalServerError, "timeout", domain.ChatOutcomeGatewayFailed},
		{"other", errors.New("boom"), http.StatusInternalServerError, "boom", domain.ChatOutcomeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := classify(tt.err)
			assert.Equal(t, tt.status, f.status)
			assert.Equal(t, tt.detail, f.detail)
			assert.Equal(t, tt.outcome, f.outcome)
		})
	}
}

func TestErrorHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handle := ErrorHandler(logger)

	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/nope", nil), rec)
	handle(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"detail":"Not Found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	handle(errors.New("secret internals"), c)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":"Internal Server Error"}`, rec.Body.String())
}
