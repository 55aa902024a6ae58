package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
	"github.com/xiaot623/audrey/internal/domain"
)

// DefaultAPIVersion is the Azure OpenAI REST API version requested.
const DefaultAPIVersion = "2023-05-15"

// AzureConfig addresses an Azure OpenAI deployment.
type AzureConfig struct {
	Endpoint   string
	APIKey     string
	Deployment string
	Model      string
	APIVersion string
	HTTPClient *http.Client
}

// AzureClient calls chat completions on an Azure OpenAI deployment.
type AzureClient struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewAzureClient creates a client for cfg. The model name is mapped onto cfg.Deployment.
func NewAzureClient(cfg AzureConfig, logger *slog.Logger) *AzureClient {
	if logger == nil {
		logger = slog.Default()
	}
	oc := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		oc.APIVersion = cfg.APIVersion
	} else {
		oc.APIVersion = DefaultAPIVersion
	}
	deployment := cfg.Deployment
	oc.AzureModelMapperFunc = func(string) string { return deployment }
	if cfg.HTTPClient != nil {
		oc.HTTPClient = cfg.HTTPClient
	}

	model := cfg.Model
	if model == "" {
		model = deployment
	}
	logger.Info("azure openai configured", slog.String("deployment", deployment), slog.String("api_version", oc.APIVersion))
	return &AzureClient{
		client: openai.NewClientWithConfig(oc),
		model:  model,
		logger: logger,
	}
}

// Complete sends the two-message exchange and returns the first choice's content.
// Any transport or provider failure is a *domain.GatewayError; there is no retry.
func (c *AzureClient) Complete(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		c.logger.Error("chat completion failed", slog.String("error", err.Error()))
		return "", &domain.GatewayError{Message: describe(err), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &domain.GatewayError{Message: "completion provider returned no choices"}
	}
	c.logger.Debug("chat completion received",
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
	)
	return resp.Choices[0].Message.Content, nil
}

func describe(err error) string {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Sprintf("completion provider error (status %d): %s", apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Sprintf("completion provider request failed (status %d): %v", reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Sprintf("completion provider unavailable: %v", err)
}
