package llm

import (
	"log/slog"
	"os"
	"strings"
)

const (
	// EnvMode is the environment variable name for mode selection.
	EnvMode = "AUDREY_MODE"
	// ModeMock indicates mock mode should be used.
	ModeMock = "MOCK"
)

// NewCompleter returns a MockClient when mode is MOCK (any case), otherwise an AzureClient.
// An empty mode falls back to the AUDREY_MODE environment variable.
func NewCompleter(mode string, cfg AzureConfig, logger *slog.Logger) Completer {
	if mode == "" {
		mode = os.Getenv(EnvMode)
	}
	if strings.EqualFold(mode, ModeMock) {
		if logger != nil {
			logger.Warn("AUDREY_MODE=MOCK detected, using mock completion client")
		}
		return NewMockClient()
	}
	return NewAzureClient(cfg, logger)
}
