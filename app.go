package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/xiaot623/audrey/internal/adapter/llm"
	"github.com/xiaot623/audrey/internal/auth"
	"github.com/xiaot623/audrey/internal/config"
	"github.com/xiaot623/audrey/internal/logging"
	"github.com/xiaot623/audrey/internal/metrics"
	"github.com/xiaot623/audrey/internal/policy"
	"github.com/xiaot623/audrey/internal/repository"
	"github.com/xiaot623/audrey/internal/service"
	transport "github.com/xiaot623/audrey/internal/transport/http"
	"github.com/xiaot623/audrey/internal/transport/http/api"
)

const keyDiscoveryTimeout = 10 * time.Second

// app is the wired process: store, service and HTTP server.
type app struct {
	logger *slog.Logger
	store  *repository.SQLiteStore
	server *echo.Echo
}

func newApp(ctx context.Context, cfg *config.Config, requireAuth bool, logOut io.Writer) (*app, error) {
	logger := logging.New(logOut, cfg.LogLevel, cfg.LogFormat)

	// Initialize store
	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Initialize completion client
	completer := llm.NewCompleter(cfg.Mode, llm.AzureConfig{
		Endpoint:   cfg.OpenAIEndpoint,
		APIKey:     cfg.OpenAIAPIKey,
		Deployment: cfg.OpenAIDeployment,
		Model:      cfg.OpenAIModel,
		APIVersion: cfg.OpenAIAPIVersion,
	}, logger)

	svc := service.New(store, completer,
		service.WithSystemPrompt(cfg.SystemPrompt),
		service.WithMetrics(metrics.New(reg)),
		service.WithLogger(logger),
	)

	var validator api.TokenValidator
	if requireAuth {
		engine, err := policy.NewScopeEngine(ctx)
		if err != nil {
			store.Close()
			return nil, err
		}
		authCfg := auth.Config{
			TenantID:      cfg.TenantID,
			ClientID:      cfg.APIClientID,
			AuthorityHost: cfg.AuthorityHost,
			RequiredScope: cfg.RequiredScope,
		}
		keys := auth.NewJWKSKeySource(authCfg.JWKSURL(), &http.Client{Timeout: keyDiscoveryTimeout})
		validator = auth.NewValidator(authCfg, keys, engine, logger)
	}

	server := transport.NewServer(transport.Options{
		Service:        svc,
		Validator:      validator,
		AllowedOrigins: cfg.AllowedOrigins,
		Gatherer:       reg,
		Logger:         logger,
	})

	return &app{logger: logger, store: store, server: server}, nil
}

// Close releases the store.
func (a *app) Close() error {
	return a.store.Close()
}
