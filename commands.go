package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xiaot623/audrey/internal/config"
	"github.com/xiaot623/audrey/internal/repository"
)

func newRootCmd() *cobra.Command {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "audrey",
		Short:        "Chat backend that relays messages to an Azure OpenAI deployment",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile,
		"dotenv file read before the process environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API; POST /api/chat requires an Entra ID bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, true, cmd.ErrOrStderr())
		},
	}
	serveOpenCmd := &cobra.Command{
		Use:   "serve-open",
		Short: "Serve the API without authentication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile, false, cmd.ErrOrStderr())
		},
	}
	messagesCmd := &cobra.Command{
		Use:   "messages",
		Short: "Print the stored conversation log as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMessages(cmd.Context(), envFile, cmd.OutOrStdout())
		},
	}

	rootCmd.AddCommand(serveCmd, serveOpenCmd, messagesCmd)
	return rootCmd
}

func runServe(ctx context.Context, envFile string, requireAuth bool, logOut io.Writer) error {
	cfg, err := config.LoadAndValidate(envFile, requireAuth)
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, requireAuth, logOut)
	if err != nil {
		return err
	}
	defer a.Close()

	a.logger.Info("starting audrey",
		slog.String("address", cfg.Address()),
		slog.Bool("auth_required", requireAuth),
		slog.Bool("mock_mode", cfg.MockMode()),
		slog.String("deployment", cfg.OpenAIDeployment),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(cfg.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case <-sigCtx.Done():
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	a.logger.Info("shutting down audrey")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("failed to shutdown server gracefully", slog.String("error", err.Error()))
	}

	a.logger.Info("audrey stopped")
	return nil
}

func runMessages(ctx context.Context, envFile string, out io.Writer) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if cfg.DatabaseURL == "" {
		return &config.ValidationError{Errors: []string{(&config.MissingKeyError{Key: config.KeyDatabaseURL}).Error()}}
	}

	store, err := repository.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListAll(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
