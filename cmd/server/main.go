// File: cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/iyunix/chat-gateway/internal/config"
	"github.com/iyunix/chat-gateway/internal/database"
	"github.com/iyunix/chat-gateway/internal/seed"
	"github.com/iyunix/chat-gateway/internal/services"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat gateway HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root := &cobra.Command{
		Use:           "chat-gateway",
		Short:         "Chat gateway for local and cloud language models",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.AddCommand(serve)
	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Create tables and insert the admin user, categories and default models",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	})
	return root
}

// bootstrap loads configuration and opens a migrated database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	base := services.NewBaseLogger(cfg.Environment, cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	return cfg, base, db, nil
}

func runSeed(ctx context.Context) error {
	cfg, base, db, err := bootstrap()
	if err != nil {
		return err
	}
	data, err := seed.Default()
	if err != nil {
		return err
	}
	_, err = newRepositories(db).seeder(base).Run(ctx, data, seed.AdminCredentials{
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	})
	return err
}

func runServe(ctx context.Context) error {
	cfg, base, db, err := bootstrap()
	if err != nil {
		return err
	}

	// Reference rows are required by guest chat (category 1) and the model
	// table, so a fresh database is seeded before serving.
	data, err := seed.Default()
	if err != nil {
		return err
	}
	if _, err := newRepositories(db).seeder(base).Run(ctx, data, seed.AdminCredentials{
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	}); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	providers, err := defaultProviders(cfg, base)
	if err != nil {
		return fmt.Errorf("configure providers: %w", err)
	}
	handler, err := buildHandler(cfg, base, db, providers)
	if err != nil {
		return err
	}

	port := ":8000"
	if cfg.ServerPort != "" {
		port = ":" + cfg.ServerPort
	}
	srv := &http.Server{
		Addr:              port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cfg.GroqAPIKey == "" {
		base.Warn("GROQ_API_KEY not set; cloud models will be reported unavailable")
	}
	base.WithFields(logrus.Fields{
		"port":   port,
		"db":     cfg.DBDriver,
		"ollama": cfg.OllamaHost,
		"env":    cfg.Environment,
	}).Info("server starting")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server startup failed: %w", err)
		}
		return nil
	case <-stop:
	}

	base.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	base.Info("server stopped gracefully")
	return nil
}
