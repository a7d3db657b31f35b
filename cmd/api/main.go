// Command api serves the Finance Tracker HTTP API and runs the email worker.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finance-tracker/platform/config"
	"github.com/finance-tracker/platform/internal/domain/password"
	"github.com/finance-tracker/platform/internal/infra/db"
	"github.com/finance-tracker/platform/internal/infra/dependency"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Server.LogLevel),
	})))

	if err := run(cfg); err != nil {
		var configErr *password.ConfigError
		if errors.As(err, &configErr) {
			slog.Error("Invalid password validator configuration", "validator", configErr.Name, "error", configErr.Err)
		} else {
			slog.Error("Server stopped", "error", err)
		}
		os.Exit(1)
	}
	slog.Info("Server exited properly")
}

func run(cfg *config.Config) error {
	slog.Info("Starting Finance Tracker API",
		"environment", cfg.Server.Environment,
		"database", cfg.Database.Driver,
		"rate_limit_backend", cfg.RateLimit.Backend,
	)

	descriptors, err := config.LoadPasswordDescriptors(cfg.Password)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(database); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()
	if err := db.Migrate(database); err != nil {
		return err
	}

	opts := dependency.Options{Descriptors: descriptors}
	if cfg.RateLimit.Backend == "redis" {
		client, err := db.NewRedisClient(ctx, &cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		opts.Redis = client
	}

	injector, err := dependency.NewInjector(cfg, database, opts)
	if err != nil {
		return err
	}
	if cfg.Email.WorkerEnabled {
		go injector.Worker.Run(ctx)
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      injector.Router.Setup(cfg.Server.Environment),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func logLevel(name string) slog.Level {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
