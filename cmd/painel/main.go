package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"cartorios/internal/backend"
	"cartorios/internal/config"
	"cartorios/internal/dashboard"
	apphttp "cartorios/internal/http"
	applog "cartorios/internal/log"
)

func main() {
	// Local development reads a .env file; in production the variables
	// come from the environment directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		// A malformed .env is worth knowing about before config parsing.
		os.Stderr.WriteString("warning: could not load .env: " + err.Error() + "\n")
	}

	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srcs, err := backend.NewFactory(logger.Logger).Create(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize source backend",
			applog.FieldError, err,
			applog.FieldBackend, cfg.SourceBackend)
		os.Exit(1)
	}

	svc := dashboard.NewService(dashboard.NewLoader(srcs.Registry, srcs.Collections))
	srv := apphttp.NewServer(":"+cfg.Port, svc, cfg.SeriesCacheSize, cfg.SeriesCacheTTL)

	srv.ReadTimeout = 10 * time.Second
	// Chart rendering can take longer than the JSON endpoints.
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting painel server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.SourceBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
