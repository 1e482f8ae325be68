package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/regpulse-io/regpulse/internal/notify"
	"github.com/regpulse-io/regpulse/internal/searchcache"
	"github.com/regpulse-io/regpulse/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the regpulse admin HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx := context.Background()
	st, err := newStore(ctx, cfg)
	if err != nil {
		return err
	}

	bc, err := newBackend(cfg)
	if err != nil {
		st.Close()
		return fmt.Errorf("creating backend client: %w", err)
	}

	logger := slog.Default()

	notifier, err := notify.NewDispatcher(cfg.Notify, logger)
	if err != nil {
		st.Close()
		return fmt.Errorf("creating notice dispatcher: %w", err)
	}

	cacheOpts := []searchcache.Option{
		searchcache.WithTTL(cfg.CacheTTL()),
		searchcache.WithLogger(logger),
	}
	if cfg.Cache != nil {
		cacheOpts = append(cacheOpts, searchcache.WithLimits(cfg.Cache.MaxKeyLen, cfg.Cache.MaxQueryLen))
	}
	cache := searchcache.New(st, cacheOpts...)

	var apiKey string
	var maxBody int64
	if cfg.Server != nil {
		apiKey = cfg.Server.APIKey
		maxBody = cfg.Server.MaxRequestBody
	}
	srv := server.New(cfg.Addr(), st, bc, cache, notifier, apiKey, maxBody)

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	cleanup := func() {
		if err := notifier.Close(); err != nil {
			logger.Warn("closing notice sinks", "error", err)
		}
		st.Close()
	}

	select {
	case err := <-errCh:
		cleanup()
		return err
	case sig := <-sigCh:
		color.Yellow("\nReceived %s, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			cleanup()
			return fmt.Errorf("server shutdown: %w", err)
		}
		cleanup()
		color.Green("Server stopped gracefully")
		return nil
	}
}
