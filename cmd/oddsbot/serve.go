package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
	"github.com/abdulachik/oddsbot/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API daemon",
	Long: `Run the OddsBot HTTP API: POST /analyze answers questions with a
composed reply, GET /health reports component health.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForServe(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	srv := server.New(server.Config{
		Flow:    newFlow(cfg, store),
		Limiter: server.NewUserLimiter(cfg.RateInterval, cfg.RateBurst),
	})

	checkCatalog(ctx, store, srv.Health())

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("starting HTTP API",
		"addr", cfg.ListenAddr,
		"rate_interval", cfg.RateInterval,
		"char_budget", cfg.CharBudget,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				checkCatalog(gctx, store, srv.Health())
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// checkCatalog probes the catalog and records the result in the health
// tracker.
func checkCatalog(ctx context.Context, store *catalog.Store, health *server.Health) {
	count, err := store.CountActive(ctx)
	if err != nil {
		health.SetUnhealthy("catalog", err)
		slog.Warn("catalog health check failed", "error", err)
		return
	}
	health.SetHealthy("catalog", fmt.Sprintf("%d active markets", count))
}
