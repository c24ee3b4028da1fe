package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
	"github.com/abdulachik/oddsbot/internal/platform/polymarket"
)

var syncMaxMarkets int

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the market catalog from the Gamma API",
	Long: `Fetch active markets from the Polymarket Gamma API and upsert them
into the catalog database, then deactivate markets past their end date.`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncMaxMarkets, "max", 0, "maximum markets to fetch (0 = all)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForSync(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}

	slog.Info("fetching markets", "base_url", cfg.GammaBaseURL)

	client := polymarket.NewGammaClient(cfg.GammaBaseURL)
	markets, err := client.FetchActiveMarkets(ctx, 100, syncMaxMarkets)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	slog.Info("upserting markets", "count", len(markets))
	if err := store.UpsertBatch(ctx, markets); err != nil {
		return fmt.Errorf("upsert markets: %w", err)
	}

	expired, err := store.DeactivateExpired(ctx)
	if err != nil {
		return fmt.Errorf("deactivate expired: %w", err)
	}

	active, err := store.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("count active: %w", err)
	}

	fmt.Printf("Synced %d markets (%d deactivated, %d active)\n",
		len(markets), expired, active)

	return nil
}
