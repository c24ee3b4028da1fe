package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show catalog statistics",
	Long:  `Display active market counts overall and by category.`,
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	active, err := store.CountActive(ctx)
	if err != nil {
		return fmt.Errorf("count active: %w", err)
	}

	byCategory, err := store.CategoryCounts(ctx)
	if err != nil {
		return fmt.Errorf("count by category: %w", err)
	}

	fmt.Println("=== Catalog Statistics ===")
	fmt.Printf("Active markets: %d\n", active)
	fmt.Println()
	fmt.Println("By category:")

	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	for _, c := range categories {
		fmt.Printf("  %-20s %d\n", c, byCategory[c])
	}

	return nil
}
