package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Run the full pipeline for a question",
	Long: `Match a question to a market, research it, and print the composed
tweet-sized reply.

Example:
  oddsbot analyze "Will Bitcoin reach $200k in 2025?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForAnalysis(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	slog.Info("analyzing question", "query", query)

	reply, err := newFlow(cfg, store).Answer(ctx, query)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Reply ===")
	fmt.Println(reply.Text)
	fmt.Println()
	fmt.Printf("Market:           %s\n", reply.Market.Title)
	fmt.Printf("Match tier:       %s (%.2f)\n", reply.MatchTier, reply.MatchConfidence)
	fmt.Printf("Stance:           %s (%d%%)\n", reply.Stance, reply.ConfidencePct)

	return nil
}
