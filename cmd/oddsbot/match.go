package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
)

var matchCmd = &cobra.Command{
	Use:   "match [question]",
	Short: "Find the best market for a question",
	Long: `Run market matching for a question and print the selected market
with its relevance tier and confidence, without research or analysis.

Example:
  oddsbot match "Will Bitcoin reach $200k in 2025?"`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	query := args[0]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := cfg.ValidateForMatching(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	store, err := catalog.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer store.Close()

	slog.Info("matching question", "query", query)

	m := newMatcher(cfg, store, newAnalyzerClient(cfg))
	sel, err := m.Match(ctx, query)
	if err != nil {
		return fmt.Errorf("match: %w", err)
	}

	fmt.Println()
	fmt.Println("=== Matched Market ===")
	fmt.Printf("Market:     %s\n", sel.Best.Title)
	fmt.Printf("Category:   %s\n", sel.Best.Category)
	fmt.Printf("Tier:       %s\n", sel.Tier)
	fmt.Printf("Confidence: %.2f\n", sel.Confidence)
	fmt.Printf("URL:        %s\n", sel.Best.URL())

	fmt.Println()
	fmt.Println("Candidates:")
	for _, c := range sel.Candidates {
		marker := " "
		if !c.Scored {
			marker = "?"
		}
		fmt.Printf("  [%s]%s %s\n", c.Tier, marker, c.Market.Title)
	}

	return nil
}
