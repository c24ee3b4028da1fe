package flow

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/abdulachik/oddsbot/internal/analyst"
	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/composer"
	"github.com/abdulachik/oddsbot/internal/matcher"
)

// MarketMatcher finds the best market for a query.
type MarketMatcher interface {
	Match(ctx context.Context, query string) (*matcher.Selection, error)
}

// Analyzer researches a market and recommends a position.
type Analyzer interface {
	Research(ctx context.Context, market catalog.Market) string
	Recommend(ctx context.Context, query string, market catalog.Market, research string) (analyst.Recommendation, error)
}

// Reply is a fully composed answer to one user query.
type Reply struct {
	Text string

	Market          catalog.Market
	Stance          analyst.Stance
	ConfidencePct   int
	MatchTier       matcher.Tier
	MatchConfidence float64
	Analysis        string
}

// Flow runs the whole per-query pipeline: match a market, research it,
// form a recommendation, and compose the reply text. It holds no
// per-query state; one Flow serves concurrent queries.
type Flow struct {
	matcher MarketMatcher
	analyst Analyzer
	budget  int
}

// Config holds configuration for a Flow.
type Config struct {
	Matcher MarketMatcher
	Analyst Analyzer
	Budget  int // reply character budget (default: composer.DefaultBudget)
}

// New creates a new Flow.
func New(cfg Config) *Flow {
	budget := cfg.Budget
	if budget <= 0 {
		budget = composer.DefaultBudget
	}
	return &Flow{
		matcher: cfg.Matcher,
		analyst: cfg.Analyst,
		budget:  budget,
	}
}

// Answer handles one query end to end. Matching errors pass through
// typed (matcher.ErrNoCandidates, matcher.ErrScoringFailed), as does
// composer.ErrBudgetOverflow; a failed recommendation degrades to HOLD
// at the match confidence instead of failing the query.
func (f *Flow) Answer(ctx context.Context, query string) (*Reply, error) {
	sel, err := f.matcher.Match(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("match market: %w", err)
	}
	market := *sel.Best

	research := f.analyst.Research(ctx, market)

	rec, err := f.analyst.Recommend(ctx, query, market, research)
	if err != nil {
		slog.Warn("recommendation failed, holding", "market", market.ID, "error", err)
		rec = analyst.Recommendation{
			Stance:     analyst.StanceHold,
			Confidence: sel.Confidence,
		}
	}

	pct := int(math.Round(rec.Confidence * 100))

	text, err := composer.Compose(composer.Input{
		Analysis:      rec.Analysis,
		Stance:        string(rec.Stance),
		ConfidencePct: pct,
		URL:           market.URL(),
		Budget:        f.budget,
	})
	if err != nil {
		return nil, fmt.Errorf("compose reply: %w", err)
	}

	return &Reply{
		Text:            text,
		Market:          market,
		Stance:          rec.Stance,
		ConfidencePct:   pct,
		MatchTier:       sel.Tier,
		MatchConfidence: sel.Confidence,
		Analysis:        rec.Analysis,
	}, nil
}
