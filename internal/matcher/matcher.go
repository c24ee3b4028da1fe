package matcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

var (
	// ErrNoCandidates means the catalog had no active markets for the
	// query, even after dropping the category filter.
	ErrNoCandidates = errors.New("no candidate markets found")

	// ErrScoringFailed means every scoring chunk failed, so no candidate
	// carries a real score.
	ErrScoringFailed = errors.New("relevance scoring failed for all candidates")
)

// ScoredCandidate is one market with its relevance tier for a query.
type ScoredCandidate struct {
	Market        catalog.Market
	Tier          Tier
	Justification string

	// Scored is false when the candidate's chunk failed and the tier is a
	// demoted placeholder rather than a real score.
	Scored bool
}

// Selection is the outcome of matching one query against the catalog.
type Selection struct {
	Best       *catalog.Market
	Tier       Tier
	Confidence float64
	Reasoning  string
	Candidates []ScoredCandidate
}

// Matcher narrows the market catalog down to the single best match for a
// free-text query: category selection, candidate filtering, batched
// relevance scoring, then tier-ranked selection.
type Matcher struct {
	catalog    catalog.Catalog
	categories CategoryService
	scorer     *BatchScorer

	maxCandidates int
}

// Config holds configuration for the matcher.
type Config struct {
	Catalog    catalog.Catalog
	Categories CategoryService
	Scoring    ScoringService

	MaxCandidates int           // candidate cap after filtering (default: 30)
	ChunkSize     int           // markets per scoring call (default: 10)
	MaxWorkers    int           // concurrent scoring calls (default: 3)
	ScoreTimeout  time.Duration // per-chunk deadline (default: 45s)
}

// New creates a new Matcher.
func New(cfg Config) *Matcher {
	maxCandidates := cfg.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = 30
	}

	return &Matcher{
		catalog:    cfg.Catalog,
		categories: cfg.Categories,
		scorer: NewBatchScorer(BatchScorerConfig{
			Service:   cfg.Scoring,
			ChunkSize: cfg.ChunkSize,
			Workers:   cfg.MaxWorkers,
			Timeout:   cfg.ScoreTimeout,
		}),
		maxCandidates: maxCandidates,
	}
}

// Match runs the full matching pipeline for one query. It always returns a
// market when at least one candidate was scored; only total failures
// surface as ErrNoCandidates or ErrScoringFailed.
func (m *Matcher) Match(ctx context.Context, query string) (*Selection, error) {
	known, err := m.catalog.KnownCategories(ctx)
	if err != nil {
		// Category metadata only narrows the search; proceed unfiltered
		// rather than failing the query.
		slog.Warn("known categories unavailable", "error", err)
		known = nil
	}

	catResult := SelectCategories(ctx, m.categories, query, known)
	if catResult.FellBack {
		slog.Debug("category selection fell back", "reason", catResult.Reason)
	} else {
		slog.Debug("categories selected", "query", query, "categories", catResult.Labels)
	}

	candidates, err := FilterCandidates(ctx, m.catalog, catResult.Labels, m.maxCandidates)
	if err != nil {
		return nil, fmt.Errorf("filter candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	slog.Debug("scoring candidates", "count", len(candidates))

	scored, failedChunks, totalChunks := m.scorer.Score(ctx, query, candidates)
	if failedChunks == totalChunks {
		return nil, ErrScoringFailed
	}
	if failedChunks > 0 {
		slog.Warn("partial scoring failure",
			"failed_chunks", failedChunks,
			"total_chunks", totalChunks,
		)
	}

	sel := SelectBest(scored)
	if sel == nil {
		return nil, ErrNoCandidates
	}

	slog.Info("market matched",
		"query", query,
		"market", sel.Best.Title,
		"tier", sel.Tier.String(),
		"confidence", sel.Confidence,
	)

	return sel, nil
}
