package matcher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// BatchScorer partitions candidates into fixed-size chunks and scores them
// concurrently through a bounded worker pool. Chunks are independent: a
// failed or hung chunk demotes only its own candidates.
type BatchScorer struct {
	service   ScoringService
	chunkSize int
	workers   int
	timeout   time.Duration
}

// BatchScorerConfig holds configuration for the batch scorer.
type BatchScorerConfig struct {
	Service   ScoringService
	ChunkSize int           // markets per scoring call (default: 10)
	Workers   int           // concurrent calls (default: 3)
	Timeout   time.Duration // per-chunk deadline (default: 45s)
}

// NewBatchScorer creates a batch scorer.
func NewBatchScorer(cfg BatchScorerConfig) *BatchScorer {
	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 10
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 3
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &BatchScorer{
		service:   cfg.Service,
		chunkSize: chunkSize,
		workers:   workers,
		timeout:   timeout,
	}
}

// Score scores every candidate and returns one ScoredCandidate per input
// market, in input order regardless of chunk completion order. Candidates
// in failed chunks come back demoted to LOW with Scored=false. The counts
// of failed and total chunks are returned so the caller can distinguish
// partial from total failure.
func (b *BatchScorer) Score(ctx context.Context, query string, markets []catalog.Market) ([]ScoredCandidate, int, int) {
	if len(markets) == 0 {
		return nil, 0, 0
	}

	chunks := b.partition(markets)
	results := make([][]ScoredCandidate, len(chunks))
	failed := make([]bool, len(chunks))

	// Workers write only to their own chunk's slot, so results need no
	// locking. Chunk failures are recorded, never propagated: one bad
	// chunk must not cancel its siblings.
	var g errgroup.Group
	g.SetLimit(b.workers)

	for i, chunk := range chunks {
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, b.timeout)
			defer cancel()

			scores, err := b.service.ScoreBatch(cctx, query, chunk)
			if err == nil && len(scores) != len(chunk) {
				err = fmt.Errorf("got %d scores for %d markets", len(scores), len(chunk))
			}
			if err != nil {
				slog.Warn("chunk scoring failed",
					"chunk", i+1,
					"chunks", len(chunks),
					"error", err,
				)
				results[i] = demoteChunk(chunk, err)
				failed[i] = true
				return nil
			}

			scored := make([]ScoredCandidate, len(chunk))
			for j, m := range chunk {
				scored[j] = ScoredCandidate{
					Market:        m,
					Tier:          scores[j].Tier,
					Justification: scores[j].Justification,
					Scored:        true,
				}
			}
			results[i] = scored
			return nil
		})
	}

	// Workers never return errors; Wait is just the fan-in barrier.
	_ = g.Wait()

	// Flatten by chunk index, which restores the original candidate order.
	out := make([]ScoredCandidate, 0, len(markets))
	failedChunks := 0
	for i := range chunks {
		out = append(out, results[i]...)
		if failed[i] {
			failedChunks++
		}
	}

	return out, failedChunks, len(chunks)
}

func (b *BatchScorer) partition(markets []catalog.Market) [][]catalog.Market {
	var chunks [][]catalog.Market
	for i := 0; i < len(markets); i += b.chunkSize {
		end := i + b.chunkSize
		if end > len(markets) {
			end = len(markets)
		}
		chunks = append(chunks, markets[i:end])
	}
	return chunks
}

// demoteChunk turns a failed chunk into placeholder LOW candidates so the
// markets stay present in the output instead of vanishing.
func demoteChunk(chunk []catalog.Market, err error) []ScoredCandidate {
	out := make([]ScoredCandidate, len(chunk))
	for i, m := range chunk {
		out[i] = ScoredCandidate{
			Market:        m,
			Tier:          TierLow,
			Justification: fmt.Sprintf("unscored: %v", err),
			Scored:        false,
		}
	}
	return out
}
