package matcher

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// mapScoringService scores markets from a fixed tier map and fails any
// batch containing a market in failIDs. Behavior is keyed off market
// content, not call order, so concurrent chunk completion stays
// deterministic.
type mapScoringService struct {
	tiers   map[string]Tier
	failIDs map[string]bool
	delays  map[string]time.Duration
}

func (s *mapScoringService) ScoreBatch(ctx context.Context, query string, markets []catalog.Market) ([]Score, error) {
	for _, m := range markets {
		if d, ok := s.delays[m.ID]; ok {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		if s.failIDs[m.ID] {
			return nil, errors.New("simulated chunk failure")
		}
	}

	scores := make([]Score, len(markets))
	for i, m := range markets {
		scores[i] = Score{Tier: s.tiers[m.ID], Justification: "scored " + m.ID}
	}
	return scores, nil
}

func nMarkets(n int) []catalog.Market {
	markets := make([]catalog.Market, n)
	for i := range markets {
		markets[i] = catalog.Market{
			ID:    fmt.Sprintf("m%02d", i),
			Title: fmt.Sprintf("Market %d", i),
		}
	}
	return markets
}

func TestBatchScorer_OrderPreserved(t *testing.T) {
	// 25 markets in chunks of 10 gives three uneven chunks. The first
	// chunk is slowed down so later chunks complete first; the flattened
	// output must still follow input order.
	markets := nMarkets(25)
	svc := &mapScoringService{
		tiers:  map[string]Tier{"m07": TierHigh, "m19": TierMedium},
		delays: map[string]time.Duration{"m00": 50 * time.Millisecond},
	}

	scorer := NewBatchScorer(BatchScorerConfig{Service: svc, ChunkSize: 10, Workers: 3})
	scored, failed, total := scorer.Score(context.Background(), "q", markets)

	assert.Equal(t, 0, failed)
	assert.Equal(t, 3, total)
	require.Len(t, scored, len(markets))
	for i, sc := range scored {
		assert.Equal(t, markets[i].ID, sc.Market.ID, "candidate %d out of order", i)
		assert.True(t, sc.Scored)
	}
	assert.Equal(t, TierHigh, scored[7].Tier)
	assert.Equal(t, TierMedium, scored[19].Tier)
}

func TestBatchScorer_FailedChunkDemoted(t *testing.T) {
	// Middle chunk (m10..m19) fails; its candidates must come back LOW
	// and unscored rather than missing.
	markets := nMarkets(30)
	svc := &mapScoringService{
		tiers:   map[string]Tier{"m05": TierHigh},
		failIDs: map[string]bool{"m12": true},
	}

	scorer := NewBatchScorer(BatchScorerConfig{Service: svc, ChunkSize: 10, Workers: 3})
	scored, failed, total := scorer.Score(context.Background(), "q", markets)

	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, total)
	require.Len(t, scored, 30)

	for i := 10; i < 20; i++ {
		assert.Equal(t, TierLow, scored[i].Tier)
		assert.False(t, scored[i].Scored)
		assert.Contains(t, scored[i].Justification, "unscored")
	}
	assert.Equal(t, TierHigh, scored[5].Tier)
	assert.True(t, scored[5].Scored)
}

func TestBatchScorer_AllChunksFail(t *testing.T) {
	markets := nMarkets(12)
	svc := &mapScoringService{failIDs: map[string]bool{"m00": true, "m10": true}}

	scorer := NewBatchScorer(BatchScorerConfig{Service: svc, ChunkSize: 10, Workers: 3})
	scored, failed, total := scorer.Score(context.Background(), "q", markets)

	assert.Equal(t, total, failed)
	require.Len(t, scored, 12)
	for _, sc := range scored {
		assert.False(t, sc.Scored)
	}
}

func TestBatchScorer_CountMismatchIsFailure(t *testing.T) {
	markets := nMarkets(3)
	scorer := NewBatchScorer(BatchScorerConfig{
		Service: scoringServiceFunc(func(ctx context.Context, q string, ms []catalog.Market) ([]Score, error) {
			return []Score{{Tier: TierHigh}}, nil // wrong length
		}),
		ChunkSize: 10,
	})

	scored, failed, total := scorer.Score(context.Background(), "q", markets)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, total)
	require.Len(t, scored, 3)
	for _, sc := range scored {
		assert.False(t, sc.Scored)
	}
}

func TestBatchScorer_HungChunkTimesOut(t *testing.T) {
	markets := nMarkets(2)
	svc := &mapScoringService{delays: map[string]time.Duration{"m00": time.Second}}

	scorer := NewBatchScorer(BatchScorerConfig{
		Service:   svc,
		ChunkSize: 10,
		Timeout:   20 * time.Millisecond,
	})

	start := time.Now()
	scored, failed, _ := scorer.Score(context.Background(), "q", markets)

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Equal(t, 1, failed)
	require.Len(t, scored, 2)
}

func TestBatchScorer_EmptyInput(t *testing.T) {
	scorer := NewBatchScorer(BatchScorerConfig{Service: &mapScoringService{}})
	scored, failed, total := scorer.Score(context.Background(), "q", nil)

	assert.Nil(t, scored)
	assert.Zero(t, failed)
	assert.Zero(t, total)
}

// scoringServiceFunc adapts a function to the ScoringService interface.
type scoringServiceFunc func(ctx context.Context, query string, markets []catalog.Market) ([]Score, error)

func (f scoringServiceFunc) ScoreBatch(ctx context.Context, query string, markets []catalog.Market) ([]Score, error) {
	return f(ctx, query, markets)
}
