package matcher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// fakeCompleter returns a canned response or error.
type fakeCompleter struct {
	response string
	err      error
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	return f.response, f.err
}

func scoringMarkets() []catalog.Market {
	return []catalog.Market{
		{ID: "a", Title: "Will Bitcoin reach $200,000 by December 31, 2025?", Category: "Crypto"},
		{ID: "b", Title: "Will the Fed cut rates in September?", Category: "Economics"},
	}
}

func TestLLMScoringService_ScoreBatch(t *testing.T) {
	ctx := context.Background()

	t.Run("parses tiers in input order", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{response: `{
			"scores": [
				{"index": 2, "tier": "LOW", "reason": "different topic"},
				{"index": 1, "tier": "HIGH", "reason": "direct match"}
			]
		}`})

		scores, err := svc.ScoreBatch(ctx, "bitcoin 200k", scoringMarkets())
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.Equal(t, TierHigh, scores[0].Tier)
		assert.Equal(t, "direct match", scores[0].Justification)
		assert.Equal(t, TierLow, scores[1].Tier)
	})

	t.Run("tolerates prose around the json", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{response: `Here are the scores:
{"scores": [{"index": 1, "tier": "MEDIUM", "reason": "related"}, {"index": 2, "tier": "LOW", "reason": "no"}]}
Hope this helps!`})

		scores, err := svc.ScoreBatch(ctx, "q", scoringMarkets())
		require.NoError(t, err)
		assert.Equal(t, TierMedium, scores[0].Tier)
	})

	t.Run("unknown tier label demotes to low", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{response: `{
			"scores": [
				{"index": 1, "tier": "MAYBE", "reason": "?"},
				{"index": 2, "tier": "LOW", "reason": "no"}
			]
		}`})

		scores, err := svc.ScoreBatch(ctx, "q", scoringMarkets())
		require.NoError(t, err)
		assert.Equal(t, TierLow, scores[0].Tier)
	})

	t.Run("missing market fails the batch", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{response: `{
			"scores": [{"index": 1, "tier": "HIGH", "reason": "match"}]
		}`})

		_, err := svc.ScoreBatch(ctx, "q", scoringMarkets())
		assert.ErrorContains(t, err, "no score returned for market 2")
	})

	t.Run("out of range index fails the batch", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{response: `{
			"scores": [
				{"index": 1, "tier": "HIGH", "reason": "match"},
				{"index": 7, "tier": "LOW", "reason": "?"}
			]
		}`})

		_, err := svc.ScoreBatch(ctx, "q", scoringMarkets())
		assert.ErrorContains(t, err, "out of range")
	})

	t.Run("completion error propagates", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{err: errors.New("timeout")})
		_, err := svc.ScoreBatch(ctx, "q", scoringMarkets())
		assert.ErrorContains(t, err, "timeout")
	})

	t.Run("empty batch is a no-op", func(t *testing.T) {
		svc := NewLLMScoringService(&fakeCompleter{})
		scores, err := svc.ScoreBatch(ctx, "q", nil)
		require.NoError(t, err)
		assert.Nil(t, scores)
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean json", `{"key": "value"}`, `{"key": "value"}`},
		{"with preamble", "Result:\n" + `{"key": "value"}`, `{"key": "value"}`},
		{"with suffix", `{"key": "value"}` + "\nDone.", `{"key": "value"}`},
		{"nested", `{"outer": {"inner": 1}}`, `{"outer": {"inner": 1}}`},
		{"no json", "plain text", ""},
		{"unbalanced", `{"key": "value"`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}
