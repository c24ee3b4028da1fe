package matcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

func filterCatalog() *catalog.MemoryCatalog {
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	return catalog.NewMemoryCatalog([]catalog.Market{
		{ID: "1", Title: "BTC 200k", Category: "Crypto", Active: true, EndDate: end},
		{ID: "2", Title: "Fed cut", Category: "Economics", Active: true, EndDate: end},
		{ID: "3", Title: "ETH flip", Category: "Crypto", Active: true, EndDate: end},
		{ID: "4", Title: "Election", Category: "Politics", Active: true, EndDate: end},
	})
}

func TestFilterCandidates(t *testing.T) {
	ctx := context.Background()
	cat := filterCatalog()

	t.Run("restricts to selected categories", func(t *testing.T) {
		markets, err := FilterCandidates(ctx, cat, []string{"Crypto"}, 30)
		require.NoError(t, err)
		require.Len(t, markets, 2)
		assert.Equal(t, "1", markets[0].ID)
		assert.Equal(t, "3", markets[1].ID)
	})

	t.Run("empty categories mean everything", func(t *testing.T) {
		markets, err := FilterCandidates(ctx, cat, nil, 30)
		require.NoError(t, err)
		assert.Len(t, markets, 4)
	})

	t.Run("zero-match categories fall back to full set", func(t *testing.T) {
		markets, err := FilterCandidates(ctx, cat, []string{"Sports"}, 30)
		require.NoError(t, err)
		assert.Len(t, markets, 4)
	})

	t.Run("cap applies after filtering", func(t *testing.T) {
		markets, err := FilterCandidates(ctx, cat, nil, 2)
		require.NoError(t, err)
		assert.Len(t, markets, 2)
	})

	t.Run("fallback equals unfiltered search order", func(t *testing.T) {
		viaFallback, err := FilterCandidates(ctx, cat, []string{"Sports"}, 30)
		require.NoError(t, err)
		unfiltered, err := FilterCandidates(ctx, cat, nil, 30)
		require.NoError(t, err)
		assert.Equal(t, unfiltered, viaFallback)
	})
}
