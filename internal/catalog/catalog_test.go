package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMarkets() []Market {
	end := time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC)
	return []Market{
		{ID: "1", Title: "Will Bitcoin reach $200,000 by December 31, 2025?", Category: "Crypto", Slug: "btc-200k-2025", Active: true, EndDate: end},
		{ID: "2", Title: "Will the Fed cut rates in September?", Category: "Economics", Slug: "fed-september-cut", Active: true, EndDate: end},
		{ID: "3", Title: "Will Ethereum flip Bitcoin?", Category: "Crypto", Slug: "eth-flip", Active: true, EndDate: end},
		{ID: "4", Title: "Closed market", Category: "Crypto", Slug: "closed", Active: false},
		{ID: "5", Title: "Uncategorized market", Category: "", Slug: "misc", Active: true},
	}
}

func TestMemoryCatalog_Search(t *testing.T) {
	c := NewMemoryCatalog(testMarkets())
	ctx := context.Background()

	t.Run("all active", func(t *testing.T) {
		markets, err := c.Search(ctx, nil, 0)
		require.NoError(t, err)
		assert.Len(t, markets, 4)
	})

	t.Run("by category", func(t *testing.T) {
		markets, err := c.Search(ctx, []string{"Crypto"}, 0)
		require.NoError(t, err)
		require.Len(t, markets, 2)
		assert.Equal(t, "1", markets[0].ID)
		assert.Equal(t, "3", markets[1].ID)
	})

	t.Run("category match is case insensitive", func(t *testing.T) {
		markets, err := c.Search(ctx, []string{"crypto"}, 0)
		require.NoError(t, err)
		assert.Len(t, markets, 2)
	})

	t.Run("limit caps results", func(t *testing.T) {
		markets, err := c.Search(ctx, nil, 2)
		require.NoError(t, err)
		assert.Len(t, markets, 2)
	})

	t.Run("inactive markets excluded", func(t *testing.T) {
		markets, err := c.Search(ctx, []string{"Crypto"}, 0)
		require.NoError(t, err)
		for _, m := range markets {
			assert.True(t, m.Active)
		}
	})

	t.Run("order is stable across calls", func(t *testing.T) {
		first, err := c.Search(ctx, nil, 0)
		require.NoError(t, err)
		second, err := c.Search(ctx, nil, 0)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestMemoryCatalog_KnownCategories(t *testing.T) {
	c := NewMemoryCatalog(testMarkets())

	categories, err := c.KnownCategories(context.Background())
	require.NoError(t, err)

	// Deduplicated, sorted, empty labels and inactive markets skipped.
	assert.Equal(t, []string{"Crypto", "Economics"}, categories)
}

func TestMarketURL(t *testing.T) {
	t.Run("slug builds event url", func(t *testing.T) {
		m := Market{Title: "Will Bitcoin reach $200,000?", Slug: "btc-200k-2025"}
		assert.Equal(t, "https://polymarket.com/event/btc-200k-2025", m.URL())
	})

	t.Run("missing slug falls back to search url", func(t *testing.T) {
		m := Market{Title: "Will Bitcoin reach $200,000?"}
		assert.Equal(t,
			"https://polymarket.com/markets?_q=Will+Bitcoin+reach+%24200%2C000%3F",
			m.URL())
	})
}
