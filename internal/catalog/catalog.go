package catalog

import (
	"context"
	"sort"
	"strings"
)

// Catalog is the read side of the market collection consumed by the
// matching pipeline.
type Catalog interface {
	// Search returns active markets, optionally restricted to the given
	// categories, capped at limit. Order is deterministic: higher-volume
	// and newer markets first, ties broken by ID.
	Search(ctx context.Context, categories []string, limit int) ([]Market, error)

	// KnownCategories returns the deduplicated category labels of all
	// active markets, sorted.
	KnownCategories(ctx context.Context) ([]string, error)
}

// MemoryCatalog is an in-memory Catalog. It preserves the insertion order
// of markets, which keeps search results reproducible for identical inputs.
// Used by tests and the demo path; production uses the Postgres store.
type MemoryCatalog struct {
	markets []Market
}

// NewMemoryCatalog creates a catalog over the given markets.
func NewMemoryCatalog(markets []Market) *MemoryCatalog {
	ms := make([]Market, len(markets))
	copy(ms, markets)
	return &MemoryCatalog{markets: ms}
}

// Search implements Catalog.
func (c *MemoryCatalog) Search(ctx context.Context, categories []string, limit int) ([]Market, error) {
	want := make(map[string]bool, len(categories))
	for _, cat := range categories {
		want[strings.ToLower(cat)] = true
	}

	var out []Market
	for _, m := range c.markets {
		if !m.Active {
			continue
		}
		if len(want) > 0 && !want[strings.ToLower(m.Category)] {
			continue
		}
		out = append(out, m)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// KnownCategories implements Catalog.
func (c *MemoryCatalog) KnownCategories(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.markets {
		if !m.Active || m.Category == "" {
			continue
		}
		if !seen[m.Category] {
			seen[m.Category] = true
			out = append(out, m.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Size returns the number of markets in the catalog, active or not.
func (c *MemoryCatalog) Size() int {
	return len(c.markets)
}
