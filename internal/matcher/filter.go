package matcher

import (
	"context"
	"fmt"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// FilterCandidates restricts the catalog to the selected categories, capped
// at limit. An empty category list means "search everything". A category
// filter that matches zero active markets also falls back to the full
// active set — returning no candidates because the category guess was too
// narrow would be worse than scoring a broader pool.
func FilterCandidates(ctx context.Context, cat catalog.Catalog, categories []string, limit int) ([]catalog.Market, error) {
	markets, err := cat.Search(ctx, categories, limit)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	if len(markets) == 0 && len(categories) > 0 {
		markets, err = cat.Search(ctx, nil, limit)
		if err != nil {
			return nil, fmt.Errorf("catalog fallback search: %w", err)
		}
	}

	return markets, nil
}
