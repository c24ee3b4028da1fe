package catalog

import (
	"net/url"
	"time"
)

const (
	// EventURLBase is the public URL prefix for a market page.
	EventURLBase = "https://polymarket.com/event/"

	// SearchURLBase is the public market search page, used as a fallback
	// when a market has no slug.
	SearchURLBase = "https://polymarket.com/markets?_q="
)

// Market is a single prediction market as stored in the catalog.
// The matching pipeline only ever reads markets; writes happen through
// the sync command.
type Market struct {
	ID        string
	Title     string
	Category  string
	Slug      string
	EndDate   time.Time
	Active    bool
	Volume    float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// URL returns the public market URL. Markets with a slug get their event
// page; markets without one fall back to a search URL built from the title.
// The slug is passed through as supplied — never derived from the title.
func (m Market) URL() string {
	if m.Slug != "" {
		return EventURLBase + m.Slug
	}
	return SearchURLBase + url.QueryEscape(m.Title)
}
