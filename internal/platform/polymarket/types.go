package polymarket

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// flexBool unmarshals from JSON bool or string ("true"/"false") so Gamma
// API responses work whether "active" is sent as bool or string.
type flexBool bool

func (f *flexBool) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = flexBool(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*f = flexBool(strings.EqualFold(s, "true") || s == "1")
	return nil
}

// APIMarket represents a market as returned by the Polymarket Gamma API.
type APIMarket struct {
	ID          string   `json:"id"`
	Question    string   `json:"question"`
	Slug        string   `json:"slug"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Active      flexBool `json:"active"` // API may send bool or "true"/"false" string
	Closed      bool     `json:"closed"`
	Volume      string   `json:"volume"`
	EndDate     string   `json:"endDate"`
	EndDateISO  string   `json:"end_date_iso"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

// ToCatalogMarket converts an APIMarket to a catalog.Market. Markets the
// API reports closed come back inactive regardless of the active flag.
func (m *APIMarket) ToCatalogMarket() catalog.Market {
	cm := catalog.Market{
		ID:       m.ID,
		Title:    m.Question,
		Category: m.Category,
		Slug:     m.Slug,
		Active:   bool(m.Active) && !m.Closed,
	}

	if v, err := strconv.ParseFloat(m.Volume, 64); err == nil {
		cm.Volume = v
	}
	if t, ok := parseAPITime(m.EndDate, m.EndDateISO); ok {
		cm.EndDate = t
	}
	if t, err := time.Parse(time.RFC3339, m.CreatedAt); err == nil {
		cm.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339, m.UpdatedAt); err == nil {
		cm.UpdatedAt = t
	}

	return cm
}

// parseAPITime tries the candidate timestamp strings in order, accepting
// RFC 3339 or bare dates.
func parseAPITime(candidates ...string) (time.Time, bool) {
	for _, s := range candidates {
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
		if t, err := time.Parse("2006-01-02", s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
