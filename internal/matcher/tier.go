package matcher

import "strings"

// Tier is a coarse relevance bucket. Raw numeric LLM scores are not
// comparable across calls, so the pipeline ranks on tiers and keeps the
// original candidate order as the tie-break within a tier.
type Tier int

const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

// String returns the tier label as it appears in prompts and responses.
func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "HIGH"
	case TierMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Confidence maps a tier onto the display confidence scale. The values sit
// inside the bands shown to users: HIGH 0.8-0.95, MEDIUM 0.6-0.75, LOW 0.5.
func (t Tier) Confidence() float64 {
	switch t {
	case TierHigh:
		return 0.90
	case TierMedium:
		return 0.68
	default:
		return 0.50
	}
}

// ParseTier parses a tier label. Unknown labels report ok=false and are
// treated by callers as LOW.
func ParseTier(s string) (Tier, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "HIGH":
		return TierHigh, true
	case "MEDIUM", "MED":
		return TierMedium, true
	case "LOW":
		return TierLow, true
	default:
		return TierLow, false
	}
}
