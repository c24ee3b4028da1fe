package composer

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultBudget is the maximum character count for a Twitter reply.
	DefaultBudget = 280

	minConfidencePct = 50
	maxConfidencePct = 95
)

// ErrBudgetOverflow means the stance line and market URL alone do not
// fit in the character budget. There is nothing left to truncate, so
// the reply cannot be composed at all.
var ErrBudgetOverflow = errors.New("stance line and URL exceed character budget")

// Input is everything a reply is built from. The stance line and URL
// are fixed fields: they always appear verbatim, and only the analysis
// text shrinks to fit.
type Input struct {
	Analysis      string
	Stance        string // e.g. "BUY_YES", "HOLD"
	ConfidencePct int    // clamped to [50, 95]
	URL           string
	Budget        int // runes; defaults to DefaultBudget
}

// Compose builds the reply text:
//
//	<analysis>
//
//	BUY YES (87%)
//	https://polymarket.com/event/...
//
// The analysis is truncated to fit the budget, preferring a sentence
// boundary, then a word boundary, then a hard cut. Budgets are counted
// in runes, matching how Twitter counts most characters.
func Compose(in Input) (string, error) {
	budget := in.Budget
	if budget <= 0 {
		budget = DefaultBudget
	}

	fixed := StanceLine(in.Stance, in.ConfidencePct) + "\n" + in.URL
	fixedLen := utf8.RuneCountInString(fixed)
	if fixedLen > budget {
		return "", fmt.Errorf("%w: need %d runes, have %d", ErrBudgetOverflow, fixedLen, budget)
	}

	// Two newlines separate the analysis from the fixed block.
	available := budget - fixedLen - 2
	analysis := truncate(strings.TrimSpace(in.Analysis), available)
	if analysis == "" {
		return fixed, nil
	}

	return analysis + "\n\n" + fixed, nil
}

// StanceLine renders a stance like "BUY_YES" with its confidence as
// "BUY YES (87%)". Confidence is clamped to [50, 95]: below 50% the
// stance would contradict itself, and above 95% it would overstate
// what market matching can know.
func StanceLine(stance string, pct int) string {
	if pct < minConfidencePct {
		pct = minConfidencePct
	}
	if pct > maxConfidencePct {
		pct = maxConfidencePct
	}
	label := strings.ToUpper(strings.ReplaceAll(stance, "_", " "))
	return fmt.Sprintf("%s (%d%%)", label, pct)
}

// truncate shortens text to at most max runes. It prefers cutting at
// the last sentence end that fits, then at a word boundary with an
// ellipsis, then mid-word as a last resort.
func truncate(text string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(text) <= max {
		return text
	}

	runes := []rune(text)
	cut := string(runes[:max])

	if s := lastSentenceEnd(cut); s > 0 {
		return strings.TrimSpace(cut[:s])
	}
	if max < 4 {
		return cut
	}

	// No sentence fits; back up to a word boundary if one exists in the
	// second half, like the quote formatter does, so we never emit a
	// lone word fragment.
	withEllipsis := string(runes[:max-3])
	if lastSpace := strings.LastIndex(withEllipsis, " "); lastSpace > len(withEllipsis)/2 {
		withEllipsis = withEllipsis[:lastSpace]
	}
	return strings.TrimRight(withEllipsis, " .,;:!?") + "..."
}

// lastSentenceEnd returns the byte offset just past the last '.', '!'
// or '?' in s, or 0 if there is none.
func lastSentenceEnd(s string) int {
	end := 0
	for i, r := range s {
		switch r {
		case '.', '!', '?':
			end = i + utf8.RuneLen(r)
		}
	}
	return end
}
