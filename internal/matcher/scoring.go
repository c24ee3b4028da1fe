package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// Score is one market's relevance verdict within a scoring batch.
type Score struct {
	Tier          Tier
	Justification string
}

// ScoringService scores a batch of markets against a query in one call.
// The returned slice must be one-to-one with the input, in input order;
// anything else is treated by the caller as a failed batch.
type ScoringService interface {
	ScoreBatch(ctx context.Context, query string, markets []catalog.Market) ([]Score, error)
}

// LLMScoringService scores batches with a single LLM call per batch.
type LLMScoringService struct {
	llm completer
}

// NewLLMScoringService creates an LLM-backed scoring service.
func NewLLMScoringService(client completer) *LLMScoringService {
	return &LLMScoringService{llm: client}
}

// ScoreBatch implements ScoringService.
func (s *LLMScoringService) ScoreBatch(ctx context.Context, query string, markets []catalog.Market) ([]Score, error) {
	if len(markets) == 0 {
		return nil, nil
	}

	var list strings.Builder
	for i, m := range markets {
		endDate := "none"
		if !m.EndDate.IsZero() {
			endDate = m.EndDate.Format("2006-01-02")
		}
		fmt.Fprintf(&list, "\n%d. %s\n   Category: %s | Ends: %s\n",
			i+1, m.Title, m.Category, endDate)
	}

	prompt := fmt.Sprintf(ScoringPrompt, query, time.Now().UTC().Format("January 2, 2006"), list.String())

	response, err := s.llm.Complete(ctx, ScoringSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("scoring completion: %w", err)
	}

	var result struct {
		Scores []struct {
			Index  int    `json:"index"`
			Tier   string `json:"tier"`
			Reason string `json:"reason"`
		} `json:"scores"`
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		jsonStr = response
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	// Map the 1-based indexes back onto input order. A response that does
	// not cover every market fails the whole batch; partial merges would
	// silently misattribute scores.
	scores := make([]Score, len(markets))
	covered := make([]bool, len(markets))
	for _, item := range result.Scores {
		i := item.Index - 1
		if i < 0 || i >= len(markets) {
			return nil, fmt.Errorf("score index %d out of range (batch size %d)", item.Index, len(markets))
		}
		tier, _ := ParseTier(item.Tier)
		scores[i] = Score{Tier: tier, Justification: item.Reason}
		covered[i] = true
	}
	for i, ok := range covered {
		if !ok {
			return nil, fmt.Errorf("no score returned for market %d of %d", i+1, len(markets))
		}
	}

	return scores, nil
}

// extractJSON finds and extracts the first JSON object from text.
func extractJSON(text string) string {
	start := strings.Index(text, "{")
	if start == -1 {
		return ""
	}

	depth := 0
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}

	return ""
}
