package analyst

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abdulachik/oddsbot/internal/catalog"
)

// Stance is a trading recommendation direction.
type Stance string

const (
	StanceBuyYes Stance = "BUY_YES"
	StanceBuyNo  Stance = "BUY_NO"
	StanceHold   Stance = "HOLD"
)

// ParseStance normalizes a model-produced stance string. Anything
// unrecognized becomes HOLD.
func ParseStance(s string) Stance {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY_YES", "BUY YES", "YES":
		return StanceBuyYes
	case "BUY_NO", "BUY NO", "NO":
		return StanceBuyNo
	default:
		return StanceHold
	}
}

// Recommendation is the analyst's verdict on a market.
type Recommendation struct {
	Stance     Stance
	Confidence float64 // 0.0 to 1.0
	Analysis   string  // short, reply-ready analysis text
}

// completer is the slice of the LLM client the analyst needs.
type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Analyst turns a matched market into a researched trading
// recommendation. The analyzer client does topic extraction and the
// final recommendation; the researcher client (typically a
// search-grounded model like Perplexity) gathers current information.
type Analyst struct {
	analyzer   completer
	researcher completer
	now        func() time.Time
}

// Config configures an Analyst. Researcher may be nil; research then
// degrades to a stub note instead of failing queries.
type Config struct {
	Analyzer   completer
	Researcher completer

	// Now overrides the clock in tests.
	Now func() time.Time
}

// New creates an Analyst.
func New(cfg Config) *Analyst {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Analyst{
		analyzer:   cfg.Analyzer,
		researcher: cfg.Researcher,
		now:        now,
	}
}

// Research gathers current information about a market's topic. It never
// fails the query: a missing researcher or an upstream error produces a
// stub note the recommendation step can work without.
func (a *Analyst) Research(ctx context.Context, market catalog.Market) string {
	if a.researcher == nil {
		return "Research unavailable (no research client configured)."
	}

	topic, aspects := a.extractTopic(ctx, market)

	prompt := fmt.Sprintf(ResearchPrompt,
		topic, aspects, market.Category, a.now().UTC().Format("January 2, 2006"))
	research, err := a.researcher.Complete(ctx, ResearchSystemPrompt, prompt)
	if err != nil {
		slog.Warn("market research failed", "market", market.ID, "error", err)
		return fmt.Sprintf("Research failed: %v", err)
	}

	return research
}

// extractTopic asks the analyzer for a neutral research topic so the
// research call does not leak that it is feeding a prediction. Falls
// back to the market title on any failure.
func (a *Analyst) extractTopic(ctx context.Context, market catalog.Market) (topic, aspects string) {
	topic = market.Title
	if a.analyzer == nil {
		return topic, ""
	}

	response, err := a.analyzer.Complete(ctx, TopicSystemPrompt, fmt.Sprintf(TopicPrompt, market.Title))
	if err != nil {
		slog.Warn("topic extraction failed", "market", market.ID, "error", err)
		return topic, ""
	}

	var result struct {
		Topic   string `json:"topic"`
		Aspects string `json:"aspects"`
	}
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		jsonStr = response
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil || result.Topic == "" {
		return topic, ""
	}
	return result.Topic, result.Aspects
}

// Recommend produces the final stance, confidence, and short analysis
// for a market given the research text.
func (a *Analyst) Recommend(ctx context.Context, query string, market catalog.Market, research string) (Recommendation, error) {
	if a.analyzer == nil {
		return Recommendation{}, fmt.Errorf("no analyzer client configured")
	}

	endDate := "none"
	if !market.EndDate.IsZero() {
		endDate = market.EndDate.Format("January 2, 2006")
	}
	prompt := fmt.Sprintf(AnalysisPrompt,
		query, market.Title, market.Category, endDate,
		a.now().UTC().Format("January 2, 2006"), research)

	response, err := a.analyzer.Complete(ctx, AnalysisSystemPrompt, prompt)
	if err != nil {
		return Recommendation{}, fmt.Errorf("analysis completion: %w", err)
	}

	var result struct {
		Stance     string  `json:"stance"`
		Confidence float64 `json:"confidence"`
		Analysis   string  `json:"analysis"`
	}
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		jsonStr = response
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return Recommendation{}, fmt.Errorf("parse analysis response: %w", err)
	}

	confidence := result.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Recommendation{
		Stance:     ParseStance(result.Stance),
		Confidence: confidence,
		Analysis:   strings.TrimSpace(result.Analysis),
	}, nil
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
