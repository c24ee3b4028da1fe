package main

import (
	"github.com/abdulachik/oddsbot/internal/analyst"
	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/config"
	"github.com/abdulachik/oddsbot/internal/flow"
	"github.com/abdulachik/oddsbot/internal/llm"
	"github.com/abdulachik/oddsbot/internal/matcher"
)

// newAnalyzerClient builds the Fireworks client used for matching and
// analysis.
func newAnalyzerClient(cfg *config.Config) *llm.Client {
	return llm.New(llm.Config{
		BaseURL:           llm.FireworksBaseURL,
		APIKey:            cfg.FireworksAPIKey,
		Model:             cfg.FireworksModel,
		RequestsPerMinute: cfg.LLMRequestsPerMinute,
	})
}

// newResearchClient builds the Perplexity client, or nil when no key is
// configured; research then degrades to a stub note.
func newResearchClient(cfg *config.Config) *llm.Client {
	if cfg.PerplexityAPIKey == "" {
		return nil
	}
	model := cfg.PerplexityModel
	if model == "" {
		model = llm.DefaultPerplexityModel
	}
	return llm.New(llm.Config{
		BaseURL:           llm.PerplexityBaseURL,
		APIKey:            cfg.PerplexityAPIKey,
		Model:             model,
		RequestsPerMinute: cfg.LLMRequestsPerMinute,
	})
}

// newMatcher wires the matching pipeline against a catalog.
func newMatcher(cfg *config.Config, cat catalog.Catalog, client *llm.Client) *matcher.Matcher {
	return matcher.New(matcher.Config{
		Catalog:       cat,
		Categories:    matcher.NewLLMCategoryService(matcher.LLMCategoryConfig{Client: client}),
		Scoring:       matcher.NewLLMScoringService(client),
		MaxCandidates: cfg.MaxCandidates,
		ChunkSize:     cfg.ChunkSize,
		MaxWorkers:    cfg.ScoreWorkers,
		ScoreTimeout:  cfg.ScoreTimeout,
	})
}

// newFlow wires the full per-query pipeline.
func newFlow(cfg *config.Config, cat catalog.Catalog) *flow.Flow {
	analyzer := newAnalyzerClient(cfg)

	analystCfg := analyst.Config{Analyzer: analyzer}
	if researcher := newResearchClient(cfg); researcher != nil {
		analystCfg.Researcher = researcher
	}

	return flow.New(flow.Config{
		Matcher: newMatcher(cfg, cat, analyzer),
		Analyst: analyst.New(analystCfg),
		Budget:  cfg.CharBudget,
	})
}
