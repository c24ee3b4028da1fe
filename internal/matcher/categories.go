package matcher

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// completer is the minimal LLM surface the matcher needs.
type completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CategoryService picks category labels likely to contain markets relevant
// to a query. Implementations must only return labels drawn from the known
// set they were given.
type CategoryService interface {
	SelectCategories(ctx context.Context, query string, known []string) ([]string, error)
}

// CategoryResult is the outcome of category selection. FellBack means the
// selection produced nothing usable and the pipeline should search the full
// catalog instead.
type CategoryResult struct {
	Labels   []string
	FellBack bool
	Reason   string
}

// SelectCategories runs the category stage with its fallback policy: any
// service error or empty result becomes a fallback signal, never an error.
func SelectCategories(ctx context.Context, svc CategoryService, query string, known []string) CategoryResult {
	if svc == nil || len(known) == 0 {
		return CategoryResult{FellBack: true, Reason: "no categories available"}
	}

	labels, err := svc.SelectCategories(ctx, query, known)
	if err != nil {
		return CategoryResult{FellBack: true, Reason: fmt.Sprintf("category selection failed: %v", err)}
	}
	if len(labels) == 0 {
		return CategoryResult{FellBack: true, Reason: "no confident categories"}
	}

	return CategoryResult{Labels: labels}
}

// LLMCategoryService selects categories with a single LLM call.
type LLMCategoryService struct {
	llm           completer
	maxCategories int
}

// LLMCategoryConfig holds configuration for the LLM category service.
type LLMCategoryConfig struct {
	Client        completer
	MaxCategories int // cap on returned labels (default: 3)
}

// NewLLMCategoryService creates an LLM-backed category service.
func NewLLMCategoryService(cfg LLMCategoryConfig) *LLMCategoryService {
	maxCategories := cfg.MaxCategories
	if maxCategories <= 0 {
		maxCategories = 3
	}
	return &LLMCategoryService{
		llm:           cfg.Client,
		maxCategories: maxCategories,
	}
}

// SelectCategories implements CategoryService. The model is constrained to
// the supplied label set; labels it invents anyway are silently dropped.
func (s *LLMCategoryService) SelectCategories(ctx context.Context, query string, known []string) ([]string, error) {
	prompt := fmt.Sprintf(CategoryPrompt, query, strings.Join(known, ", "), s.maxCategories)

	response, err := s.llm.Complete(ctx, CategorySystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("category completion: %w", err)
	}

	var result struct {
		Categories []string `json:"categories"`
		Reasoning  string   `json:"reasoning"`
	}

	jsonStr := extractJSON(response)
	if jsonStr == "" {
		jsonStr = response
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return nil, fmt.Errorf("parse category response: %w", err)
	}

	// Canonicalize against the known set; anything else is dropped.
	canonical := make(map[string]string, len(known))
	for _, k := range known {
		canonical[strings.ToLower(k)] = k
	}

	var selected []string
	seen := make(map[string]bool)
	for _, label := range result.Categories {
		k, ok := canonical[strings.ToLower(strings.TrimSpace(label))]
		if !ok || seen[k] {
			continue
		}
		seen[k] = true
		selected = append(selected, k)
		if len(selected) >= s.maxCategories {
			break
		}
	}

	return selected, nil
}
