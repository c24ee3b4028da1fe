package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/abdulachik/oddsbot/internal/composer"
	"github.com/abdulachik/oddsbot/internal/flow"
	"github.com/abdulachik/oddsbot/internal/matcher"
)

// Answerer handles one query end to end.
type Answerer interface {
	Answer(ctx context.Context, query string) (*flow.Reply, error)
}

// Server is the HTTP API: POST /analyze runs the full pipeline for one
// query, GET /health reports component health.
type Server struct {
	flow    Answerer
	health  *Health
	limiter *UserLimiter
	mux     *http.ServeMux
}

// Config holds configuration for the server.
type Config struct {
	Flow    Answerer
	Health  *Health
	Limiter *UserLimiter
}

// New creates a new Server.
func New(cfg Config) *Server {
	health := cfg.Health
	if health == nil {
		health = NewHealth()
	}
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = NewUserLimiter(time.Minute, 1)
	}

	s := &Server{
		flow:    cfg.Flow,
		health:  health,
		limiter: limiter,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("POST /analyze", s.handleAnalyze)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

// Handler returns the server's handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return withLogging(withRequestID(s.mux))
}

// Health exposes the component health tracker so the serve command can
// report sync and dependency state.
func (s *Server) Health() *Health {
	return s.health
}

type analyzeRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
}

type analyzeResponse struct {
	Reply           string  `json:"reply"`
	MarketTitle     string  `json:"market_title"`
	MarketURL       string  `json:"market_url"`
	Stance          string  `json:"stance"`
	ConfidencePct   int     `json:"confidence_pct"`
	MatchConfidence float64 `json:"match_confidence"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "request body must be JSON with a query field")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "query is required")
		return
	}

	user := req.UserID
	if user == "" {
		user = clientIP(r)
	}
	if !s.limiter.Allow(user) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, slow down")
		return
	}

	reply, err := s.flow.Answer(r.Context(), req.Query)
	if err != nil {
		s.writeAnalyzeError(w, req.Query, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Reply:           reply.Text,
		MarketTitle:     reply.Market.Title,
		MarketURL:       reply.Market.URL(),
		Stance:          string(reply.Stance),
		ConfidencePct:   reply.ConfidencePct,
		MatchConfidence: reply.MatchConfidence,
	})
}

// writeAnalyzeError maps pipeline failures to distinct user-facing
// responses: not finding a market is the user's problem to rephrase,
// scoring being down is ours, and a reply that cannot fit the character
// budget is a formatting bug.
func (s *Server) writeAnalyzeError(w http.ResponseWriter, query string, err error) {
	switch {
	case errors.Is(err, matcher.ErrNoCandidates):
		writeError(w, http.StatusNotFound, "no_matching_market",
			"couldn't find a market matching that question; try rephrasing")
	case errors.Is(err, matcher.ErrScoringFailed):
		writeError(w, http.StatusServiceUnavailable, "scoring_unavailable",
			"market scoring is temporarily unavailable, try again shortly")
	case errors.Is(err, composer.ErrBudgetOverflow):
		slog.Error("reply overflowed character budget", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "reply_format_failed",
			"found a market but couldn't format the reply")
	default:
		slog.Error("analyze failed", "query", query, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error",
			"something went wrong handling that question")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	components, ok := s.health.Snapshot()

	status := http.StatusOK
	state := "ok"
	if !ok {
		status = http.StatusServiceUnavailable
		state = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status":     state,
		"components": components,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}

// clientIP extracts the caller's IP for rate limiting anonymous
// requests, preferring standard proxy headers.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.SplitN(xff, ",", 2)
		if ip := strings.TrimSpace(parts[0]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
