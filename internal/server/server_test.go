package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdulachik/oddsbot/internal/analyst"
	"github.com/abdulachik/oddsbot/internal/catalog"
	"github.com/abdulachik/oddsbot/internal/composer"
	"github.com/abdulachik/oddsbot/internal/flow"
	"github.com/abdulachik/oddsbot/internal/matcher"
)

type fakeFlow struct {
	reply *flow.Reply
	err   error
}

func (f *fakeFlow) Answer(ctx context.Context, query string) (*flow.Reply, error) {
	return f.reply, f.err
}

func testReply() *flow.Reply {
	return &flow.Reply{
		Text: "ETF inflows hit a record.\n\nBUY YES (87%)\nhttps://polymarket.com/event/btc-200k-2025",
		Market: catalog.Market{
			ID:    "btc-1",
			Title: "Will Bitcoin reach $200,000 by December 31, 2025?",
			Slug:  "btc-200k-2025",
		},
		Stance:          analyst.StanceBuyYes,
		ConfidencePct:   87,
		MatchTier:       matcher.TierHigh,
		MatchConfidence: 0.90,
	}
}

func newTestServer(f Answerer) *Server {
	return New(Config{
		Flow:    f,
		Limiter: NewUserLimiter(time.Millisecond, 1000),
	})
}

func postAnalyze(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_Analyze(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{reply: testReply()})
		rec := postAnalyze(t, srv, `{"query": "Will BTC hit 200k?", "user_id": "u1"}`)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp analyzeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Reply, "BUY YES (87%)")
		assert.Equal(t, "https://polymarket.com/event/btc-200k-2025", resp.MarketURL)
		assert.Equal(t, "BUY_YES", resp.Stance)
		assert.Equal(t, 87, resp.ConfidencePct)
		assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	})

	t.Run("missing query", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{reply: testReply()})
		rec := postAnalyze(t, srv, `{"user_id": "u1"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{reply: testReply()})
		rec := postAnalyze(t, srv, `not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("no matching market maps to 404", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{err: fmt.Errorf("match market: %w", matcher.ErrNoCandidates)})
		rec := postAnalyze(t, srv, `{"query": "q", "user_id": "u1"}`)

		require.Equal(t, http.StatusNotFound, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "no_matching_market", resp.Error)
	})

	t.Run("scoring outage maps to 503", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{err: fmt.Errorf("match market: %w", matcher.ErrScoringFailed)})
		rec := postAnalyze(t, srv, `{"query": "q", "user_id": "u1"}`)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("format failure is distinct from no-market", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{err: fmt.Errorf("compose reply: %w", composer.ErrBudgetOverflow)})
		rec := postAnalyze(t, srv, `{"query": "q", "user_id": "u1"}`)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		var resp errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "reply_format_failed", resp.Error)
	})
}

func TestServer_RateLimit(t *testing.T) {
	srv := New(Config{
		Flow:    &fakeFlow{reply: testReply()},
		Limiter: NewUserLimiter(time.Hour, 1),
	})

	first := postAnalyze(t, srv, `{"query": "q", "user_id": "u1"}`)
	assert.Equal(t, http.StatusOK, first.Code)

	second := postAnalyze(t, srv, `{"query": "q", "user_id": "u1"}`)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))

	// A different user is not affected.
	other := postAnalyze(t, srv, `{"query": "q", "user_id": "u2"}`)
	assert.Equal(t, http.StatusOK, other.Code)
}

func TestServer_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{})
		srv.Health().SetHealthy("catalog", "1200 active markets")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"ok"`)
		assert.Contains(t, rec.Body.String(), "catalog")
	})

	t.Run("degraded", func(t *testing.T) {
		srv := newTestServer(&fakeFlow{})
		srv.Health().SetHealthy("catalog", "ok")
		srv.Health().SetUnhealthy("llm", fmt.Errorf("api key rejected"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"degraded"`)
	})
}

func TestUserLimiter(t *testing.T) {
	l := NewUserLimiter(time.Hour, 2)

	assert.True(t, l.Allow("u1"))
	assert.True(t, l.Allow("u1"))
	assert.False(t, l.Allow("u1"), "burst exhausted")
	assert.True(t, l.Allow("u2"), "separate user has a fresh bucket")
}
