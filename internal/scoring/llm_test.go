package scoring

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/maxappraiser/appraiser-api/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verdictOutput = `[{"generated_text":"Here is my rating: {\"originality\": 0.8, \"feasibility\": 0.6, \"market_need\": 0.9, \"competitive_edge\": 0.6} Good luck!"}]`

func newTestLLMScorer(t *testing.T, url, token string) *LLMScorer {
	t.Helper()
	s := NewLLMScorer(config.LLMConfig{
		Token:           token,
		Model:           "org/model",
		APIURL:          url,
		CacheTTLSeconds: 60,
		TimeoutSeconds:  5,
	}, nil)
	s.retryCfg = retry.Config{
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
	return s
}

func TestLLMScorer_UsesModelVerdict(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/org/model", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body inferenceRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body.Inputs, "Idea: Bakery delivery")
		assert.Equal(t, 0.3, body.Parameters.Temperature)
		assert.Equal(t, 500, body.Parameters.MaxNewTokens)
		assert.False(t, body.Parameters.ReturnFullText)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(verdictOutput))
	}))
	defer srv.Close()

	s := newTestLLMScorer(t, srv.URL, "tok")
	assert.Equal(t, "llm", s.Name())

	got, err := s.ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, Scores{
		Overall: 74,
		Sub:     models.SubScores{Originality: 80, Feasibility: 60, MarketPotential: 90, TechnicalMerit: 30},
	}, got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMScorer_CachesVerdicts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(verdictOutput))
	}))
	defer srv.Close()

	s := newTestLLMScorer(t, srv.URL, "tok")

	first, err := s.ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)
	second, err := s.ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load())
}

func TestLLMScorer_RetriesWhileModelLoads(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading"}`))
			return
		}
		_, _ = w.Write([]byte(verdictOutput))
	}))
	defer srv.Close()

	got, err := newTestLLMScorer(t, srv.URL, "tok").ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	assert.Equal(t, 74, got.Overall)
	assert.Equal(t, int32(2), calls.Load())
}

func TestLLMScorer_FallsBackOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"bad input"}`))
	}))
	defer srv.Close()

	got, err := newTestLLMScorer(t, srv.URL, "tok").ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	want, _ := NewHeuristicScorer().ProduceScores(context.Background(), sampleRequest())
	assert.Equal(t, want, got)
	assert.Equal(t, int32(1), calls.Load(), "client errors are not retried")
}

func TestLLMScorer_FallsBackOnUnparseableOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"generated_text":"I cannot rate this idea."}]`))
	}))
	defer srv.Close()

	got, err := newTestLLMScorer(t, srv.URL, "tok").ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	want, _ := NewHeuristicScorer().ProduceScores(context.Background(), sampleRequest())
	assert.Equal(t, want, got)
}

func TestLLMScorer_OpenBreakerSkipsUpstream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := newTestLLMScorer(t, srv.URL, "tok")
	s.retryCfg.MaxRetries = 0

	for i := 0; i < 3; i++ {
		_, err := s.ProduceScores(context.Background(), sampleRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, "open", s.BreakerState())

	before := calls.Load()
	got, err := s.ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
	assertInRange(t, got)
}

func TestLLMScorer_WithoutTokenNeverCallsUpstream(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	got, err := newTestLLMScorer(t, srv.URL, "").ProduceScores(context.Background(), sampleRequest())
	require.NoError(t, err)

	want, _ := NewHeuristicScorer().ProduceScores(context.Background(), sampleRequest())
	assert.Equal(t, want, got)
	assert.Equal(t, int32(0), calls.Load())
}

func TestLLMScorer_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(verdictOutput))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestLLMScorer(t, srv.URL, "tok").ProduceScores(ctx, sampleRequest())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGeneratedText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{name: "array shape", body: `[{"generated_text":"hello"}]`, want: "hello"},
		{name: "object shape", body: `{"generated_text":"hi"}`, want: "hi"},
		{name: "api error", body: `{"error":"Model is overloaded"}`, wantErr: true},
		{name: "missing field", body: `[{"text":"x"}]`, wantErr: true},
		{name: "not json", body: `<html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := generatedText([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseVerdict_MissingRatings(t *testing.T) {
	analysis := Analysis{MarketScore: 0.4}

	v, err := parseVerdict(`rating: {"originality": 0.9, "feasibility": "high"}`, analysis)
	require.NoError(t, err)

	assert.Equal(t, Verdict{Originality: 0.9, Feasibility: 0.5, MarketNeed: 0.4, CompetitiveEdge: 0.5}, v)
}

func TestParseVerdict_ClampsRatings(t *testing.T) {
	v, err := parseVerdict(`{"originality": 7, "feasibility": -2, "market_need": 0.2, "competitive_edge": 1}`, Analysis{})
	require.NoError(t, err)

	assert.Equal(t, 1.0, v.Originality)
	assert.Equal(t, 0.0, v.Feasibility)
}

func TestParseVerdict_NoObject(t *testing.T) {
	_, err := parseVerdict("no json at all", Analysis{})
	assert.Error(t, err)

	_, err = parseVerdict("} backwards {", Analysis{})
	assert.Error(t, err)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcde...", truncate("abcdefgh", 5))

	// "é" is two bytes; a cut inside it backs off to the rune start
	got := truncate("caféteria", 4)
	assert.Equal(t, "caf...", got)
	assert.True(t, utf8.ValidString(got))

	got = truncate(strings.Repeat("模型", 10), 7)
	assert.Equal(t, "模型...", got)
	assert.True(t, utf8.ValidString(got))
}

func TestRequestBudget(t *testing.T) {
	short := RequestBudget(config.LLMConfig{TimeoutSeconds: 5})
	assert.Equal(t, 15*time.Second+1875*time.Millisecond, short)

	assert.Equal(t, RequestBudget(config.LLMConfig{TimeoutSeconds: 45}), RequestBudget(config.LLMConfig{}))
}
