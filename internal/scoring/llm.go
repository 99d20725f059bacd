package scoring

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/maxappraiser/appraiser-api/config"
	"github.com/maxappraiser/appraiser-api/internal/cache"
	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/maxappraiser/appraiser-api/pkg/circuitbreaker"
	apperrors "github.com/maxappraiser/appraiser-api/pkg/errors"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"github.com/maxappraiser/appraiser-api/pkg/retry"
	"github.com/sony/gobreaker"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	inferenceService     = "huggingface"
	defaultLLMTimeout    = 45 * time.Second
	verdictCacheName     = "llm_verdicts"
	verdictCacheInterval = 10 * time.Minute
)

const promptTemplate = `You are an expert VC analyst. Analyze this software idea and rate it.
Respond with a single JSON object and nothing else, using exactly these keys:
{"originality": <0.0-1.0>, "feasibility": <0.0-1.0>, "market_need": <0.0-1.0>, "competitive_edge": <0.0-1.0>}
originality: how unique and innovative the idea is
feasibility: how feasible it is to build
market_need: how strong the market need is
competitive_edge: how strong the competitive advantage is

Idea: %s
Implementation Plan: %s
Roadmap: %s
`

type inferenceParameters struct {
	Temperature    float64 `json:"temperature"`
	MaxNewTokens   int     `json:"max_new_tokens"`
	ReturnFullText bool    `json:"return_full_text"`
}

type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

// LLMScorer asks a Hugging Face text-generation model for a verdict and
// falls back to keyword analysis whenever the model is unavailable.
type LLMScorer struct {
	client   *resty.Client
	model    string
	enabled  bool
	verdicts *cache.TTLCache[Verdict]
	breaker  *gobreaker.CircuitBreaker
	retryCfg retry.Config
}

// NewVerdictCache creates the cache used by NewLLMScorer
func NewVerdictCache(ttl time.Duration) *cache.TTLCache[Verdict] {
	return cache.NewTTLCache[Verdict](verdictCacheName, ttl, verdictCacheInterval)
}

// NewLLMScorer builds the scorer. Without a token every request is answered
// by keyword analysis.
func NewLLMScorer(cfg config.LLMConfig, verdicts *cache.TTLCache[Verdict]) *LLMScorer {
	client := resty.New().
		SetBaseURL(cfg.APIURL).
		SetTimeout(attemptTimeout(cfg)).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	if verdicts == nil {
		verdicts = NewVerdictCache(time.Duration(cfg.CacheTTLSeconds) * time.Second)
	}

	return &LLMScorer{
		client:   client,
		model:    strings.Trim(cfg.Model, "/"),
		enabled:  cfg.Token != "",
		verdicts: verdicts,
		breaker:  circuitbreaker.New(circuitbreaker.InferenceConfig(inferenceService)),
		retryCfg: retry.InferenceConfig(),
	}
}

func attemptTimeout(cfg config.LLMConfig) time.Duration {
	if cfg.TimeoutSeconds <= 0 {
		return defaultLLMTimeout
	}
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}

// RequestBudget is the longest ProduceScores can wait on the inference API,
// every retry included
func RequestBudget(cfg config.LLMConfig) time.Duration {
	return retry.InferenceConfig().MaxElapsed(attemptTimeout(cfg))
}

func (s *LLMScorer) Name() string {
	return "llm"
}

// BreakerState reports the inference circuit breaker state
func (s *LLMScorer) BreakerState() string {
	return circuitbreaker.State(s.breaker)
}

func (s *LLMScorer) ProduceScores(ctx context.Context, req *models.EvaluationRequest) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}

	analysis := Analyze(combinedText(req))
	if !s.enabled {
		metrics.ScorerFallbacks.WithLabelValues("disabled").Inc()
		return combine(neutralVerdict(analysis), analysis), nil
	}

	prompt := buildPrompt(req)
	key := promptKey(prompt)
	if verdict, found := s.verdicts.Get(key); found {
		logger.Debug("LLM verdict cache hit", zap.String("key", key))
		return combine(verdict, analysis), nil
	}

	verdict, err := circuitbreaker.Execute(s.breaker, func() (Verdict, error) {
		return retry.DoWithResult(ctx, s.retryCfg, "inference.generate", func() (Verdict, error) {
			return s.requestVerdict(ctx, prompt, analysis)
		})
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Scores{}, ctxErr
		}

		reason := "inference_error"
		if circuitbreaker.IsOpenError(err) {
			reason = "circuit_open"
		}
		logger.Warn("LLM scoring failed, falling back to keyword analysis",
			zap.String("reason", reason),
			zap.Error(err))
		metrics.ScorerFallbacks.WithLabelValues(reason).Inc()
		return combine(neutralVerdict(analysis), analysis), nil
	}

	s.verdicts.Set(key, verdict)
	return combine(verdict, analysis), nil
}

// requestVerdict performs one inference call
func (s *LLMScorer) requestVerdict(ctx context.Context, prompt string, analysis Analysis) (Verdict, error) {
	start := time.Now()

	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(inferenceRequest{
			Inputs: prompt,
			Parameters: inferenceParameters{
				Temperature:    0.3,
				MaxNewTokens:   500,
				ReturnFullText: false,
			},
		}).
		Post("/" + s.model)

	duration := metrics.MeasureDuration(start)
	status := "success"
	defer func() {
		metrics.InferenceRequestDuration.WithLabelValues("generate", status).Observe(duration)
		metrics.InferenceRequestTotal.WithLabelValues("generate", status).Inc()
		logger.LogAPICall(inferenceService, "generate", status, duration, zap.String("model", s.model))
	}()

	if err != nil {
		status = "error"
		return Verdict{}, apperrors.UpstreamError(inferenceService, err)
	}

	if resp.IsError() {
		status = "error"
		statusErr := apperrors.UpstreamError(inferenceService,
			fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200)))
		if isTransientStatus(resp.StatusCode()) {
			return Verdict{}, statusErr
		}
		return Verdict{}, retry.Permanent(statusErr)
	}

	text, err := generatedText(resp.Body())
	if err != nil {
		status = "error"
		return Verdict{}, retry.Permanent(err)
	}

	verdict, err := parseVerdict(text, analysis)
	if err != nil {
		status = "error"
		return Verdict{}, retry.Permanent(err)
	}

	return verdict, nil
}

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// generatedText extracts the model output from either response shape the
// inference API uses: [{"generated_text": ...}] or {"generated_text": ...}
func generatedText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("inference response is not valid JSON")
	}

	result := gjson.ParseBytes(body)
	text := result.Get("generated_text")
	if result.IsArray() {
		text = result.Get("0.generated_text")
	}
	if !text.Exists() {
		if msg := result.Get("error"); msg.Exists() {
			return "", fmt.Errorf("inference error: %s", msg.String())
		}
		return "", fmt.Errorf("inference response has no generated_text")
	}
	return text.String(), nil
}

// parseVerdict pulls the first {...} block out of text. Missing ratings fall
// back to neutral values, and market_need to the keyword market score.
func parseVerdict(text string, analysis Analysis) (Verdict, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return Verdict{}, fmt.Errorf("no JSON object in model output")
	}

	raw := text[start : end+1]
	if !gjson.Valid(raw) {
		return Verdict{}, fmt.Errorf("model output is not valid JSON")
	}

	obj := gjson.Parse(raw)
	rating := func(key string, fallback float64) float64 {
		if v := obj.Get(key); v.Type == gjson.Number {
			return clampFraction(v.Float())
		}
		return fallback
	}

	return Verdict{
		Originality:     rating("originality", neutralRating),
		Feasibility:     rating("feasibility", neutralRating),
		MarketNeed:      rating("market_need", analysis.MarketScore),
		CompetitiveEdge: rating("competitive_edge", neutralRating),
	}, nil
}

func buildPrompt(req *models.EvaluationRequest) string {
	return fmt.Sprintf(promptTemplate, req.Idea, req.Plan, req.Roadmap)
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
