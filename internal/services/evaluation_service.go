package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/maxappraiser/appraiser-api/internal/models"
	"github.com/maxappraiser/appraiser-api/internal/scoring"
	apperrors "github.com/maxappraiser/appraiser-api/pkg/errors"
	"github.com/maxappraiser/appraiser-api/pkg/logger"
	"github.com/maxappraiser/appraiser-api/pkg/metrics"
	"github.com/maxappraiser/appraiser-api/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ValuationMultiplier converts a score into a valuation amount
const ValuationMultiplier = 10000

// strongPotentialScore is the lowest score described as "strong" potential
const strongPotentialScore = 70

var recommendations = []string{
	"Consider more detailed market research.",
	"Explore potential technical challenges early.",
	"Validate your idea with potential users.",
}

// EvaluationService composes evaluation responses from scorer output
type EvaluationService struct {
	scorer          scoring.Scorer
	defaultCurrency string
}

// NewEvaluationService creates a new evaluation service instance
func NewEvaluationService(scorer scoring.Scorer, defaultCurrency string) *EvaluationService {
	if strings.TrimSpace(defaultCurrency) == "" {
		defaultCurrency = models.DefaultCurrency
	}
	return &EvaluationService{
		scorer:          scorer,
		defaultCurrency: defaultCurrency,
	}
}

// ScorerName reports which scoring strategy is active
func (s *EvaluationService) ScorerName() string {
	return s.scorer.Name()
}

func (s *EvaluationService) Evaluate(ctx context.Context, req *models.EvaluationRequest) (*models.EvaluationResponse, error) {
	if field := firstBlankField(req); field != "" {
		metrics.IdeaEvaluations.WithLabelValues("invalid").Inc()
		return nil, apperrors.InvalidInputError(field, "must not be blank")
	}

	name := s.scorer.Name()
	ctx, span := tracing.StartSpan(ctx, "EvaluationService.Evaluate", attribute.String("appraiser.scorer", name))
	defer span.End()

	start := time.Now()
	scores, err := s.scorer.ProduceScores(ctx, req)
	if err == nil {
		err = checkRange(scores)
	}
	duration := metrics.MeasureDuration(start)

	if err != nil {
		metrics.ScorerDuration.WithLabelValues(name, "error").Observe(duration)
		metrics.IdeaEvaluations.WithLabelValues("error").Inc()
		tracing.RecordError(span, err, "scoring failed")
		logger.Error("Failed to score idea",
			append(logger.TraceFields(ctx), zap.String("scorer", name), zap.Error(err))...)
		return nil, apperrors.InternalError("scoring with "+name, err)
	}
	metrics.ScorerDuration.WithLabelValues(name, "success").Observe(duration)

	grade := GradeForScore(scores.Overall)
	span.SetAttributes(
		attribute.Int("appraiser.score", scores.Overall),
		attribute.String("appraiser.grade", grade),
	)
	metrics.IdeaEvaluations.WithLabelValues("success").Inc()
	metrics.IdeaGrades.WithLabelValues(grade).Inc()

	return &models.EvaluationResponse{
		Grade: grade,
		Score: scores.Overall,
		Valuation: models.Valuation{
			Amount:   ValuationAmount(scores.Overall),
			Currency: ResolveCurrency(req.Currency, s.defaultCurrency),
		},
		Evaluation:      EvaluationSentence(scores.Overall),
		Scores:          scores.Sub,
		Recommendations: Recommendations(),
	}, nil
}

// GradeForScore buckets a score into A (>=80), B (>=60), C (>=40) or D
func GradeForScore(score int) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

func ValuationAmount(score int) int {
	return score * ValuationMultiplier
}

func EvaluationSentence(score int) string {
	potential := "some"
	if score >= strongPotentialScore {
		potential = "strong"
	}
	return fmt.Sprintf("Based on our analysis, your idea shows %s potential.", potential)
}

// Recommendations returns a fresh copy of the fixed advice list
func Recommendations() []string {
	out := make([]string, len(recommendations))
	copy(out, recommendations)
	return out
}

// ResolveCurrency returns requested unless it is blank
func ResolveCurrency(requested, fallback string) string {
	if strings.TrimSpace(requested) == "" {
		return fallback
	}
	return requested
}

func firstBlankField(req *models.EvaluationRequest) string {
	switch {
	case req == nil || strings.TrimSpace(req.Idea) == "":
		return "idea"
	case strings.TrimSpace(req.Plan) == "":
		return "plan"
	case strings.TrimSpace(req.Roadmap) == "":
		return "roadmap"
	}
	return ""
}

func checkRange(s scoring.Scores) error {
	for _, v := range []int{s.Overall, s.Sub.Originality, s.Sub.Feasibility, s.Sub.MarketPotential, s.Sub.TechnicalMerit} {
		if v < 0 || v >= scoring.MaxScore {
			return fmt.Errorf("score %d outside [0, %d)", v, scoring.MaxScore)
		}
	}
	return nil
}
