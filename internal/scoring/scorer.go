// Package scoring holds the strategies that turn an idea submission into
// numeric scores. The transport layer only sees the Scorer interface.
package scoring

import (
	"context"
	"math"

	"github.com/maxappraiser/appraiser-api/internal/models"
)

// MaxScore is the exclusive upper bound of every score
const MaxScore = 100

// Scores is the output of a Scorer. Every value lies in [0, MaxScore).
type Scores struct {
	Overall int
	Sub     models.SubScores
}

// Scorer produces scores for a validated evaluation request
type Scorer interface {
	Name() string
	ProduceScores(ctx context.Context, req *models.EvaluationRequest) (Scores, error)
}

// clampScore forces v into [0, MaxScore)
func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v >= MaxScore {
		return MaxScore - 1
	}
	return v
}

// fromFraction maps a 0..1 rating onto the integer score range
func fromFraction(f float64) int {
	if math.IsNaN(f) {
		return 0
	}
	return clampScore(int(math.Round(f * MaxScore)))
}

func clampFraction(f float64) float64 {
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

func combinedText(req *models.EvaluationRequest) string {
	return req.Idea + " " + req.Plan + " " + req.Roadmap
}
