package scoring

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/maxappraiser/appraiser-api/internal/models"
)

// RandomScorer draws every score independently and uniformly from [0, MaxScore).
// It stands in for a real model and makes no attempt to read the submission.
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer creates a scorer over src. A nil src seeds a fresh PCG source.
func NewRandomScorer(src rand.Source) *RandomScorer {
	if src == nil {
		//nolint:gosec // G404: scores are mock values, not secrets
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	//nolint:gosec // G404: see above
	return &RandomScorer{rng: rand.New(src)}
}

func (s *RandomScorer) Name() string {
	return "random"
}

func (s *RandomScorer) ProduceScores(ctx context.Context, _ *models.EvaluationRequest) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// overall first, then sub-scores in response order
	return Scores{
		Overall: s.rng.IntN(MaxScore),
		Sub: models.SubScores{
			Originality:     s.rng.IntN(MaxScore),
			Feasibility:     s.rng.IntN(MaxScore),
			MarketPotential: s.rng.IntN(MaxScore),
			TechnicalMerit:  s.rng.IntN(MaxScore),
		},
	}, nil
}
