package scoring

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"github.com/maxappraiser/appraiser-api/internal/models"
)

var (
	wordPattern = regexp.MustCompile(`\w+`)

	marketKeywords = []string{"market", "demand", "growing", "trend", "opportunity", "need", "pain point"}
	techKeywords   = []string{"ai", "ml", "blockchain", "iot", "ar", "vr", "api"}
)

// weights of the overall score
const (
	weightOriginality     = 0.25
	weightFeasibility     = 0.2
	weightMarketNeed      = 0.3
	weightCompetitiveEdge = 0.25

	neutralRating = 0.5
)

// Analysis is the keyword breakdown of a submission
type Analysis struct {
	MarketScore    float64
	TechScore      float64
	MarketKeywords []string
	TechKeywords   []string
}

// Verdict holds 0..1 ratings for the four judged dimensions
type Verdict struct {
	Originality     float64
	Feasibility     float64
	MarketNeed      float64
	CompetitiveEdge float64
}

// Analyze counts market and technology keywords in text. Three market terms
// or two technology terms saturate the respective score.
func Analyze(text string) Analysis {
	lower := strings.ToLower(text)
	words := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(lower, -1) {
		words[w] = struct{}{}
	}

	market := matchKeywords(lower, words, marketKeywords)
	tech := matchKeywords(lower, words, techKeywords)

	return Analysis{
		MarketScore:    ratio(len(market), 3),
		TechScore:      ratio(len(tech), 2),
		MarketKeywords: market,
		TechKeywords:   tech,
	}
}

// matchKeywords returns the keywords present in text. Multi-word keywords are
// matched as substrings, single words against the token set.
func matchKeywords(lower string, words map[string]struct{}, keywords []string) []string {
	found := []string{}
	for _, kw := range keywords {
		if strings.ContainsAny(kw, " -") {
			if strings.Contains(lower, kw) {
				found = append(found, kw)
			}
			continue
		}
		if _, ok := words[kw]; ok {
			found = append(found, kw)
		}
	}
	sort.Strings(found)
	return found
}

func ratio(hits, saturation int) float64 {
	r := float64(hits) / float64(saturation)
	if r > 1 {
		return 1
	}
	return r
}

// neutralVerdict is used when nothing better than keyword analysis is available
func neutralVerdict(a Analysis) Verdict {
	return Verdict{
		Originality:     neutralRating,
		Feasibility:     neutralRating,
		MarketNeed:      a.MarketScore,
		CompetitiveEdge: neutralRating,
	}
}

// combine turns a verdict plus keyword analysis into integer scores
func combine(v Verdict, a Analysis) Scores {
	v.Originality = clampFraction(v.Originality)
	v.Feasibility = clampFraction(v.Feasibility)
	v.MarketNeed = clampFraction(v.MarketNeed)
	v.CompetitiveEdge = clampFraction(v.CompetitiveEdge)

	overall := v.Originality*weightOriginality +
		v.Feasibility*weightFeasibility +
		v.MarketNeed*weightMarketNeed +
		v.CompetitiveEdge*weightCompetitiveEdge

	return Scores{
		Overall: fromFraction(overall),
		Sub: models.SubScores{
			Originality:     fromFraction(v.Originality),
			Feasibility:     fromFraction(v.Feasibility),
			MarketPotential: fromFraction(v.MarketNeed),
			TechnicalMerit:  fromFraction((v.Feasibility + a.TechScore) / 2),
		},
	}
}

// HeuristicScorer scores submissions deterministically from keyword analysis
type HeuristicScorer struct{}

func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Name() string {
	return "heuristic"
}

func (s *HeuristicScorer) ProduceScores(ctx context.Context, req *models.EvaluationRequest) (Scores, error) {
	if err := ctx.Err(); err != nil {
		return Scores{}, err
	}
	a := Analyze(combinedText(req))
	return combine(neutralVerdict(a), a), nil
}
