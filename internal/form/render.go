package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/maxappraiser/appraiser-api/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ScoreBar is one labelled sub-score bar
type ScoreBar struct {
	Label        string
	Score        int
	WidthPercent int
}

// Text is the caption shown above the bar
func (b ScoreBar) Text() string {
	return fmt.Sprintf("%s: %d%%", b.Label, b.Score)
}

// Result is the rendered view of an evaluation response
type Result struct {
	Bars            []ScoreBar
	GradeLine       string
	ValuationLine   string
	Explanation     string
	Recommendations []string
}

// Render builds the result view. Amounts are grouped according to locale.
func Render(resp *models.EvaluationResponse, locale language.Tag) *Result {
	bars := []ScoreBar{
		newBar("Originality", resp.Scores.Originality),
		newBar("Feasibility", resp.Scores.Feasibility),
		newBar("Market Potential", resp.Scores.MarketPotential),
		newBar("Technical Merit", resp.Scores.TechnicalMerit),
	}

	p := message.NewPrinter(locale)

	return &Result{
		Bars:            bars,
		GradeLine:       fmt.Sprintf("Overall Grade: %s (%d%%)", resp.Grade, resp.Score),
		ValuationLine:   p.Sprintf("Estimated Valuation: %d %s", resp.Valuation.Amount, resp.Valuation.Currency),
		Explanation:     resp.Evaluation,
		Recommendations: append([]string(nil), resp.Recommendations...),
	}
}

func newBar(label string, score int) ScoreBar {
	width := score
	if width < 0 {
		width = 0
	}
	if width > 100 {
		width = 100
	}
	return ScoreBar{Label: label, Score: score, WidthPercent: width}
}

// DefaultBarWidth is the text bar width used when Fprint gets a non-positive width
const DefaultBarWidth = 40

// Fprint writes the result as text, drawing each bar width columns wide at 100%
func (r *Result) Fprint(w io.Writer, width int) error {
	if width <= 0 {
		width = DefaultBarWidth
	}
	var b strings.Builder

	for _, bar := range r.Bars {
		filled := bar.WidthPercent * width / 100
		fmt.Fprintf(&b, "%s\n[%s%s]\n", bar.Text(), strings.Repeat("#", filled), strings.Repeat(".", width-filled))
	}
	fmt.Fprintf(&b, "\n%s\n%s\n", r.GradeLine, r.ValuationLine)
	if r.Explanation != "" {
		fmt.Fprintf(&b, "\n%s\n", r.Explanation)
	}
	if len(r.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", rec)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
