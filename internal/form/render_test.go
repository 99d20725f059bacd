package form

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestRender(t *testing.T) {
	res := Render(sampleResponse(), language.English)

	assert.Equal(t, []ScoreBar{
		{Label: "Originality", Score: 71, WidthPercent: 71},
		{Label: "Feasibility", Score: 52, WidthPercent: 52},
		{Label: "Market Potential", Score: 88, WidthPercent: 88},
		{Label: "Technical Merit", Score: 43, WidthPercent: 43},
	}, res.Bars)
	assert.Equal(t, "Originality: 71%", res.Bars[0].Text())
	assert.Equal(t, "Overall Grade: B (65%)", res.GradeLine)
	assert.Equal(t, "Estimated Valuation: 650,000 USD", res.ValuationLine)
	assert.Equal(t, "Based on our analysis, your idea shows some potential.", res.Explanation)
}

func TestRender_LocaleFormatting(t *testing.T) {
	resp := sampleResponse()
	resp.Valuation.Currency = "EUR"

	res := Render(resp, language.German)

	assert.Equal(t, "Estimated Valuation: 650.000 EUR", res.ValuationLine)
}

func TestRender_ZeroScore(t *testing.T) {
	resp := sampleResponse()
	resp.Score = 0
	resp.Grade = "D"
	resp.Valuation.Amount = 0

	res := Render(resp, language.English)

	assert.Equal(t, "Overall Grade: D (0%)", res.GradeLine)
	assert.Equal(t, "Estimated Valuation: 0 USD", res.ValuationLine)
}

func TestResult_Fprint(t *testing.T) {
	res := Render(sampleResponse(), language.English)

	var buf bytes.Buffer
	require.NoError(t, res.Fprint(&buf, 10))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "Originality: 71%\n[#######...]\n"))
	assert.Contains(t, out, "Market Potential: 88%\n[########..]\n")
	assert.Contains(t, out, "Overall Grade: B (65%)\nEstimated Valuation: 650,000 USD\n")
	assert.Contains(t, out, "  - Consider more detailed market research.\n")
}

func TestResult_FprintDefaultWidth(t *testing.T) {
	res := Render(sampleResponse(), language.English)

	var buf bytes.Buffer
	require.NoError(t, res.Fprint(&buf, 0))

	firstBar := strings.Split(buf.String(), "\n")[1]
	assert.Len(t, firstBar, DefaultBarWidth+2)
}
