package resume

import (
	"regexp"
	"strings"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// keywordMinLength is the length above which any bullet word counts as a keyword
const keywordMinLength = 6

var metricPatterns = []struct {
	kind types.MetricKind
	re   *regexp.Regexp
}{
	{types.MetricPercentage, regexp.MustCompile(`\d+(?:\.\d+)?\s?%`)},
	{types.MetricCurrency, regexp.MustCompile(`(?i)[$€£]\s?\d+(?:[.,]\d+)*(?:\s?(?:k|m|b|mm|million|billion|thousand))?\b`)},
	{types.MetricMultiplier, regexp.MustCompile(`(?i)\b\d+(?:\.\d+)?x\b`)},
	{types.MetricCount, regexp.MustCompile(`(?i)\b\d+(?:[.,]\d+)*\+?\s?(?:k|m)?\s+(?:users|customers|clients|engineers|people|employees|members|requests|transactions|projects|accounts|deals|leads|downloads|countries|markets|stores|hires|reports|servers|services|applications|campaigns|products|partners|students|patients|hours|days|weeks|months)\b`)},
}

// newBullet builds a Bullet with its metrics and keywords
func newBullet(text string) types.Bullet {
	return types.Bullet{
		Text:     text,
		Metrics:  extractMetrics(text),
		Keywords: extractKeywords(text),
	}
}

// extractMetrics finds quantified claims in text
func extractMetrics(text string) []types.Metric {
	metrics := []types.Metric{}
	for _, p := range metricPatterns {
		for _, m := range p.re.FindAllString(text, -1) {
			metrics = append(metrics, types.Metric{Kind: p.kind, Value: strings.TrimSpace(m)})
		}
	}
	return metrics
}

// extractKeywords returns action verbs and long words in order of appearance
func extractKeywords(text string) []string {
	keywords := []string{}
	seen := make(map[string]bool)
	for _, tok := range skills.Tokens(text) {
		if seen[tok] {
			continue
		}
		if skills.ActionVerbs[tok] || len(tok) > keywordMinLength {
			seen[tok] = true
			keywords = append(keywords, tok)
		}
	}
	return keywords
}
