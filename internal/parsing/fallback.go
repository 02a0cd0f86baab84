package parsing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

const maxTitleLength = 120

var (
	bulletPrefixes = []string{"•", "·", "▪", "◦", "‣", "●", "–", "-", "*", "+"}

	yearsRe       = regexp.MustCompile(`(?i)\b\d+\s*\+?\s*(?:years?|yrs?)\b`)
	degreeRe      = regexp.MustCompile(`(?i)\b(?:bachelor'?s?|master'?s?|ph\.?d|doctorate|degree|b\.s\.?|m\.s\.?|b\.a\.?|mba)\b`)
	certRe        = regexp.MustCompile(`(?i)\bcertif(?:ied|ication|icate)s?\b`)
	sentenceEndRe = regexp.MustCompile(`[.!?;]+\s+|\n+`)
	companyRe     = regexp.MustCompile(`(?i)^(?:company|employer|organization)\s*:\s*(.+)$`)

	requirementVerbs = []string{
		"must", "required", "require", "experience", "proficien", "knowledge", "familiar",
		"ability to", "degree", "years", "expertise", "understanding of", "skilled",
	}

	criticalWords = []string{"must", "required"}
	highWords     = []string{"strong", "excellent"}
	lowWords      = []string{"familiar", "knowledge of"}

	seniorityWords = []struct {
		word  string
		level string
	}{
		{"principal", "lead"}, {"staff", "lead"}, {"lead", "lead"}, {"head of", "executive"},
		{"director", "executive"}, {"vp", "executive"}, {"senior", "senior"}, {"sr.", "senior"},
		{"junior", "junior"}, {"jr.", "junior"}, {"entry", "junior"}, {"intern", "junior"},
		{"mid-level", "mid"},
	}
)

// FallbackExtract is the deterministic extractor used whenever the model response
// cannot be used. It always returns a normalized set.
func FallbackExtract(jdText string) *types.RequirementSet {
	lines := nonEmptyLines(jdText)

	var candidates []string
	title, company := "", ""
	for _, line := range lines {
		if item, ok := stripBullet(line); ok {
			candidates = append(candidates, item)
			continue
		}
		if m := companyRe.FindStringSubmatch(line); m != nil && company == "" {
			company = strings.TrimSpace(m[1])
			continue
		}
		if title == "" {
			title = truncateTitle(strings.TrimSuffix(line, ":"))
		}
	}
	if len(candidates) == 0 {
		candidates = requirementSentences(jdText)
	}

	reqs := make([]types.Requirement, 0, len(candidates))
	for _, c := range candidates {
		reqs = append(reqs, types.Requirement{
			Text:       c,
			Type:       inferType(c),
			Importance: inferImportance(c),
		})
	}

	half := (len(reqs) + 1) / 2
	rs := &types.RequirementSet{
		Title:     title,
		Company:   company,
		Required:  reqs[:half],
		Preferred: reqs[half:],
		Keywords:  skills.TechnicalTerms(jdText),
		Context: types.RequirementContext{
			Seniority: inferSeniority(title),
			WorkStyle: inferWorkStyle(jdText),
		},
	}
	Normalize(rs)
	return rs
}

func nonEmptyLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// stripBullet reports whether line starts with a bullet glyph and returns the rest
func stripBullet(line string) (string, bool) {
	for _, p := range bulletPrefixes {
		if strings.HasPrefix(line, p) {
			rest := strings.TrimSpace(strings.TrimPrefix(line, p))
			return rest, rest != ""
		}
	}
	return "", false
}

func requirementSentences(text string) []string {
	var out []string
	for _, s := range sentenceEndRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := strings.ToLower(s)
		for _, v := range requirementVerbs {
			if strings.Contains(lower, v) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func inferType(text string) types.RequirementType {
	lower := strings.ToLower(text)
	switch {
	case yearsRe.MatchString(text) && strings.Contains(lower, "experience"):
		return types.RequirementExperience
	case degreeRe.MatchString(text):
		return types.RequirementEducation
	case certRe.MatchString(text):
		return types.RequirementCertification
	case skills.IsTechnical(text):
		return types.RequirementSkill
	default:
		return types.RequirementOther
	}
}

func inferImportance(text string) types.Importance {
	switch {
	case hasWord(text, criticalWords):
		return types.ImportanceCritical
	case hasWord(text, highWords):
		return types.ImportanceHigh
	case hasWord(text, lowWords):
		return types.ImportanceLow
	default:
		return types.ImportanceMedium
	}
}

func inferSeniority(title string) string {
	for _, s := range seniorityWords {
		if skills.ContainsTerm(title, s.word) {
			return s.level
		}
	}
	return ""
}

func inferWorkStyle(text string) string {
	switch lower := strings.ToLower(text); {
	case strings.Contains(lower, "hybrid"):
		return "hybrid"
	case strings.Contains(lower, "remote"):
		return "remote"
	case strings.Contains(lower, "on-site"), strings.Contains(lower, "onsite"), strings.Contains(lower, "in office"):
		return "onsite"
	}
	return ""
}

func hasWord(text string, words []string) bool {
	for _, w := range words {
		if skills.ContainsTerm(text, w) {
			return true
		}
	}
	return false
}

func truncateTitle(s string) string {
	if utf8.RuneCountInString(s) <= maxTitleLength {
		return s
	}
	return string([]rune(s)[:maxTitleLength])
}
