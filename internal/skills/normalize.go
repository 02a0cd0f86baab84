// Package skills holds the curated lexicons shared by the résumé parser, the requirement
// extractor, the matching engine, and the score aggregator.
package skills

import (
	"strings"
	"unicode"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"kubernetes": "Kubernetes",
	"react.js":   "React",
	"reactjs":    "React",
	"vue.js":     "Vue",
	"vuejs":      "Vue",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
	"postgres":   "PostgreSQL",
	"postgresql": "PostgreSQL",
	"aws":        "AWS",
	"gcp":        "GCP",
	"sql":        "SQL",
	"seo":        "SEO",
	"crm":        "CRM",
	"ui/ux":      "UI/UX",
}

// NormalizeSkillName normalizes a skill name to its canonical form
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	// All-caps words longer than a typical acronym get title case
	if normalized == strings.ToUpper(normalized) && len(normalized) > 4 && !strings.Contains(lower, " ") {
		return strings.ToUpper(normalized[:1]) + lower[1:]
	}

	// Mixed case is assumed to be intentional (e.g. "GraphQL")
	if normalized != strings.ToUpper(normalized) && normalized != lower {
		return normalized
	}

	// Single lowercase word: capitalize the first letter
	if normalized == lower && !strings.Contains(normalized, " ") {
		return strings.ToUpper(normalized[:1]) + normalized[1:]
	}

	return normalized
}

// Tokens lowercases text and splits it into word tokens. Dots, hyphens, slashes, plus and
// hash signs are kept when they sit inside a word so that "node.js", "ci/cd", "c++" and
// "go-to-market" stay whole.
func Tokens(text string) []string {
	runes := []rune(strings.ToLower(text))
	var tokens []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			tokens = append(tokens, string(cur))
			cur = cur[:0]
		}
	}

	isWord := func(r rune) bool { return unicode.IsLetter(r) || unicode.IsDigit(r) }

	for i, r := range runes {
		switch {
		case isWord(r):
			cur = append(cur, r)
		case r == '+' || r == '#':
			if len(cur) > 0 {
				cur = append(cur, r)
			} else {
				flush()
			}
		case r == '.' || r == '-' || r == '/':
			if len(cur) > 0 && i+1 < len(runes) && isWord(runes[i+1]) {
				cur = append(cur, r)
			} else {
				flush()
			}
		default:
			flush()
		}
	}
	flush()
	return tokens
}

// NormalizeText returns the tokens of text joined by single spaces
func NormalizeText(text string) string {
	return strings.Join(Tokens(text), " ")
}

// ContainsTerm reports whether term occurs in text on token boundaries.
// Both arguments may be raw; they are normalized here.
func ContainsTerm(text, term string) bool {
	t := NormalizeText(term)
	if t == "" {
		return false
	}
	return strings.Contains(" "+NormalizeText(text)+" ", " "+t+" ")
}

// containsNormalized is ContainsTerm for inputs already passed through NormalizeText
func containsNormalized(normText, normTerm string) bool {
	if normTerm == "" {
		return false
	}
	return strings.Contains(" "+normText+" ", " "+normTerm+" ")
}
