package matching

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// shortSkillLength is the longest skill name that must match case-sensitively ("C", "R", "Go")
const shortSkillLength = 2

// scoreSkill compares one skill against a requirement: containment, then synonym group,
// then significant-word overlap.
func (e *Engine) scoreSkill(s types.Skill, req string) candidate {
	name := strings.TrimSpace(s.Name)
	none := candidate{evidence: types.NoEvidence()}
	if name == "" || strings.TrimSpace(req) == "" {
		return none
	}

	if containsSkill(req, name) {
		return candidate{score: e.th.SkillExact, matchType: types.MatchExact, evidence: types.SkillEvidence(s)}
	}

	if _, ok := skills.SharedGroup(name, req, false); ok {
		return candidate{score: e.th.SkillSynonym, matchType: types.MatchSemantic, evidence: types.SkillEvidence(s)}
	}

	if n := overlapCount(skills.SignificantWords(name), skills.SignificantWords(req)); n > 0 {
		score := min(e.th.SkillOverlapBase+e.th.SkillOverlapStep*n, e.th.SkillOverlapMax)
		return candidate{score: score, matchType: types.MatchPartial, evidence: types.SkillEvidence(s)}
	}
	return none
}

// containsSkill reports word-bounded containment in either direction.
// Very short names only match as an exact-case token.
func containsSkill(req, name string) bool {
	if len([]rune(name)) <= shortSkillLength {
		for _, tok := range rawTokens(req) {
			if tok == name {
				return true
			}
		}
		return false
	}
	return skills.ContainsTerm(req, name) || skills.ContainsTerm(name, req)
}

// rawTokens splits text into case-preserving tokens. Hyphenated and dotted words stay
// whole so that "Go-to-market" never yields "Go".
func rawTokens(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("+#-.", r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if f = strings.TrimRight(f, ".-"); f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func overlapCount(a, b []string) int {
	set := make(map[string]bool, len(b))
	for _, w := range b {
		set[w] = true
	}
	n := 0
	for _, w := range a {
		if set[w] {
			n++
		}
	}
	return n
}
