package matching

import (
	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// roleGroups cluster job-title words that describe the same kind of role
var roleGroups = map[string][]string{
	"management":  {"manager", "management", "lead", "director", "head of", "vp", "vice president", "chief", "supervisor"},
	"engineering": {"engineer", "developer", "programmer", "architect", "sre"},
	"analysis":    {"analyst", "specialist", "scientist", "researcher"},
	"design":      {"designer", "ux", "ui", "creative director"},
	"marketing":   {"marketing", "marketer", "growth", "brand", "content strategist"},
	"sales":       {"sales", "account executive", "business development", "account manager"},
}

var seniorityWords = []string{"senior", "sr", "lead", "principal", "staff", "head"}

// scoreTitle compares a job title against a requirement by role group and seniority
func (e *Engine) scoreTitle(exp types.Experience, req string) candidate {
	if exp.Title == "" {
		return candidate{evidence: types.NoEvidence()}
	}

	sharedGroup := false
	for _, words := range roleGroups {
		if hasAny(req, words) && hasAny(exp.Title, words) {
			sharedGroup = true
			break
		}
	}
	sharedSeniority := hasAny(req, seniorityWords) && hasAny(exp.Title, seniorityWords)

	var c candidate
	switch {
	case sharedGroup && sharedSeniority:
		c = candidate{score: e.th.TitleGroupSeniority, matchType: types.MatchSemantic}
	case sharedGroup:
		c = candidate{score: e.th.TitleGroup, matchType: types.MatchSemantic}
	case sharedSeniority:
		c = candidate{score: e.th.TitleSeniorityOnly, matchType: types.MatchPartial}
	default:
		return candidate{evidence: types.NoEvidence()}
	}
	c.evidence = types.ExperienceEvidence(exp)
	return c
}

func hasAny(text string, terms []string) bool {
	for _, t := range terms {
		if skills.ContainsTerm(text, t) {
			return true
		}
	}
	return false
}
