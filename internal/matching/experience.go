package matching

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/resume-matcher/internal/domains"
	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

var yearsRe = regexp.MustCompile(`(?i)(\d+)\+?\s*(?:-\s*\d+\s*)?(?:years?|yrs?)`)

// seniorityYears is the experience implied by a seniority word when no count is given
var seniorityYears = []struct {
	word  string
	years float64
}{
	{"principal", 7},
	{"staff", 7},
	{"lead", 7},
	{"senior", 5},
	{"mid-level", 3},
	{"junior", 1},
	{"entry level", 1},
	{"entry-level", 1},
}

var seniorTitleWords = []string{"senior", "sr", "lead", "principal", "staff", "head", "director"}

// requiredYears extracts the years of experience a requirement asks for
func requiredYears(req string) (float64, bool) {
	if m := yearsRe.FindStringSubmatch(req); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return float64(n), true
		}
	}
	for _, s := range seniorityYears {
		if skills.ContainsTerm(req, s.word) {
			return s.years, true
		}
	}
	return 0, false
}

// scoreExperienceYears compares domain-relevant tenure with the years a requirement asks for
func (e *Engine) scoreExperienceYears(idx *profileIndex, req string, reqDomains domains.Set) candidate {
	required, ok := requiredYears(req)
	if !ok {
		return candidate{evidence: types.NoEvidence()}
	}

	var relevant float64
	senior := false
	longest := -1
	var longestYears float64
	for i, exp := range idx.resume.Experiences {
		if !domains.Overlap(reqDomains, idx.expDomains[i]) {
			continue
		}
		years := exp.DateRange.Years(idx.now)
		relevant += years
		if years > longestYears {
			longest, longestYears = i, years
		}
		if hasAny(exp.Title, seniorTitleWords) {
			senior = true
		}
	}
	if senior && relevant < e.th.SeniorFloorYears {
		relevant = e.th.SeniorFloorYears
	}

	c := candidate{evidence: types.NoEvidence(), matchType: types.MatchPartial}
	if longest >= 0 {
		c.evidence = types.ExperienceEvidence(idx.resume.Experiences[longest])
	}

	ratio := relevant / required
	switch {
	case longest < 0:
		c.score = e.th.ExperienceNone
	case ratio >= 1:
		c.score = e.th.ExperienceFull
		c.matchType = types.MatchSemantic
	case ratio >= 0.75:
		c.score = e.th.ExperienceHigh
		c.matchType = types.MatchSemantic
	case ratio >= 0.5:
		c.score = e.th.ExperienceMid
	default:
		c.score = e.th.ExperienceLow
	}

	// Tenure alone does not satisfy a requirement for a skill the résumé never names
	if terms := skills.TechnicalTerms(req); len(terms) > 0 && c.score > e.th.SkillMissingYearsCap {
		norm := skills.NormalizeText(idx.text)
		found := false
		for _, t := range terms {
			if strings.Contains(" "+norm+" ", " "+t+" ") {
				found = true
				break
			}
		}
		if !found {
			c.score = e.th.SkillMissingYearsCap
		}
	}
	return c
}
