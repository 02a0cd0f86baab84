package matching

import (
	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// minRawTermLength keeps two-letter acronyms out of the raw-text fallback
const minRawTermLength = 3

// scoreRawText credits a curated technical term that appears anywhere in the résumé
func (e *Engine) scoreRawText(idx *profileIndex, req string) candidate {
	for _, term := range skills.TechnicalTerms(req) {
		if len(term) < minRawTermLength {
			continue
		}
		if skills.ContainsTerm(idx.text, term) {
			return candidate{
				score:     e.th.RawText,
				matchType: types.MatchPartial,
				evidence:  types.NoEvidence(),
				text:      "résumé mentions " + term,
			}
		}
	}
	return candidate{evidence: types.NoEvidence()}
}
