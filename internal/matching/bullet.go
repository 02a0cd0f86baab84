package matching

import (
	"math"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// scoreBullet rates an accomplishment bullet. Keyword and metric bonuses only apply once
// the bullet is relevant through a technical synonym group or word overlap.
func (e *Engine) scoreBullet(b types.Bullet, req string, keywords []string) candidate {
	score := 0
	matchType := types.MatchPartial

	if _, ok := skills.SharedGroup(b.Text, req, true); ok {
		score += e.th.BulletSynonymBonus
		matchType = types.MatchSemantic
	}

	reqWords := skills.SignificantWords(req)
	if n := overlapCount(skills.SignificantWords(b.Text), reqWords); n >= e.th.BulletMinOverlap && len(reqWords) > 0 {
		ratio := float64(n) / float64(len(reqWords))
		score += int(math.Round(ratio * float64(e.th.BulletOverlapWeight)))
	}

	if score == 0 {
		return candidate{evidence: types.NoEvidence()}
	}

	hits := 0
	for _, kw := range keywords {
		if skills.ContainsTerm(b.Text, kw) {
			hits++
		}
	}
	score += min(hits*e.th.BulletKeywordHit, e.th.BulletKeywordCap)

	if b.HasMetric() {
		score += e.th.BulletMetricBonus
	}

	return candidate{
		score:     min(score, e.th.BulletMax),
		matchType: matchType,
		evidence:  types.BulletEvidence(b),
	}
}
