package rewriting

import (
	"strings"
	"unicode"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// openers counted as action-led on top of the shared action verb lexicon
var openers = map[string]bool{
	"achieved": true, "engineered": true, "transformed": true,
	"cut": true, "ran": true, "wrote": true, "built": true,
}

// BulletStyle holds the style signals of one résumé bullet
type BulletStyle struct {
	ActionLed  bool
	Quantified bool
}

// Rank orders bullets with equal relevance: quantified beats action-led
func (s BulletStyle) Rank() int {
	rank := 0
	if s.Quantified {
		rank += 2
	}
	if s.ActionLed {
		rank++
	}
	return rank
}

// CheckBullet reports the style signals of a bullet. Parsed metrics count as
// quantified; so does any digit for bullets built without metric extraction.
func CheckBullet(b types.Bullet) BulletStyle {
	return BulletStyle{
		ActionLed:  actionLed(b.Text),
		Quantified: len(b.Metrics) > 0 || strings.ContainsFunc(b.Text, unicode.IsDigit),
	}
}

func actionLed(text string) bool {
	words := strings.Fields(strings.ToLower(text))
	if len(words) == 0 {
		return false
	}
	first := strings.TrimRight(words[0], ".,!?;:")
	if skills.ActionVerbs[first] || openers[first] {
		return true
	}
	// regular past tense
	return len(first) > 3 && strings.HasSuffix(first, "ed")
}
