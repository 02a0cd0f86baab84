package scoring

import (
	"math"

	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Breakdown records each stage of the calculation
type Breakdown struct {
	Base               int     `json:"base"`
	TechnicalTotal     int     `json:"technical_total"`
	TechnicalMatched   int     `json:"technical_matched"`
	CoverageMultiplier float64 `json:"coverage_multiplier"`
	CriticalPenalized  bool    `json:"critical_penalized"`
	MismatchCapped     bool    `json:"mismatch_capped"`
	Final              int     `json:"final"`
}

// Aggregator turns match records into a bounded score. It is pure and safe for concurrent use.
type Aggregator struct {
	w Weights
}

// NewAggregator creates an aggregator with the given weights
func NewAggregator(w Weights) *Aggregator {
	return &Aggregator{w: w}
}

// Weights returns the aggregator's constants
func (a *Aggregator) Weights() Weights {
	return a.w
}

// Calculate returns the final score for a match result
func (a *Aggregator) Calculate(matched, missing []types.MatchRecord, domainMismatch bool) int {
	return a.Explain(matched, missing, domainMismatch).Final
}

// Score is Calculate over a MatchResult
func (a *Aggregator) Score(result types.MatchResult) int {
	return a.Calculate(result.Matched, result.Missing, result.HasDomainMismatch)
}

// Explain computes the score and reports how it was reached
func (a *Aggregator) Explain(matched, missing []types.MatchRecord, domainMismatch bool) Breakdown {
	var b Breakdown
	var weighted, total float64
	var criticalMatched, criticalMissed int

	for _, rec := range matched {
		w := a.w.importance(rec.Requirement.Importance)
		if skills.IsTechnical(rec.Requirement.Text) {
			w *= a.w.TechnicalMatched
			b.TechnicalTotal++
			b.TechnicalMatched++
		}
		weighted += float64(rec.Score) / 100 * w
		total += w
		if rec.Requirement.Importance == types.ImportanceCritical {
			criticalMatched++
		}
	}
	for _, rec := range missing {
		w := a.w.importance(rec.Requirement.Importance)
		if skills.IsTechnical(rec.Requirement.Text) {
			w *= a.w.TechnicalMissing
			b.TechnicalTotal++
		}
		total += w
		if rec.Requirement.Importance == types.ImportanceCritical {
			criticalMissed++
		}
	}

	b.CoverageMultiplier = 1
	if total == 0 {
		b.Final = a.w.Floor
		return b
	}

	b.Base = int(math.Round(weighted / total * 100))
	score := float64(b.Base)

	if b.TechnicalTotal > 0 {
		b.CoverageMultiplier = a.w.coverageMultiplier(float64(b.TechnicalMatched) / float64(b.TechnicalTotal))
		score *= b.CoverageMultiplier
	}
	if criticalMissed > criticalMatched {
		b.CriticalPenalized = true
		score *= a.w.CriticalPenalty
	}

	final := int(math.Round(score))
	if domainMismatch && final > a.w.MismatchCeiling {
		final = a.w.MismatchCeiling
		b.MismatchCapped = true
	}
	b.Final = clamp(final, a.w.Floor, a.w.Ceiling)
	return b
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

var defaultAggregator = NewAggregator(DefaultWeights())

// Calculate scores with the default weights
func Calculate(matched, missing []types.MatchRecord, domainMismatch bool) int {
	return defaultAggregator.Calculate(matched, missing, domainMismatch)
}
