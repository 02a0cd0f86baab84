// Package scoring folds per-requirement match records into one headline score.
package scoring

import (
	"fmt"

	"github.com/jonathan/resume-matcher/internal/types"
)

// CoverageTier applies Multiplier when the matched share of technical requirements is below Below
type CoverageTier struct {
	Below      float64 `json:"below" mapstructure:"below"`
	Multiplier float64 `json:"multiplier" mapstructure:"multiplier"`
}

// Weights holds every constant the aggregator uses
type Weights struct {
	Critical float64 `json:"critical" mapstructure:"critical" validate:"gt=0"`
	High     float64 `json:"high" mapstructure:"high" validate:"gt=0"`
	Medium   float64 `json:"medium" mapstructure:"medium" validate:"gt=0"`
	Low      float64 `json:"low" mapstructure:"low" validate:"gt=0"`

	TechnicalMatched float64 `json:"technical_matched" mapstructure:"technical_matched" validate:"gte=1"`
	TechnicalMissing float64 `json:"technical_missing" mapstructure:"technical_missing" validate:"gte=1"`

	// CoverageTiers are checked in order; the first tier whose bound exceeds coverage wins
	CoverageTiers   []CoverageTier `json:"coverage_tiers" mapstructure:"coverage_tiers"`
	CriticalPenalty float64        `json:"critical_penalty" mapstructure:"critical_penalty" validate:"gt=0,lte=1"`

	MismatchCeiling int `json:"mismatch_ceiling" mapstructure:"mismatch_ceiling" validate:"gte=0,lte=100"`
	Floor           int `json:"floor" mapstructure:"floor" validate:"gte=0,lte=100"`
	Ceiling         int `json:"ceiling" mapstructure:"ceiling" validate:"gte=0,lte=100,gtefield=Floor"`
}

// DefaultWeights returns the canonical aggregation constants: importance weights 3/2/1.5/1,
// technical amplification 1.5 when matched and 2.0 when missing, a mismatch ceiling of 45
// and bounds of [15, 95].
func DefaultWeights() Weights {
	return Weights{
		Critical: 3,
		High:     2,
		Medium:   1.5,
		Low:      1,

		TechnicalMatched: 1.5,
		TechnicalMissing: 2.0,

		CoverageTiers: []CoverageTier{
			{Below: 0.25, Multiplier: 0.5},
			{Below: 0.5, Multiplier: 0.7},
			{Below: 0.75, Multiplier: 0.85},
		},
		CriticalPenalty: 0.8,

		MismatchCeiling: 45,
		Floor:           15,
		Ceiling:         95,
	}
}

// Validate checks the relationships struct tags cannot express
func (w Weights) Validate() error {
	if w.Floor > w.MismatchCeiling {
		return fmt.Errorf("floor %d exceeds mismatch ceiling %d", w.Floor, w.MismatchCeiling)
	}
	prev := 0.0
	for i, tier := range w.CoverageTiers {
		if tier.Below <= prev {
			return fmt.Errorf("coverage tier %d: bound %.2f must increase", i, tier.Below)
		}
		if tier.Multiplier <= 0 || tier.Multiplier > 1 {
			return fmt.Errorf("coverage tier %d: multiplier %.2f out of (0, 1]", i, tier.Multiplier)
		}
		prev = tier.Below
	}
	return nil
}

// importance returns the base weight for an importance level
func (w Weights) importance(imp types.Importance) float64 {
	switch imp {
	case types.ImportanceCritical:
		return w.Critical
	case types.ImportanceHigh:
		return w.High
	case types.ImportanceLow:
		return w.Low
	default:
		return w.Medium
	}
}

// coverageMultiplier returns the penalty for a technical coverage ratio
func (w Weights) coverageMultiplier(coverage float64) float64 {
	for _, tier := range w.CoverageTiers {
		if coverage < tier.Below {
			return tier.Multiplier
		}
	}
	return 1
}
