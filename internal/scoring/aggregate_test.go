package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-matcher/internal/types"
)

func rec(text string, imp types.Importance, score int) types.MatchRecord {
	return types.MatchRecord{
		Requirement: types.Requirement{Text: text, Importance: imp},
		Score:       score,
		Evidence:    types.NoEvidence(),
	}
}

func TestCalculate(t *testing.T) {
	w := DefaultWeights()
	tests := []struct {
		name     string
		matched  []types.MatchRecord
		missing  []types.MatchRecord
		mismatch bool
		want     int
	}{
		{
			name: "empty input returns floor",
			want: w.Floor,
		},
		{
			name:    "perfect soft match is clamped to ceiling",
			matched: []types.MatchRecord{rec("Great communicator", types.ImportanceHigh, 100)},
			want:    w.Ceiling,
		},
		{
			name:    "all missing is clamped to floor",
			missing: []types.MatchRecord{rec("Great communicator", types.ImportanceHigh, 10)},
			want:    w.Floor,
		},
		{
			name: "weighted average of soft requirements",
			matched: []types.MatchRecord{
				rec("Great communicator", types.ImportanceMedium, 80),
			},
			missing: []types.MatchRecord{
				rec("Enjoys mentoring", types.ImportanceLow, 20),
			},
			// 0.8*1.5 / (1.5+1) = 48
			want: 48,
		},
		{
			name: "full technical coverage has no penalty",
			matched: []types.MatchRecord{
				rec("Kubernetes", types.ImportanceHigh, 90),
				rec("Terraform", types.ImportanceHigh, 90),
			},
			want: 90,
		},
		{
			name: "mismatch caps a high score",
			matched: []types.MatchRecord{
				rec("Great communicator", types.ImportanceHigh, 95),
			},
			mismatch: true,
			want:     w.MismatchCeiling,
		},
	}

	a := NewAggregator(w)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, a.Calculate(tt.matched, tt.missing, tt.mismatch))
		})
	}
}

func TestExplain_TechnicalCoverageTiers(t *testing.T) {
	a := NewAggregator(DefaultWeights())

	matched := []types.MatchRecord{rec("Kubernetes", types.ImportanceMedium, 90)}
	missing := []types.MatchRecord{
		rec("Terraform", types.ImportanceMedium, 0),
		rec("Kafka", types.ImportanceMedium, 0),
		rec("GraphQL", types.ImportanceMedium, 0),
	}

	b := a.Explain(matched, missing, false)

	assert.Equal(t, 4, b.TechnicalTotal)
	assert.Equal(t, 1, b.TechnicalMatched)
	// coverage 0.25 falls in the < 0.5 tier
	assert.InDelta(t, 0.7, b.CoverageMultiplier, 1e-9)
	// 0.9*2.25 / (2.25 + 3*3) = 18
	assert.Equal(t, 18, b.Base)
	assert.Equal(t, DefaultWeights().Floor, b.Final)
}

func TestExplain_MissingTechnicalWeighsMoreThanMissingSoft(t *testing.T) {
	a := NewAggregator(DefaultWeights())
	matched := []types.MatchRecord{rec("Great communicator", types.ImportanceMedium, 90)}

	softMiss := a.Explain(matched, []types.MatchRecord{rec("Team player", types.ImportanceMedium, 0)}, false)
	techMiss := a.Explain(matched, []types.MatchRecord{rec("Kubernetes", types.ImportanceMedium, 0)}, false)

	assert.Less(t, techMiss.Base, softMiss.Base)
	assert.Less(t, techMiss.Final, softMiss.Final)
}

func TestExplain_CriticalPenalty(t *testing.T) {
	a := NewAggregator(DefaultWeights())

	matched := []types.MatchRecord{rec("Great communicator", types.ImportanceCritical, 90)}
	missing := []types.MatchRecord{
		rec("Owns budgets", types.ImportanceCritical, 0),
		rec("Travels monthly", types.ImportanceCritical, 0),
	}

	b := a.Explain(matched, missing, false)
	assert.True(t, b.CriticalPenalized)
	// base round(0.9*3/9*100)=30, then *0.8
	assert.Equal(t, 30, b.Base)
	assert.Equal(t, 24, b.Final)

	b = a.Explain(matched, missing[:1], false)
	assert.False(t, b.CriticalPenalized, "ties are not penalized")
}

func TestCalculate_Bounds(t *testing.T) {
	w := DefaultWeights()
	a := NewAggregator(w)
	rng := rand.New(rand.NewSource(7))
	imps := []types.Importance{types.ImportanceCritical, types.ImportanceHigh, types.ImportanceMedium, types.ImportanceLow}
	texts := []string{"Kubernetes", "Great communicator", "Salesforce", "Figma", "Self starter"}

	for i := 0; i < 500; i++ {
		var matched, missing []types.MatchRecord
		for j := 0; j < rng.Intn(8); j++ {
			r := rec(texts[rng.Intn(len(texts))], imps[rng.Intn(len(imps))], rng.Intn(101))
			if rng.Intn(2) == 0 {
				matched = append(matched, r)
			} else {
				missing = append(missing, r)
			}
		}
		mismatch := rng.Intn(2) == 0

		got := a.Calculate(matched, missing, mismatch)
		require.GreaterOrEqual(t, got, w.Floor)
		require.LessOrEqual(t, got, w.Ceiling)
		if mismatch {
			require.LessOrEqual(t, got, w.MismatchCeiling)
		}
	}
}

func TestScore_UsesMatchResult(t *testing.T) {
	a := NewAggregator(DefaultWeights())
	result := types.MatchResult{
		Matched:           []types.MatchRecord{rec("Great communicator", types.ImportanceHigh, 95)},
		HasDomainMismatch: true,
	}
	assert.Equal(t, DefaultWeights().MismatchCeiling, a.Score(result))
}

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())

	w := DefaultWeights()
	w.Floor = 50
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.CoverageTiers = []CoverageTier{{Below: 0.5, Multiplier: 0.7}, {Below: 0.25, Multiplier: 0.5}}
	assert.Error(t, w.Validate())

	w = DefaultWeights()
	w.CoverageTiers = []CoverageTier{{Below: 0.5, Multiplier: 1.5}}
	assert.Error(t, w.Validate())
}

func TestCalculate_PackageDefault(t *testing.T) {
	matched := []types.MatchRecord{rec("Kubernetes", types.ImportanceHigh, 90)}
	assert.Equal(t, NewAggregator(DefaultWeights()).Calculate(matched, nil, false), Calculate(matched, nil, false))
}
