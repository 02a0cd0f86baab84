package skills

import (
	"testing"

	"github.com/jonathan/resume-matcher/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSharedGroup(t *testing.T) {
	g, ok := SharedGroup("ES6", "Strong JavaScript skills", true)
	require.True(t, ok)
	assert.Equal(t, "javascript", g.Canonical)

	_, ok = SharedGroup("Python", "Strong JavaScript skills", true)
	assert.False(t, ok)
}

func TestSharedGroup_TechnicalOnlySkipsSoftGroups(t *testing.T) {
	_, ok := SharedGroup("mentoring junior staff", "leadership", true)
	assert.False(t, ok)

	g, ok := SharedGroup("mentoring junior staff", "leadership", false)
	require.True(t, ok)
	assert.Equal(t, "leadership", g.Canonical)
}

func TestGroups_AmbiguousMembersNeedWholeText(t *testing.T) {
	assert.Empty(t, Groups("willing to go the extra mile"))

	groups := Groups("Go")
	require.Len(t, groups, 1)
	assert.Equal(t, "golang", groups[0].Canonical)
}

func TestIsTechnical(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"5+ years of Kubernetes in production", true},
		{"Experience running demand generation programs", true},
		{"Proficiency in Figma", true},
		{"Manage a Salesforce pipeline", true},
		{"Excellent communication skills", false},
		{"Self-starter who thrives in ambiguity", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTechnical(tt.text))
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want types.SkillCategory
	}{
		{"Spanish", types.SkillLanguage},
		{"Jira", types.SkillTool},
		{"Leadership", types.SkillSoft},
		{"Kubernetes", types.SkillTechnical},
		{"Knitting", types.SkillOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.name))
		})
	}
}

func TestSignificantWords(t *testing.T) {
	words := SignificantWords("Designed and built scalable payment APIs with the payments team")
	assert.Equal(t, []string{"designed", "built", "scalable", "payment", "apis", "payments"}, words)
}

func TestTechnicalTerms_LongestFirst(t *testing.T) {
	hits := TechnicalTerms("Enterprise sales using Salesforce CRM")
	require.NotEmpty(t, hits)
	assert.Equal(t, "enterprise sales", hits[0])
	assert.Contains(t, hits, "crm")
}
