package matching

import (
	"strings"
	"time"

	"github.com/jonathan/resume-matcher/internal/domains"
	"github.com/jonathan/resume-matcher/internal/skills"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Engine matches requirement sets against parsed résumés.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	th  Thresholds
	now func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used to measure open-ended date ranges
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an engine with the given thresholds
func NewEngine(th Thresholds, opts ...Option) *Engine {
	e := &Engine{th: th, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Thresholds returns the engine's tuning
func (e *Engine) Thresholds() Thresholds {
	return e.th
}

// candidate is one strategy's best guess for a requirement
type candidate struct {
	score     int
	matchType types.MatchType
	evidence  types.Evidence
	text      string // overrides evidence.Text() when set
	// uncapped candidates keep their score under a domain mismatch
	uncapped bool
}

// profileIndex caches per-résumé values shared by every requirement
type profileIndex struct {
	resume     *types.ResumeProfile
	text       string
	domains    domains.Set
	expDomains []domains.Set
	keywords   []string
	now        time.Time
}

func newProfileIndex(resume *types.ResumeProfile, keywords []string, now time.Time) *profileIndex {
	text := profileText(resume)
	idx := &profileIndex{
		resume:   resume,
		text:     text,
		domains:  domains.Detect(text),
		keywords: keywords,
		now:      now,
	}
	idx.expDomains = make([]domains.Set, len(resume.Experiences))
	for i, exp := range resume.Experiences {
		idx.expDomains[i] = domains.Detect(experienceText(exp))
	}
	return idx
}

// MatchAll scores every required and preferred requirement and partitions them into
// matched and missing. Each input requirement appears in exactly one output list.
func (e *Engine) MatchAll(resume *types.ResumeProfile, reqs *types.RequirementSet) types.MatchResult {
	result := types.MatchResult{
		Matched: []types.MatchRecord{},
		Missing: []types.MatchRecord{},
	}
	if reqs == nil {
		return result
	}
	if resume == nil {
		resume = &types.ResumeProfile{}
	}

	idx := newProfileIndex(resume, reqs.Keywords, e.now())
	for _, req := range reqs.All() {
		rec, matched := e.match(idx, req)
		if matched {
			result.Matched = append(result.Matched, rec)
		} else {
			result.Missing = append(result.Missing, rec)
		}
	}

	jdDomains := domains.Detect(jobText(reqs))
	result.HasDomainMismatch = len(jdDomains) > 0 && len(idx.domains) > 0 &&
		!domains.StrictOverlap(jdDomains, idx.domains)
	return result
}

// match scores a single requirement and reports whether it clears its threshold
func (e *Engine) match(idx *profileIndex, req types.Requirement) (types.MatchRecord, bool) {
	reqDomains := domains.Detect(req.Text)
	capped := !domains.Overlap(reqDomains, idx.domains)

	best := candidate{evidence: types.NoEvidence(), matchType: types.MatchMissing}
	consider := func(c candidate) {
		c.score = max(0, min(c.score, 100))
		if capped && !c.uncapped && c.score > e.th.DomainMismatchCap {
			c.score = e.th.DomainMismatchCap
		}
		if c.score > best.score {
			best = c
		}
	}

	for _, s := range idx.resume.Skills {
		consider(e.scoreSkill(s, req.Text))
	}
	for _, exp := range idx.resume.Experiences {
		for _, b := range exp.Bullets {
			consider(e.scoreBullet(b, req.Text, idx.keywords))
		}
		consider(e.scoreTitle(exp, req.Text))
	}
	for _, edu := range idx.resume.Education {
		consider(e.scoreEducation(edu, req))
	}
	consider(e.scoreExperienceYears(idx, req.Text, reqDomains))
	consider(e.scoreRawText(idx, req.Text))

	threshold := e.th.SoftMatch
	if isStrict(req.Text, reqDomains) {
		threshold = e.th.TechnicalMatch
	}
	matched := best.score >= threshold

	rec := types.MatchRecord{
		Requirement:  req,
		Evidence:     best.evidence,
		Score:        best.score,
		MatchType:    best.matchType,
		EvidenceText: best.text,
	}
	if rec.EvidenceText == "" {
		rec.EvidenceText = best.evidence.Text()
	}
	if !matched {
		rec.MatchType = types.MatchMissing
	}
	return rec, matched
}

// isStrict reports whether a requirement is technical or domain-specific
func isStrict(text string, reqDomains domains.Set) bool {
	return len(reqDomains) > 0 || skills.IsTechnical(text)
}

func profileText(resume *types.ResumeProfile) string {
	if strings.TrimSpace(resume.RawText) != "" {
		return resume.RawText
	}
	var sb strings.Builder
	for _, s := range resume.Skills {
		sb.WriteString(s.Name)
		sb.WriteString("\n")
	}
	for _, exp := range resume.Experiences {
		sb.WriteString(experienceText(exp))
		sb.WriteString("\n")
	}
	for _, edu := range resume.Education {
		sb.WriteString(edu.Degree + " " + edu.Institution)
		sb.WriteString("\n")
	}
	return sb.String()
}

func experienceText(exp types.Experience) string {
	parts := []string{exp.Title, exp.Company}
	for _, b := range exp.Bullets {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n")
}

func jobText(reqs *types.RequirementSet) string {
	parts := []string{reqs.Title}
	for _, r := range reqs.All() {
		parts = append(parts, r.Text)
	}
	parts = append(parts, reqs.Keywords...)
	return strings.Join(parts, "\n")
}
