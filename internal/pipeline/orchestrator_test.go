package pipeline

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/types"
)

const sampleResume = `Jane Doe
jane@example.com

SKILLS
Go, PostgreSQL, Kubernetes

EXPERIENCE
Backend Engineer
Acme | 2019 - Present
- Built payment services in Go handling 2M requests per day
- Reduced API latency by 40%

EDUCATION
BSc Computer Science, State University, 2016`

const sampleJD = `Senior Backend Engineer
Company: Globex
- 3+ years of experience with Go
- Must have PostgreSQL
- Rust experience
- Kubernetes is a plus`

const analysisJSON = `{
  "title": "Senior Backend Engineer",
  "company": "Globex",
  "required": [
    {"text": "Go", "type": "skill", "importance": "critical"},
    {"text": "PostgreSQL", "type": "skill", "importance": "high"},
    {"text": "Rust experience", "type": "skill", "importance": "medium"}
  ],
  "preferred": [{"text": "Kubernetes", "type": "skill", "importance": "low"}],
  "keywords": ["go", "postgresql", "kubernetes"]
}`

// promptKind identifies which prompt a request carries
func promptKind(prompt string) string {
	switch {
	case strings.Contains(prompt, "Extract the structured requirements"):
		return "analyze"
	case strings.Contains(prompt, "flagged as sounding machine-written"):
		return "humanize"
	case strings.Contains(prompt, "Write a cover letter"):
		return "cover_letter"
	case strings.Contains(prompt, "Rewrite the candidate's résumé"):
		return "format"
	default:
		return "unknown"
	}
}

// fakeLLM answers by prompt kind and records every call
type fakeLLM struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     map[string]int
	requests  []llm.Request
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{
		responses: map[string]string{
			"analyze":      analysisJSON,
			"format":       "JANE DOE\nBACKEND ENGINEER",
			"cover_letter": "First draft cover letter.",
			"humanize":     "Rewritten cover letter.",
		},
		errs:  map[string]error{},
		calls: map[string]int{},
	}
}

func (f *fakeLLM) Generate(ctx context.Context, req llm.Request) (string, error) {
	kind := promptKind(req.Prompt)
	f.mu.Lock()
	f.calls[kind]++
	f.requests = append(f.requests, req)
	err, resp := f.errs[kind], f.responses[kind]
	f.mu.Unlock()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}
	return resp, err
}

func (f *fakeLLM) Close() error { return nil }

func (f *fakeLLM) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[kind]
}

// fakeDetector returns scores in order, repeating the last one
type fakeDetector struct {
	mu     sync.Mutex
	scores []int
	texts  []string
}

func (d *fakeDetector) Detect(_ context.Context, text string) types.DetectionInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.texts = append(d.texts, text)
	score := 0
	if len(d.scores) > 0 {
		idx := len(d.texts) - 1
		if idx >= len(d.scores) {
			idx = len(d.scores) - 1
		}
		score = d.scores[idx]
	}
	return types.DetectionInfo{
		Score:     score,
		Feedback:  "detector feedback",
		Sentences: []string{"First draft cover letter."},
	}
}

type fakeStore struct {
	saved []*types.TailoringOutcome
	err   error
}

func (s *fakeStore) SaveOutcome(_ context.Context, o *types.TailoringOutcome) error {
	s.saved = append(s.saved, o)
	return s.err
}

type eventLog struct {
	mu     sync.Mutex
	events []ProgressEvent
}

func (l *eventLog) record(ev ProgressEvent) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) steps() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []string
	for _, ev := range l.events {
		out = append(out, string(ev.Step)+":"+strconv.Itoa(ev.Progress))
	}
	return out
}

func newTestOrchestrator(client llm.Client, det *fakeDetector, opts ...Option) *Orchestrator {
	base := []Option{WithDetector(det), WithClock(steppingClock())}
	return New(client, append(base, opts...)...)
}

// steppingClock advances 5ms per call so processing time is deterministic and positive
func steppingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(5 * time.Millisecond)
		return now
	}
}

func TestTailor_FullRun(t *testing.T) {
	client := newFakeLLM()
	det := &fakeDetector{scores: []int{20}}
	store := &fakeStore{}
	events := &eventLog{}

	o := newTestOrchestrator(client, det, WithHistory(store))
	outcome, err := o.Tailor(context.Background(), TailorRequest{
		ResumeText: sampleResume,
		JobText:    sampleJD,
		RequestID:  "req-1",
		OnProgress: events.record,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"parsing:10", "analyzing:25", "matching:45", "formatting:60",
		"cover_letter:60", "ai_check:85", "complete:100",
	}, events.steps())
	assert.Equal(t, "req-1", events.events[0].RequestID)

	assert.Equal(t, "JANE DOE\nBACKEND ENGINEER", outcome.ReformattedResume)
	assert.Equal(t, "First draft cover letter.", outcome.CoverLetter)
	assert.NotEmpty(t, outcome.ID)
	assert.False(t, outcome.Quick)
	assert.GreaterOrEqual(t, outcome.MatchScore, 15)
	assert.LessOrEqual(t, outcome.MatchScore, 95)
	assert.Equal(t, 4, len(outcome.MatchedItems)+len(outcome.MissingItems))
	assert.Positive(t, outcome.ProcessingTimeMs)
	require.NotNil(t, outcome.Requirements)
	assert.Equal(t, "Globex", outcome.Requirements.Company)

	require.NotNil(t, outcome.Detection)
	assert.True(t, outcome.Detection.IsHumanPassing)
	assert.False(t, outcome.Detection.Regenerated)

	assert.Equal(t, 1, client.count("analyze"))
	assert.Equal(t, 1, client.count("format"))
	assert.Equal(t, 1, client.count("cover_letter"))
	assert.Equal(t, 0, client.count("humanize"))
	require.Len(t, store.saved, 1)
	assert.Same(t, outcome, store.saved[0])
}

func TestTailor_PromptsCarryMatchEvidence(t *testing.T) {
	client := newFakeLLM()
	o := newTestOrchestrator(client, &fakeDetector{})

	_, err := o.Tailor(context.Background(), TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.NoError(t, err)

	for _, req := range client.requests {
		switch promptKind(req.Prompt) {
		case "format":
			assert.Contains(t, req.Prompt, "Target role: Senior Backend Engineer at Globex")
			assert.Contains(t, req.Prompt, "- Rust experience")
			assert.Contains(t, req.Prompt, "Reduced API latency by 40%")
			assert.Equal(t, llm.TierAdvanced, req.Tier)
		case "cover_letter":
			assert.Contains(t, req.Prompt, "Write a cover letter from Jane Doe")
			assert.NotContains(t, req.Prompt, "{{.")
		}
	}
}

func TestTailor_RegeneratesOnceWhenFlagged(t *testing.T) {
	tests := []struct {
		name         string
		scores       []int
		wantPassing  bool
		wantFeedback string
	}{
		{"recheck passes", []int{75, 30}, true, "now scores 30"},
		{"recheck still fails", []int{75, 70}, false, "still scores 70"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeLLM()
			det := &fakeDetector{scores: tt.scores}
			events := &eventLog{}

			outcome, err := newTestOrchestrator(client, det).Tailor(context.Background(), TailorRequest{
				ResumeText: sampleResume, JobText: sampleJD, OnProgress: events.record,
			})
			require.NoError(t, err)

			assert.Equal(t, 1, client.count("humanize"))
			assert.Equal(t, []string{"First draft cover letter.", "Rewritten cover letter."}, det.texts)
			assert.Equal(t, "Rewritten cover letter.", outcome.CoverLetter)
			require.NotNil(t, outcome.Detection)
			assert.True(t, outcome.Detection.Regenerated)
			assert.Equal(t, tt.wantPassing, outcome.Detection.IsHumanPassing)
			assert.Contains(t, outcome.Detection.Feedback, tt.wantFeedback)
			assert.Equal(t, []string{
				"parsing:10", "analyzing:25", "matching:45", "formatting:60", "cover_letter:60",
				"ai_check:85", "cover_letter_retry:90", "ai_check:95", "complete:100",
			}, events.steps())
		})
	}
}

func TestTailor_HumanizePromptListsFlaggedPhrases(t *testing.T) {
	client := newFakeLLM()
	client.responses["cover_letter"] = "I am thrilled to apply. Moreover, I ship Go services."

	_, err := newTestOrchestrator(client, &fakeDetector{scores: []int{80, 10}}).Tailor(context.Background(),
		TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.NoError(t, err)

	var humanize string
	for _, req := range client.requests {
		if promptKind(req.Prompt) == "humanize" {
			humanize = req.Prompt
		}
	}
	assert.Contains(t, humanize, "Detector feedback: detector feedback")
	assert.Contains(t, humanize, `"thrilled"`)
	assert.Contains(t, humanize, `"moreover"`)
	assert.Contains(t, humanize, "I am thrilled to apply. Moreover, I ship Go services.")
}

func TestTailor_Failures(t *testing.T) {
	timeoutErr := llm.NewError(llm.KindTimeout, "deadline exceeded", context.DeadlineExceeded)
	apiErr := llm.NewError(llm.KindAPI, "bad request", nil)

	tests := []struct {
		name     string
		resume   string
		jd       string
		errs     map[string]error
		response map[string]string
		scores   []int
		wantKind ErrorKind
	}{
		{name: "empty résumé", resume: "  \n ", jd: sampleJD, wantKind: KindParse},
		{name: "empty job description", resume: sampleResume, jd: "", wantKind: KindJDAnalysis},
		{name: "formatting api error", resume: sampleResume, jd: sampleJD, errs: map[string]error{"format": apiErr}, wantKind: KindFormatting},
		{name: "cover letter api error", resume: sampleResume, jd: sampleJD, errs: map[string]error{"cover_letter": apiErr}, wantKind: KindCoverLetter},
		{name: "empty cover letter", resume: sampleResume, jd: sampleJD, response: map[string]string{"cover_letter": "  "}, wantKind: KindCoverLetter},
		{name: "formatting timeout", resume: sampleResume, jd: sampleJD, errs: map[string]error{"format": timeoutErr}, wantKind: KindTimeout},
		{name: "regeneration timeout", resume: sampleResume, jd: sampleJD, errs: map[string]error{"humanize": timeoutErr}, scores: []int{90}, wantKind: KindTimeout},
		{name: "regeneration api error", resume: sampleResume, jd: sampleJD, errs: map[string]error{"humanize": apiErr}, scores: []int{90}, wantKind: KindCoverLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newFakeLLM()
			for k, v := range tt.errs {
				client.errs[k] = v
			}
			for k, v := range tt.response {
				client.responses[k] = v
			}
			store := &fakeStore{}

			outcome, err := newTestOrchestrator(client, &fakeDetector{scores: tt.scores}, WithHistory(store)).Tailor(
				context.Background(), TailorRequest{ResumeText: tt.resume, JobText: tt.jd})

			require.Error(t, err)
			assert.Nil(t, outcome)
			var te *TailoringError
			require.ErrorAs(t, err, &te)
			assert.Equal(t, tt.wantKind, te.Kind)
			assert.Empty(t, store.saved)
		})
	}
}

func TestTailor_RetriedTimeoutKeepsKind(t *testing.T) {
	client := newFakeLLM()
	client.errs["format"] = llm.NewError(llm.KindTimeout, "deadline exceeded", context.DeadlineExceeded)

	cfg := llm.DefaultConfig()
	cfg.MaxRetries = 3
	noWait := func(context.Context, time.Duration) error { return nil }
	retrying := llm.NewRetryingClient(client, cfg, llm.WithSleep(noWait))

	outcome, err := newTestOrchestrator(retrying, &fakeDetector{}).Tailor(context.Background(),
		TailorRequest{ResumeText: sampleResume, JobText: sampleJD})

	require.Error(t, err)
	assert.Nil(t, outcome)
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.Equal(t, 3, client.count("format"), "every attempt reaches the model")
	assert.Equal(t, 1, client.count("analyze"))

	var le *llm.Error
	require.ErrorAs(t, err, &le)
	assert.Equal(t, llm.KindTimeout, le.Kind)
}

func TestTailor_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOrchestrator(newFakeLLM(), &fakeDetector{}).Tailor(ctx, TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	assert.Equal(t, KindJDAnalysis, KindOf(err))
}

func TestTailor_FallbackToTemplates(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	client := newFakeLLM()
	client.errs["format"] = llm.NewError(llm.KindAPI, "bad request", nil)
	client.errs["cover_letter"] = llm.NewError(llm.KindRateLimit, "slow down", nil)

	opts := DefaultOptions()
	opts.FallbackToTemplates = true
	o := newTestOrchestrator(client, &fakeDetector{}, WithOptions(opts), WithLogger(zap.New(core)))

	outcome, err := o.Tailor(context.Background(), TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.NoError(t, err)

	assert.Contains(t, outcome.ReformattedResume, "SKILLS")
	assert.True(t, strings.HasPrefix(outcome.CoverLetter, "Dear Hiring Team,"))
	assert.Contains(t, outcome.CoverLetter, "the Senior Backend Engineer role at Globex")
	assert.False(t, outcome.Quick)
	assert.Equal(t, 1, logs.FilterMessage("résumé formatting failed, using template").Len())
	assert.Equal(t, 1, logs.FilterMessage("cover letter generation failed, using template").Len())
}

func TestTailor_NilClientWithTemplates(t *testing.T) {
	opts := DefaultOptions()
	opts.FallbackToTemplates = true

	outcome, err := New(nil, WithDetector(&fakeDetector{}), WithOptions(opts)).Tailor(context.Background(),
		TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.NoError(t, err)
	assert.NotEmpty(t, outcome.CoverLetter)
	assert.NotEmpty(t, outcome.Requirements.Required, "nil client analyzes with the deterministic extractor")
}

func TestTailorQuick(t *testing.T) {
	client := newFakeLLM()
	det := &fakeDetector{scores: []int{99}}
	events := &eventLog{}

	outcome, err := newTestOrchestrator(client, det).TailorQuick(context.Background(), TailorRequest{
		ResumeText: sampleResume, JobText: sampleJD, OnProgress: events.record,
	})
	require.NoError(t, err)

	assert.Empty(t, client.requests, "quick mode makes no model calls")
	assert.Empty(t, det.texts, "quick mode skips authorship detection")
	assert.True(t, outcome.Quick)
	assert.Nil(t, outcome.Detection)
	assert.True(t, strings.HasPrefix(outcome.ReformattedResume, "Jane Doe"))
	assert.Contains(t, outcome.CoverLetter, "Globex")
	assert.Equal(t, []string{"parsing:10", "analyzing:25", "matching:45", "formatting:60", "complete:100"}, events.steps())
	assert.Equal(t, outcome.Requirements.Count(), len(outcome.MatchedItems)+len(outcome.MissingItems))
}

func TestStream(t *testing.T) {
	o := newTestOrchestrator(newFakeLLM(), &fakeDetector{scores: []int{75, 40}})
	hook := &eventLog{}

	events, results := o.Stream(context.Background(), TailorRequest{
		ResumeText: sampleResume, JobText: sampleJD, OnProgress: hook.record,
	}, false)

	var got []ProgressEvent
	for ev := range events {
		got = append(got, ev)
	}
	res := <-results

	require.NoError(t, res.Err)
	require.NotNil(t, res.Outcome)
	require.NotEmpty(t, got)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i].Progress, got[i-1].Progress)
	}
	assert.Equal(t, ProgressEvent{Step: StepComplete, Progress: 100, Message: "Done", RequestID: got[0].RequestID}, got[len(got)-1])
	assert.Len(t, hook.events, len(got))

	_, open := <-results
	assert.False(t, open)
}

func TestStream_Failure(t *testing.T) {
	client := newFakeLLM()
	client.errs["format"] = errors.New("boom")

	events, results := newTestOrchestrator(client, &fakeDetector{}).Stream(context.Background(),
		TailorRequest{ResumeText: sampleResume, JobText: sampleJD}, false)

	var last ProgressEvent
	for ev := range events {
		last = ev
	}
	res := <-results

	assert.Nil(t, res.Outcome)
	assert.Equal(t, KindFormatting, KindOf(res.Err))
	assert.NotEqual(t, StepComplete, last.Step)
}

func TestTailor_HistoryFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	store := &fakeStore{err: errors.New("connection refused")}

	outcome, err := newTestOrchestrator(newFakeLLM(), &fakeDetector{}, WithHistory(store), WithLogger(zap.New(core))).
		TailorQuick(context.Background(), TailorRequest{ResumeText: sampleResume, JobText: sampleJD})
	require.NoError(t, err)
	assert.NotNil(t, outcome)
	assert.Equal(t, 1, logs.FilterMessage("failed to save outcome").Len())
}

func TestStageError(t *testing.T) {
	inner := &TailoringError{Kind: KindParse, Message: "x"}
	assert.Same(t, inner, stageError(KindFormatting, "y", inner))
	assert.Equal(t, KindTimeout, stageError(KindFormatting, "y", context.DeadlineExceeded).Kind)
	assert.Equal(t, KindCoverLetter, stageError(KindCoverLetter, "y", llm.NewError(llm.KindRateLimit, "z", nil)).Kind)
	assert.Equal(t, KindAPI, KindOf(errors.New("plain")))
}

func TestReporterIsMonotonic(t *testing.T) {
	events := &eventLog{}
	r := newReporter("id", events.record)
	r.emit(StepMatching, 45, "")
	r.emit(StepAnalyzing, 25, "")
	assert.Equal(t, []string{"matching:45", "analyzing:45"}, events.steps())
}
