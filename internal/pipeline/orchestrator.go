// Package pipeline sequences a tailoring run: résumé parsing, requirement extraction,
// matching and scoring, concurrent résumé formatting and cover letter drafting, and the
// authorship check with a single regeneration.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/detector"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/resume"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

// HistoryStore persists finished outcomes. Save failures are logged, never returned.
type HistoryStore interface {
	SaveOutcome(ctx context.Context, o *types.TailoringOutcome) error
}

// Options holds orchestrator policy
type Options struct {
	// DetectionThreshold is the detector score above which the cover letter is regenerated once
	DetectionThreshold int
	// FallbackToTemplates replaces a failed formatting or cover letter call with the quick template output
	FallbackToTemplates bool
	// Timeout bounds a whole run; zero means no bound beyond the caller's context
	Timeout time.Duration
	// Tier selects the model used for generation calls
	Tier llm.ModelTier
}

// DefaultOptions returns the default orchestrator policy
func DefaultOptions() Options {
	return Options{
		DetectionThreshold: detector.DefaultThreshold,
		Tier:               llm.TierAdvanced,
	}
}

// TailorRequest is the input of one run
type TailorRequest struct {
	ResumeText string
	JobText    string
	// RequestID correlates logs and progress events; generated when empty
	RequestID string
	// OnProgress is invoked synchronously for every progress event
	OnProgress ProgressCallback
}

// Result is delivered once on the result channel of Stream
type Result struct {
	Outcome *types.TailoringOutcome
	Err     error
}

// Orchestrator runs tailoring requests. It holds no per-run state and is safe for concurrent use.
type Orchestrator struct {
	llm        llm.Client
	detector   detector.Detector
	analyzer   *parsing.Analyzer
	engine     *matching.Engine
	aggregator *scoring.Aggregator
	store      HistoryStore
	logger     *zap.Logger
	opts       Options
	now        func() time.Time
}

// Option configures an Orchestrator
type Option func(*Orchestrator)

// WithDetector sets the authorship detector
func WithDetector(d detector.Detector) Option {
	return func(o *Orchestrator) { o.detector = d }
}

// WithAnalyzer sets the requirement extractor
func WithAnalyzer(a *parsing.Analyzer) Option {
	return func(o *Orchestrator) { o.analyzer = a }
}

// WithEngine sets the matching engine
func WithEngine(e *matching.Engine) Option {
	return func(o *Orchestrator) { o.engine = e }
}

// WithAggregator sets the score aggregator
func WithAggregator(a *scoring.Aggregator) Option {
	return func(o *Orchestrator) { o.aggregator = a }
}

// WithHistory persists every successful outcome
func WithHistory(s HistoryStore) Option {
	return func(o *Orchestrator) { o.store = s }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithOptions replaces the orchestrator policy
func WithOptions(opts Options) Option {
	return func(o *Orchestrator) { o.opts = opts }
}

// WithClock overrides time.Now for processing time measurement
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// New creates an orchestrator around a model client. A nil client makes every
// generation call fail, which FallbackToTemplates turns into template output.
func New(client llm.Client, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		llm:  client,
		opts: DefaultOptions(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	o.logger = logger.OrNop(o.logger).With(zap.String("component", "pipeline"))
	if o.detector == nil {
		o.detector = detector.NewHTTPClient(detector.DefaultOptions(), nil, o.logger)
	}
	if o.analyzer == nil {
		o.analyzer = parsing.NewAnalyzer(client, parsing.WithLogger(o.logger))
	}
	if o.engine == nil {
		o.engine = matching.NewEngine(matching.DefaultThresholds())
	}
	if o.aggregator == nil {
		o.aggregator = scoring.NewAggregator(scoring.DefaultWeights())
	}
	if o.opts.Tier == "" {
		o.opts.Tier = llm.TierAdvanced
	}
	return o
}

// Tailor runs the full pipeline
func (o *Orchestrator) Tailor(ctx context.Context, req TailorRequest) (*types.TailoringOutcome, error) {
	return o.run(ctx, req, false)
}

// TailorQuick runs the deterministic pipeline: no model calls, template output
func (o *Orchestrator) TailorQuick(ctx context.Context, req TailorRequest) (*types.TailoringOutcome, error) {
	return o.run(ctx, req, true)
}

// Stream runs a request in the background. Progress events arrive in order on the
// first channel, which is closed before the single Result is sent on the second.
// Callers must drain the progress channel or cancel ctx.
func (o *Orchestrator) Stream(ctx context.Context, req TailorRequest, quick bool) (<-chan ProgressEvent, <-chan Result) {
	events := make(chan ProgressEvent, 16)
	results := make(chan Result, 1)

	hook := req.OnProgress
	req.OnProgress = func(ev ProgressEvent) {
		if hook != nil {
			hook(ev)
		}
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		var res Result
		defer func() {
			close(events)
			results <- res
			close(results)
		}()
		res.Outcome, res.Err = o.run(ctx, req, quick)
	}()

	return events, results
}

func (o *Orchestrator) run(ctx context.Context, req TailorRequest, quick bool) (outcome *types.TailoringOutcome, err error) {
	start := o.now()
	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := o.logger.With(zap.String(logger.FieldRequestID, requestID), zap.Bool("quick", quick))

	defer func() {
		if p := recover(); p != nil {
			log.Error("tailoring run panicked", zap.Any("panic", p))
			outcome, err = nil, &TailoringError{Kind: KindAPI, Message: fmt.Sprintf("unexpected failure: %v", p)}
		}
	}()

	if o.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.opts.Timeout)
		defer cancel()
	}
	rep := newReporter(requestID, req.OnProgress)

	rep.emit(StepParsing, progressParsing, "Parsing résumé")
	profile, err := parseResume(req.ResumeText)
	if err != nil {
		return nil, o.fail(log, StepParsing, err)
	}

	rep.emit(StepAnalyzing, progressAnalyzing, "Analyzing job description")
	reqs, err := o.analyze(ctx, req.JobText, quick)
	if err != nil {
		return nil, o.fail(log, StepAnalyzing, err)
	}

	rep.emit(StepMatching, progressMatching, "Matching résumé against requirements")
	result, score, err := o.match(profile, reqs)
	if err != nil {
		return nil, o.fail(log, StepMatching, err)
	}
	log.Info("matched requirements",
		zap.Int("matched", len(result.Matched)),
		zap.Int("missing", len(result.Missing)),
		zap.Bool("domain_mismatch", result.HasDomainMismatch),
		zap.Int("score", score))

	outcome = &types.TailoringOutcome{
		ID:           uuid.NewString(),
		MatchScore:   score,
		MatchedItems: result.Matched,
		MissingItems: result.Missing,
		Requirements: reqs,
		Quick:        quick,
		CreatedAt:    start.UTC(),
	}

	job := &generationInput{profile: profile, reqs: reqs, result: result}
	if quick {
		rep.emit(StepFormatting, progressGenerating, "Building résumé and cover letter from templates")
		outcome.ReformattedResume, outcome.CoverLetter, err = quickTemplates(job)
		if err != nil {
			return nil, o.fail(log, StepFormatting, err)
		}
	} else {
		rep.emit(StepFormatting, progressGenerating, "Formatting résumé")
		rep.emit(StepCoverLetter, progressGenerating, "Writing cover letter")
		outcome.ReformattedResume, outcome.CoverLetter, err = o.generate(ctx, log, job)
		if err != nil {
			return nil, o.fail(log, StepFormatting, err)
		}

		rep.emit(StepAICheck, progressAICheck, "Checking cover letter authorship")
		outcome.CoverLetter, outcome.Detection, err = o.checkAuthorship(ctx, log, rep, job, outcome.CoverLetter)
		if err != nil {
			return nil, o.fail(log, StepCoverLetterRetry, err)
		}
	}

	outcome.ProcessingTimeMs = o.now().Sub(start).Milliseconds()
	if o.store != nil {
		if err := o.store.SaveOutcome(ctx, outcome); err != nil {
			log.Warn("failed to save outcome", zap.Error(err))
		}
	}

	rep.emit(StepComplete, progressComplete, "Done")
	log.Info("tailoring complete",
		zap.String("outcome_id", outcome.ID),
		zap.Int64("processing_time_ms", outcome.ProcessingTimeMs))
	return outcome, nil
}

func (o *Orchestrator) fail(log *zap.Logger, step Step, err error) error {
	log.Warn("tailoring failed", zap.String(logger.FieldStep, string(step)), zap.String("kind", string(KindOf(err))), zap.Error(err))
	return err
}

func parseResume(text string) (*types.ResumeProfile, error) {
	cleaned := ingestion.CleanText(text)
	if cleaned == "" {
		return nil, &TailoringError{Kind: KindParse, Message: "résumé is empty"}
	}
	return resume.Parse(cleaned), nil
}

func (o *Orchestrator) analyze(ctx context.Context, jobText string, quick bool) (*types.RequirementSet, error) {
	cleaned := ingestion.CleanText(jobText)
	if cleaned == "" {
		return nil, &TailoringError{Kind: KindJDAnalysis, Message: "job description is empty"}
	}
	if quick {
		return parsing.FallbackExtract(cleaned), nil
	}
	reqs, err := o.analyzer.Analyze(ctx, cleaned)
	if err != nil {
		return nil, stageError(KindJDAnalysis, "job description analysis failed", err)
	}
	return reqs, nil
}

func (o *Orchestrator) match(profile *types.ResumeProfile, reqs *types.RequirementSet) (result types.MatchResult, score int, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &TailoringError{Kind: KindMatching, Message: fmt.Sprintf("matching failed: %v", p)}
		}
	}()
	result = o.engine.MatchAll(profile, reqs)
	return result, o.aggregator.Score(result), nil
}

// jobLabels returns the title and company used in prompts
func jobLabels(reqs *types.RequirementSet) (title, company string) {
	title = strings.TrimSpace(reqs.Title)
	if title == "" {
		title = "the advertised role"
	}
	company = strings.TrimSpace(reqs.Company)
	if company == "" {
		company = "the company"
	}
	return title, company
}
