package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/prompts"
	"github.com/jonathan/resume-matcher/internal/rendering"
	"github.com/jonathan/resume-matcher/internal/rewriting"
	"github.com/jonathan/resume-matcher/internal/types"
)

const (
	formatMaxTokens      = 4096
	coverLetterMaxTokens = 1024
	formatTemperature    = 0.3
	letterTemperature    = 0.7
	humanizeTemperature  = 0.9
)

// generationInput is everything the generation calls are grounded on
type generationInput struct {
	profile *types.ResumeProfile
	reqs    *types.RequirementSet
	result  types.MatchResult
}

// generate formats the résumé and drafts the cover letter concurrently
func (o *Orchestrator) generate(ctx context.Context, log *zap.Logger, job *generationInput) (formatted, letter string, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := o.formatResume(gctx, job)
		if err == nil {
			formatted = text
			return nil
		}
		if o.opts.FallbackToTemplates && ctx.Err() == nil {
			log.Warn("résumé formatting failed, using template", zap.Error(err))
			if formatted, err = rendering.QuickResume(job.profile, job.result); err == nil {
				return nil
			}
		}
		return stageError(KindFormatting, "résumé formatting failed", err)
	})

	g.Go(func() error {
		text, err := o.writeCoverLetter(gctx, job)
		if err == nil {
			letter = text
			return nil
		}
		if o.opts.FallbackToTemplates && ctx.Err() == nil {
			log.Warn("cover letter generation failed, using template", zap.Error(err))
			if letter, err = rendering.QuickCoverLetter(job.profile, job.reqs, job.result); err == nil {
				return nil
			}
		}
		return stageError(KindCoverLetter, "cover letter generation failed", err)
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return formatted, letter, nil
}

// checkAuthorship runs the detector and, above the threshold, regenerates the letter
// exactly once. The regenerated letter is kept whatever the recheck says.
func (o *Orchestrator) checkAuthorship(ctx context.Context, log *zap.Logger, rep *reporter, job *generationInput, letter string) (string, *types.DetectionInfo, error) {
	threshold := o.opts.DetectionThreshold

	info := o.detector.Detect(ctx, letter)
	info.IsHumanPassing = info.Score <= threshold
	if info.IsHumanPassing {
		return letter, &info, nil
	}

	log.Info("cover letter flagged as machine-written, regenerating", zap.Int("score", info.Score), zap.Int("threshold", threshold))
	rep.emit(StepCoverLetterRetry, progressRetry, "Rewriting cover letter to sound more natural")

	regenerated, err := o.humanize(ctx, job, letter, info)
	if err != nil {
		if o.opts.FallbackToTemplates && ctx.Err() == nil {
			log.Warn("cover letter regeneration failed, keeping first draft", zap.Error(err))
			return letter, &info, nil
		}
		return "", nil, stageError(KindCoverLetter, "cover letter regeneration failed", err)
	}

	rep.emit(StepAICheck, progressRecheck, "Rechecking cover letter authorship")
	recheck := o.detector.Detect(ctx, regenerated)
	recheck.IsHumanPassing = recheck.Score <= threshold
	recheck.Regenerated = true
	recheck.Feedback = rewriting.AdjustFeedback(recheck, threshold, regenerated)
	return regenerated, &recheck, nil
}

func (o *Orchestrator) formatResume(ctx context.Context, job *generationInput) (string, error) {
	title, company := jobLabels(job.reqs)
	prompt, err := prompts.Render(prompts.GenerationFile, prompts.KeyFormatResume, map[string]string{
		"JobTitle":       title,
		"Company":        company,
		"Keywords":       strings.Join(job.reqs.Keywords, ", "),
		"MatchedSummary": matchedSummary(job.result.Matched),
		"MissingSummary": missingSummary(job.result.Missing),
		"ResumeText":     job.profile.RawText,
	})
	if err != nil {
		return "", err
	}
	return o.complete(ctx, prompt, formatMaxTokens, formatTemperature)
}

func (o *Orchestrator) writeCoverLetter(ctx context.Context, job *generationInput) (string, error) {
	title, company := jobLabels(job.reqs)
	name := job.profile.CandidateName()
	if name == "" {
		name = "the candidate"
	}
	prompt, err := prompts.Render(prompts.GenerationFile, prompts.KeyCoverLetter, map[string]string{
		"CandidateName": name,
		"JobTitle":      title,
		"Company":       company,
		"Evidence":      matchedSummary(job.result.Matched),
	})
	if err != nil {
		return "", err
	}
	return o.complete(ctx, prompt, coverLetterMaxTokens, letterTemperature)
}

func (o *Orchestrator) humanize(ctx context.Context, job *generationInput, letter string, info types.DetectionInfo) (string, error) {
	title, company := jobLabels(job.reqs)
	feedback := strings.TrimSpace(info.Feedback)
	if feedback == "" {
		feedback = fmt.Sprintf("scored %d out of 100 for machine authorship", info.Score)
	}
	prompt, err := prompts.Render(prompts.GenerationFile, prompts.KeyHumanize, map[string]string{
		"Feedback":       feedback,
		"FlaggedPhrases": rewriting.FormatPhrases(rewriting.FlaggedPhrases(letter, info)),
		"JobTitle":       title,
		"Company":        company,
		"CoverLetter":    letter,
	})
	if err != nil {
		return "", err
	}
	return o.complete(ctx, prompt, coverLetterMaxTokens, humanizeTemperature)
}

// complete sends one generation call and rejects blank output
func (o *Orchestrator) complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if o.llm == nil {
		return "", llm.NewError(llm.KindAPI, "no model client configured", nil)
	}
	text, err := o.llm.Generate(ctx, llm.Request{
		Prompt:      prompt,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Tier:        o.opts.Tier,
	})
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", llm.NewError(llm.KindInvalidResponse, "empty response", nil)
	}
	return text, nil
}

func quickTemplates(job *generationInput) (string, string, error) {
	formatted, err := rendering.QuickResume(job.profile, job.result)
	if err != nil {
		return "", "", &TailoringError{Kind: KindFormatting, Message: "template résumé failed", Cause: err}
	}
	letter, err := rendering.QuickCoverLetter(job.profile, job.reqs, job.result)
	if err != nil {
		return "", "", &TailoringError{Kind: KindCoverLetter, Message: "template cover letter failed", Cause: err}
	}
	return formatted, letter, nil
}

// matchedSummary lists matched requirements with their evidence, one per line
func matchedSummary(matched []types.MatchRecord) string {
	if len(matched) == 0 {
		return "none"
	}
	var b strings.Builder
	for _, rec := range matched {
		fmt.Fprintf(&b, "- %s: %s (%s, %d)\n", rec.Requirement.Text, rec.Evidence.Text(), rec.MatchType, rec.Score)
	}
	return strings.TrimRight(b.String(), "\n")
}

func missingSummary(missing []types.MatchRecord) string {
	if len(missing) == 0 {
		return "none"
	}
	lines := make([]string, len(missing))
	for i, rec := range missing {
		lines[i] = "- " + rec.Requirement.Text
	}
	return strings.Join(lines, "\n")
}
