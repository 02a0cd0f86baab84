package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/report"
	"github.com/jonathan/resume-matcher/internal/resume"
	"github.com/jonathan/resume-matcher/internal/scoring"
	"github.com/jonathan/resume-matcher/internal/types"
)

type matchOptions struct {
	resumePath string
	job        jobSource
	quick      bool
	xlsxPath   string
	jsonOut    bool
}

// matchReport is the JSON output of the match command
type matchReport struct {
	Requirements *types.RequirementSet `json:"requirements"`
	Result       types.MatchResult     `json:"result"`
	Score        int                   `json:"score"`
	Breakdown    scoring.Breakdown     `json:"breakdown"`
}

func newMatchCmd(a *app) *cobra.Command {
	var opts matchOptions

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Score a résumé against a job description without generating documents",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMatch(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to the résumé text file (required)")
	opts.job.bind(cmd)
	cmd.Flags().BoolVar(&opts.quick, "quick", false, "Extract requirements without model calls")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "Also write an Excel report to this path")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func (a *app) runMatch(cmd *cobra.Command, opts matchOptions) error {
	ctx := cmd.Context()

	resumeText, err := readResume(opts.resumePath)
	if err != nil {
		return err
	}
	jobText, err := opts.job.load(ctx, a.logger)
	if err != nil {
		return err
	}

	var reqs *types.RequirementSet
	if opts.quick {
		reqs = parsing.FallbackExtract(ingestion.CleanText(jobText))
	} else {
		client, err := a.modelClient(ctx)
		if err != nil {
			return err
		}
		if client == nil {
			a.logger.Warn("no model API key configured, using deterministic requirement extraction")
		} else {
			defer func() { _ = client.Close() }()
		}
		store := a.requirementCache(ctx)
		defer func() { _ = store.Close() }()

		reqs, err = a.analyzer(client, store).Analyze(ctx, jobText)
		if err != nil {
			return fmt.Errorf("job description analysis failed: %w", err)
		}
	}

	profile := resume.Parse(resumeText)
	result := a.engine().MatchAll(profile, reqs)
	breakdown := a.aggregator().Explain(result.Matched, result.Missing, result.HasDomainMismatch)

	if opts.xlsxPath != "" {
		path, err := report.Save(opts.xlsxPath, report.Report{
			Requirements: reqs,
			Result:       result,
			Breakdown:    breakdown,
			GeneratedAt:  time.Now(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote report to %s\n", path)
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		return writeJSON(out, matchReport{Requirements: reqs, Result: result, Score: breakdown.Final, Breakdown: breakdown})
	}
	printer := observability.NewPrinter(out)
	printer.PrintRequirements(reqs)
	printer.PrintMatches(result, breakdown.Final)
	return nil
}
