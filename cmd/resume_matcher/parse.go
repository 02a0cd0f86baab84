package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/resume"
	"github.com/jonathan/resume-matcher/internal/types"
)

func newParseResumeCmd(_ *app) *cobra.Command {
	var resumePath string

	cmd := &cobra.Command{
		Use:   "parse-resume",
		Short: "Segment a résumé into skills, experience, education and contact details",
		Long:  "Parse a plain-text résumé and print the structured profile as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			text, err := readResume(resumePath)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resume.Parse(text))
		},
	}
	cmd.Flags().StringVarP(&resumePath, "resume", "r", "", "Path to the résumé text file (required)")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func newAnalyzeJobCmd(a *app) *cobra.Command {
	var (
		job     jobSource
		quick   bool
		verbose bool
	)

	cmd := &cobra.Command{
		Use:   "analyze-job",
		Short: "Extract the structured requirements of a job description",
		Long: "Extract required and preferred requirements, keywords and context from a job description " +
			"and print them as JSON. Without a model API key, or with --quick, the deterministic extractor is used.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			text, err := job.load(ctx, a.logger)
			if err != nil {
				return err
			}

			var reqs *types.RequirementSet
			if quick {
				reqs = parsing.FallbackExtract(ingestion.CleanText(text))
			} else {
				client, err := a.modelClient(ctx)
				if err != nil {
					return err
				}
				if client != nil {
					defer func() { _ = client.Close() }()
				}
				store := a.requirementCache(ctx)
				defer func() { _ = store.Close() }()

				reqs, err = a.analyzer(client, store).Analyze(ctx, text)
				if err != nil {
					return fmt.Errorf("job description analysis failed: %w", err)
				}
			}

			if verbose {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintRequirements(reqs)
			}
			return writeJSON(cmd.OutOrStdout(), reqs)
		},
	}
	job.bind(cmd)
	cmd.Flags().BoolVar(&quick, "quick", false, "Use the deterministic extractor without model calls")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Also print a readable summary to stderr")
	return cmd
}
