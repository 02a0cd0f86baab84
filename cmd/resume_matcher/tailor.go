package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/observability"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/types"
)

// Files written by tailor --out
const (
	resumeFile      = "resume.txt"
	coverLetterFile = "cover_letter.txt"
	outcomeFile     = "outcome.json"
)

type tailorOptions struct {
	resumePath string
	job        jobSource
	quick      bool
	outDir     string
	jsonOut    bool
}

func newTailorCmd(a *app) *cobra.Command {
	var opts tailorOptions

	cmd := &cobra.Command{
		Use:   "tailor",
		Short: "Tailor a résumé and write a cover letter for a job description",
		Long: "Run the full tailoring pipeline: parse the résumé, extract job requirements, match and score, " +
			"reformat the résumé and write a cover letter, then check the letter for machine-written phrasing. " +
			"With --quick no model calls are made and both documents come from templates.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runTailor(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.resumePath, "resume", "r", "", "Path to the résumé text file (required)")
	opts.job.bind(cmd)
	cmd.Flags().BoolVar(&opts.quick, "quick", false, "Use templates only, without model calls")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "Directory to write resume.txt, cover_letter.txt and outcome.json")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "Print the outcome as JSON instead of the formatted report")
	_ = cmd.MarkFlagRequired("resume")
	return cmd
}

func (a *app) runTailor(cmd *cobra.Command, opts tailorOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(cmd.ErrOrStderr())

	resumeText, err := readResume(opts.resumePath)
	if err != nil {
		return err
	}
	jobText, err := opts.job.load(ctx, a.logger)
	if err != nil {
		return err
	}

	client, err := a.modelClient(ctx)
	if err != nil {
		return err
	}
	if client != nil {
		defer func() { _ = client.Close() }()
	} else if !opts.quick && !a.cfg.Pipeline.FallbackToTemplates {
		return fmt.Errorf("no model API key configured; set GEMINI_API_KEY or ANTHROPIC_API_KEY, or use --quick")
	}

	store := a.requirementCache(ctx)
	defer func() { _ = store.Close() }()

	var history pipeline.HistoryStore
	if a.cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		if err := conn.EnsureSchema(ctx); err != nil {
			return err
		}
		history = conn
	}

	orch := a.orchestrator(client, a.analyzer(client, store), history)
	req := pipeline.TailorRequest{
		ResumeText: resumeText,
		JobText:    jobText,
		OnProgress: func(ev pipeline.ProgressEvent) {
			printer.PrintProgress(string(ev.Step), ev.Progress, ev.Message)
		},
	}

	var outcome *types.TailoringOutcome
	if opts.quick {
		outcome, err = orch.TailorQuick(ctx, req)
	} else {
		outcome, err = orch.Tailor(ctx, req)
	}
	if err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := writeOutcome(opts.outDir, outcome); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s, %s and %s to %s\n", resumeFile, coverLetterFile, outcomeFile, opts.outDir)
	}

	if opts.jsonOut {
		return writeJSON(out, outcome)
	}
	report := observability.NewPrinter(out)
	report.PrintOutcome(outcome)
	report.PrintDetection(outcome.Detection)
	if opts.outDir == "" {
		fmt.Fprintf(out, "\n%s\n\n%s\n", outcome.ReformattedResume, outcome.CoverLetter)
	}
	return nil
}

func writeOutcome(dir string, o *types.TailoringOutcome) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode outcome: %w", err)
	}
	files := map[string][]byte{
		resumeFile:      []byte(o.ReformattedResume + "\n"),
		coverLetterFile: []byte(o.CoverLetter + "\n"),
		outcomeFile:     data,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), content, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
