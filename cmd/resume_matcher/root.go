package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/cache"
	"github.com/jonathan/resume-matcher/internal/config"
	"github.com/jonathan/resume-matcher/internal/detector"
	"github.com/jonathan/resume-matcher/internal/ingestion"
	"github.com/jonathan/resume-matcher/internal/llm"
	"github.com/jonathan/resume-matcher/internal/logger"
	"github.com/jonathan/resume-matcher/internal/matching"
	"github.com/jonathan/resume-matcher/internal/parsing"
	"github.com/jonathan/resume-matcher/internal/pipeline"
	"github.com/jonathan/resume-matcher/internal/scoring"
)

// app carries the state shared by all subcommands
type app struct {
	configPath string
	debug      bool
	jsonLogs   bool

	cfg    *config.Config
	logger *zap.Logger

	// newClient builds the model backend; tests replace it
	newClient func(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (llm.Client, error)
	// newDetector builds the authorship detector; tests replace it
	newDetector func(cfg detector.Options, log *zap.Logger) detector.Detector
}

func newApp() *app {
	return &app{
		newClient: func(ctx context.Context, cfg config.LLMConfig, log *zap.Logger) (llm.Client, error) {
			return llm.NewClient(ctx, cfg.LLMSettings(), cfg.APIKey, llm.WithLogger(log))
		},
		newDetector: func(cfg detector.Options, log *zap.Logger) detector.Detector {
			return detector.NewHTTPClient(cfg, nil, log)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "resume_matcher",
		Short: "Match résumés against job descriptions and tailor application materials",
		Long: "resume_matcher scores how well a résumé fits a job description, reorders the résumé " +
			"around the matched evidence, and writes a cover letter, from the command line or over HTTP.",
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a JSON or YAML config file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&a.jsonLogs, "json-logs", false, "Write logs as JSON lines")

	root.AddCommand(
		newServeCmd(a),
		newTailorCmd(a),
		newMatchCmd(a),
		newParseResumeCmd(a),
		newAnalyzeJobCmd(a),
		newIssueTokenCmd(a),
	)
	return root
}

// setup loads configuration and builds the logger before any subcommand runs
func (a *app) setup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	if a.logger == nil {
		log, err := logger.New(a.jsonLogs, a.debug)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		a.logger = log
	}
	return nil
}

// modelClient returns the configured backend, or nil when no API key is set
func (a *app) modelClient(ctx context.Context) (llm.Client, error) {
	if a.cfg.LLM.APIKey == "" {
		return nil, nil
	}
	client, err := a.newClient(ctx, a.cfg.LLM, logger.WithModel(a.logger, a.cfg.LLM.Provider, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", a.cfg.LLM.Provider, err)
	}
	return client, nil
}

// requirementCache returns a Redis cache when REDIS_URL is set, else a process-local one
func (a *app) requirementCache(ctx context.Context) cache.Store {
	if a.cfg.RedisURL != "" {
		store, err := cache.NewRedis(ctx, a.cfg.RedisURL, a.cfg.CacheTTL)
		if err == nil {
			return store
		}
		a.logger.Warn("redis unavailable, using in-memory cache", zap.Error(err))
	}
	return cache.NewMemory(a.cfg.CacheTTL)
}

func (a *app) analyzer(client llm.Client, store cache.Store) *parsing.Analyzer {
	return parsing.NewAnalyzer(client, parsing.WithCache(store), parsing.WithLogger(a.logger))
}

func (a *app) engine() *matching.Engine {
	return matching.NewEngine(a.cfg.Matching)
}

func (a *app) aggregator() *scoring.Aggregator {
	return scoring.NewAggregator(a.cfg.Scoring)
}

func (a *app) orchestrator(client llm.Client, analyzer *parsing.Analyzer, history pipeline.HistoryStore) *pipeline.Orchestrator {
	opts := pipeline.DefaultOptions()
	opts.DetectionThreshold = a.cfg.Detector.Threshold
	opts.FallbackToTemplates = a.cfg.Pipeline.FallbackToTemplates
	opts.Timeout = a.cfg.Pipeline.Timeout

	pipelineOpts := []pipeline.Option{
		pipeline.WithOptions(opts),
		pipeline.WithDetector(a.newDetector(a.cfg.Detector, a.logger)),
		pipeline.WithAnalyzer(analyzer),
		pipeline.WithEngine(a.engine()),
		pipeline.WithAggregator(a.aggregator()),
		pipeline.WithLogger(a.logger),
	}
	if history != nil {
		pipelineOpts = append(pipelineOpts, pipeline.WithHistory(history))
	}
	return pipeline.New(client, pipelineOpts...)
}

// jobSource names where a job description comes from
type jobSource struct {
	path    string
	url     string
	browser bool
}

func (s *jobSource) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.path, "job", "j", "", "Path to a job description text file")
	cmd.Flags().StringVarP(&s.url, "job-url", "u", "", "URL of a job posting to fetch")
	cmd.Flags().BoolVar(&s.browser, "browser", false, "Render the job page in headless Chrome when the fetched text is too short")
	cmd.MarkFlagsMutuallyExclusive("job", "job-url")
	cmd.MarkFlagsOneRequired("job", "job-url")
}

// load returns the cleaned job description text
func (s *jobSource) load(ctx context.Context, log *zap.Logger) (string, error) {
	if s.path != "" {
		text, _, err := ingestion.IngestFromFile(s.path)
		if err != nil {
			return "", fmt.Errorf("failed to read job description: %w", err)
		}
		return text, nil
	}
	text, meta, err := ingestion.IngestFromURL(ctx, s.url, ingestion.URLOptions{UseBrowser: s.browser, Logger: log})
	if err != nil {
		return "", fmt.Errorf("failed to fetch job posting: %w", err)
	}
	log.Debug("fetched job posting", zap.String("platform", meta.Platform), zap.String("hash", meta.Hash))
	return text, nil
}

func readResume(path string) (string, error) {
	text, _, err := ingestion.IngestFromFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read résumé: %w", err)
	}
	return text, nil
}
