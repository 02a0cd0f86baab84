package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-matcher/internal/db"
	"github.com/jonathan/resume-matcher/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		Long: "Start an HTTP server exposing parse, analyze, match and tailor endpoints. " +
			"Outcomes are stored in PostgreSQL when DATABASE_URL is set.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.runServe(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 8080, "Port to listen on (overrides config)")
	return cmd
}

func (a *app) runServe(ctx context.Context) error {
	client, err := a.modelClient(ctx)
	if err != nil {
		return err
	}
	if client == nil {
		if !a.cfg.Pipeline.FallbackToTemplates {
			return fmt.Errorf("no model API key configured; set GEMINI_API_KEY or ANTHROPIC_API_KEY, or enable pipeline.fallback_to_templates")
		}
		a.logger.Warn("no model API key configured, /tailor will use templates")
	} else {
		defer func() { _ = client.Close() }()
	}

	store := a.requirementCache(ctx)
	defer func() { _ = store.Close() }()

	deps := server.Deps{
		Analyzer:   a.analyzer(client, store),
		Engine:     a.engine(),
		Aggregator: a.aggregator(),
		Logger:     a.logger,
	}

	var history *db.DB
	if a.cfg.DatabaseURL != "" {
		history, err = db.Connect(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer history.Close()
		if err := history.EnsureSchema(ctx); err != nil {
			return err
		}
		deps.Outcomes = history
		a.logger.Info("outcome history enabled")
	}

	if history != nil {
		deps.Orchestrator = a.orchestrator(client, deps.Analyzer, history)
	} else {
		deps.Orchestrator = a.orchestrator(client, deps.Analyzer, nil)
	}

	srv, err := server.New(a.cfg.Server, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	a.logger.Info("starting server", zap.Int("port", a.cfg.Server.Port))
	return srv.Start(ctx)
}
