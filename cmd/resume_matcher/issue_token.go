package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-matcher/internal/server"
)

func newIssueTokenCmd(a *app) *cobra.Command {
	var (
		subject string
		hours   int
	)

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Issue a bearer token for the HTTP API",
		Long:  "Sign a JWT for an API client with the configured JWT_SECRET and print it.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			jwtCfg := a.cfg.Server.JWT
			if !jwtCfg.Enabled() {
				return fmt.Errorf("JWT_SECRET is not configured")
			}
			if cmd.Flags().Changed("hours") {
				if hours < 1 {
					return fmt.Errorf("--hours must be at least 1")
				}
				jwtCfg.ExpirationHours = hours
			}

			token, err := server.NewJWTService(jwtCfg).GenerateToken(subject)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&subject, "subject", "s", "", "Client name recorded in the token (required)")
	cmd.Flags().IntVar(&hours, "hours", 0, "Token lifetime in hours (overrides config)")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}
