package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/ssl/cleanshot-cloud/probe"
)

func newHealthcheckCmd() *cobra.Command {
	var (
		target  string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running server and exit non-zero when it is not ready",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			check := probe.NewHTTPProbe("server", http.MethodGet, target,
				probe.WithHTTPClient(&http.Client{Timeout: timeout}),
				probe.WithHTTPHeader("User-Agent", "cleanshot-cloud-healthcheck/"+Version),
			)
			if err := check(ctx); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "url", "http://127.0.0.1:8080/info/readyz", "readiness endpoint to probe")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "probe timeout")
	return cmd
}
