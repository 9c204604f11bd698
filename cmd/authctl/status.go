package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/misenoti/misenoti/pkg/authsdk"
)

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show liveness and readiness of the auth service",
		Long:  `Query /livez and /readyz and print the health of the service and its dependencies.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, opts.client())
		},
	}
}

func runStatus(cmd *cobra.Command, client *authsdk.SDKClient) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	start := time.Now()
	live, err := client.GetLiveness(ctx)
	if err != nil {
		return fmt.Errorf("liveness check failed: %w", err)
	}
	fmt.Fprintf(out, "live:     %s (version %s, uptime %s, %s)\n",
		live.Status, live.Version, live.Uptime, time.Since(start).Round(time.Millisecond))

	start = time.Now()
	ready, err := client.GetReadiness(ctx)
	if ready == nil || (err != nil && !errors.Is(err, authsdk.ErrNotReady)) {
		return fmt.Errorf("readiness check failed: %w", err)
	}
	fmt.Fprintf(out, "ready:    %s (%s)\n", ready.Status, time.Since(start).Round(time.Millisecond))
	if ready.Checks != nil {
		fmt.Fprintf(out, "database: %s\n", ready.Checks.Database)
		if ready.Checks.Verifications != "" {
			fmt.Fprintf(out, "redis:    %s\n", ready.Checks.Verifications)
		}
	}

	return err
}
