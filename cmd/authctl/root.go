package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/misenoti/misenoti/pkg/authsdk"
)

const (
	defaultURL = "http://localhost:8080"
	urlEnv     = "AUTHCTL_URL"
)

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	url     string
	timeout time.Duration
}

func (o *rootOptions) client() *authsdk.SDKClient {
	c := authsdk.NewSDKClient(o.url)
	c.HTTPClient.Timeout = o.timeout
	return c
}

// NewRootCmd creates the root command for the authctl CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "authctl - command line client for the MiseNoti auth service",
		Long: `authctl talks to a running MiseNoti auth service over its public API.
It can register accounts, log in, inspect session tokens and reset passwords.`,
		SilenceUsage: true,
	}

	defaultTarget := defaultURL
	if v := os.Getenv(urlEnv); v != "" {
		defaultTarget = v
	}

	cmd.PersistentFlags().StringVar(&opts.url, "url", defaultTarget, "auth service base URL (env "+urlEnv+")")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "HTTP request timeout")

	cmd.AddCommand(newStatusCmd(opts))
	cmd.AddCommand(newRegisterCmd(opts))
	cmd.AddCommand(newLoginCmd(opts))
	cmd.AddCommand(newWhoamiCmd(opts))
	cmd.AddCommand(newForgotPasswordCmd(opts))
	cmd.AddCommand(newResetPasswordCmd(opts))

	return cmd
}
