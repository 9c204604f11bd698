package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const tokenEnv = "AUTHCTL_TOKEN"

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <email-or-phone>",
		Short: "Log in and print the session token",
		Long:  `Log in with an email address or phone number. Only the session token is written to stdout.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				var err error
				if password, err = newPrompter(cmd).Password("Password"); err != nil {
					return err
				}
			}

			session, err := opts.client().Authenticate(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), session.Token())
			cmd.PrintErrf("logged in as %s (%s)\n", session.User().Name, session.User().ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Verify a session token and show who it belongs to",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if token == "" {
				token = os.Getenv(tokenEnv)
			}
			if token == "" {
				return errors.New("no token: pass --token or set " + tokenEnv)
			}

			info, err := opts.client().NewSessionFromToken(token).Whoami(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user_id:    %s\n", info.UserID)
			if info.Email != "" {
				fmt.Fprintf(out, "email:      %s\n", info.Email)
			}
			fmt.Fprintf(out, "expires_at: %s\n", info.ExpiresAt.Local().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "session token (env "+tokenEnv+")")
	return cmd
}
