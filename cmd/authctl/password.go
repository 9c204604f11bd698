package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newForgotPasswordCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email-or-phone>",
		Short: "Request a password reset token",
		Long: `Ask the service to send a reset token to the account's contact.
The answer is the same whether or not the account exists.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().ForgotPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func newResetPasswordCmd(opts *rootOptions) *cobra.Command {
	var (
		token     string
		passwords passwordFlags
	)

	cmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Set a new password with a reset token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := newPrompter(cmd)

			if token == "" {
				var err error
				if token, err = p.Line("Reset token"); err != nil {
					return err
				}
			}

			password, confirm, err := passwords.resolve(p, "New password")
			if err != nil {
				return err
			}

			res, err := opts.client().ResetPassword(cmd.Context(), token, password, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "reset token (prompted when omitted)")
	passwords.register(cmd.Flags(), "new password")
	return cmd
}
