package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/misenoti/misenoti/pkg/authsdk"
)

type registerOptions struct {
	name        string
	surname     string
	contactType string
	email       string
	phone       string
	code        string
	passwords   passwordFlags
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	ro := &registerOptions{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account with a verified email or phone number",
		Long: `Run both registration steps. The service sends a verification code to the
email or phone number, authctl asks for it and then creates the account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegister(cmd, opts.client(), ro)
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&ro.name, "name", "", "given name")
	fs.StringVar(&ro.surname, "surname", "", "family name")
	fs.StringVar(&ro.contactType, "contact-type", "email", `contact used for verification: "email" or "phone"`)
	fs.StringVar(&ro.email, "email", "", "email address")
	fs.StringVar(&ro.phone, "phone", "", "phone number")
	fs.StringVar(&ro.code, "code", "", "verification code (prompted when omitted)")
	ro.passwords.register(fs, "account password")

	return cmd
}

func runRegister(cmd *cobra.Command, client *authsdk.SDKClient, ro *registerOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	p := newPrompter(cmd)

	password, confirm, err := ro.passwords.resolve(p, "Password")
	if err != nil {
		return err
	}

	reg := authsdk.Registration{
		Name:            ro.name,
		Surname:         ro.surname,
		ContactType:     ro.contactType,
		Email:           ro.email,
		Phone:           ro.phone,
		Password:        password,
		ConfirmPassword: confirm,
	}

	started, err := client.RegisterStart(ctx, reg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s to %s\n", started.Message, started.Contact)

	code := ro.code
	if code == "" {
		if code, err = p.Line("Verification code"); err != nil {
			return err
		}
	}

	created, err := client.RegisterComplete(ctx, reg, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: %s\n", created.Message, created.UserID)
	return nil
}
