package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// prompter reads answers from the command's input. Passwords are read without
// echo when the input is a terminal.
type prompter struct {
	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
}

func newPrompter(cmd *cobra.Command) *prompter {
	in := cmd.InOrStdin()
	return &prompter{
		in:     in,
		reader: bufio.NewReader(in),
		out:    cmd.OutOrStdout(),
	}
}

// Line prints label and reads one trimmed line.
func (p *prompter) Line(label string) (string, error) {
	if _, err := fmt.Fprint(p.out, label+": "); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Password reads a secret, falling back to a plain line when the input is
// not a terminal (pipes, tests).
func (p *prompter) Password(label string) (string, error) {
	f, ok := p.in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return p.Line(label)
	}

	if _, err := fmt.Fprint(p.out, label+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(f.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

// passwordFlags are the --password/--confirm-password pair of commands that
// set a new password.
type passwordFlags struct {
	password string
	confirm  string
}

func (pf *passwordFlags) register(fs *pflag.FlagSet, usage string) {
	fs.StringVar(&pf.password, "password", "", usage+" (prompted when omitted)")
	fs.StringVar(&pf.confirm, "confirm-password", "", "password confirmation (defaults to --password)")
}

// resolve prompts for whatever was not given on the command line.
func (pf *passwordFlags) resolve(p *prompter, label string) (password, confirm string, err error) {
	if pf.password != "" {
		confirm = pf.confirm
		if confirm == "" {
			confirm = pf.password
		}
		return pf.password, confirm, nil
	}

	if password, err = p.Password(label); err != nil {
		return "", "", err
	}
	if confirm, err = p.Password("Confirm " + strings.ToLower(label)); err != nil {
		return "", "", err
	}
	return password, confirm, nil
}
