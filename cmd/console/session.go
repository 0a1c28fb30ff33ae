package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erp/console/internal/domain/identity"
)

// readPassword is replaced in tests so no terminal is needed
var readPassword = term.ReadPassword

// prompt prints label and reads one trimmed line
func prompt(r *bufio.Reader, w io.Writer, label string) (string, error) {
	if _, err := fmt.Fprint(w, label); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo
func promptPassword(w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	return string(pw), nil
}

func loginCmd(opts *globalOptions) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and persist the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if email == "" {
				email, err = prompt(bufio.NewReader(cmd.InOrStdin()), out, "Email: ")
				if err != nil {
					return err
				}
			}
			password, err := promptPassword(out)
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			id, err := a.sessions.Login(cmd.Context(), identity.Credentials{Email: email, Password: password})
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome back, %s (%s)\n", id.Name, id.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "Account email; prompted when empty")
	return cmd
}

func logoutCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the persisted session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func whoamiCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return printSession(cmd.OutOrStdout(), a.sessions.Snapshot())
		},
	}
}

func printSession(w io.Writer, s identity.Session) error {
	if !s.Present() {
		_, err := fmt.Fprintln(w, "Not signed in")
		return err
	}
	fmt.Fprintf(w, "%s <%s>\nrole: %s\n", s.Identity.Name, s.Identity.Email, s.Identity.Role)
	if !s.ExpiresAt.IsZero() {
		fmt.Fprintf(w, "token expires: %s\n", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
