package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/erp/console/internal/application/guard"
	"github.com/erp/console/internal/application/remote"
	"github.com/erp/console/internal/application/screen"
	"github.com/erp/console/internal/application/view"
	"github.com/erp/console/internal/domain/shared"
)

var errSignedOut = errors.New(`not signed in; run "console login"`)

// openScreen resolves name and applies the same role check as the API
func openScreen(a *app, name string) (screen.Screen, error) {
	s, ok := a.screens.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown screen %q; one of: %s", name, strings.Join(a.screens.Names(), ", "))
	}
	switch d := guard.Decide(a.sessions.Snapshot(), s.Meta().Roles); d.Outcome {
	case guard.RedirectLogin:
		return nil, errSignedOut
	case guard.RedirectLanding:
		return nil, errors.New(d.Warning)
	}
	return s, nil
}

func listCmd(opts *globalOptions) *cobra.Command {
	var (
		page   int
		search string
	)
	cmd := &cobra.Command{
		Use:   "list <entity>",
		Short: "List one page of an entity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			s, err := openScreen(a, args[0])
			if err != nil {
				return err
			}

			f := shared.DefaultFilter()
			f.Page = page
			f.Search = search
			p, err := s.List(cmd.Context(), f)
			if err != nil {
				return errors.New(p.Error)
			}
			return printPage(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Page number")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Search text")
	return cmd
}

func printPage(w io.Writer, p screen.ListPage) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\t"+strings.Join(p.Columns, "\t"))
	for i, row := range p.Rows {
		fmt.Fprintln(tw, p.Actions[i].ID+"\t"+strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "page %d of %d, %d records\n", p.CurrentPage, max(p.PageCount, 1), p.TotalCount)
	return err
}

func showCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <entity> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			s, err := openScreen(a, args[0])
			if err != nil {
				return err
			}

			rec := s.Detail(cmd.Context(), args[1])
			if !rec.Found() {
				return errors.New(rec.Error)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec.Item)
		},
	}
}

// promptConfirmer asks on the terminal; anything but y or yes declines
func promptConfirmer(in io.Reader, out io.Writer) remote.Confirmer {
	r := bufio.NewReader(in)
	return remote.ConfirmFunc(func(_ context.Context, question string) bool {
		answer, err := prompt(r, out, question+" [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	})
}

func deleteCmd(opts *globalOptions) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete one record after confirmation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()
			s, err := openScreen(a, args[0])
			if err != nil {
				return err
			}

			confirm := promptConfirmer(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = remote.ConfirmFunc(func(context.Context, string) bool { return true })
			}
			_, out := s.Delete(cmd.Context(), args[1], shared.DefaultFilter(), confirm)
			if out.Toast != nil {
				fmt.Fprintln(cmd.OutOrStdout(), out.Toast.Message)
			}
			if !out.OK && out.Toast != nil && out.Toast.Kind != view.ToastInfo {
				return errors.New("delete failed")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
