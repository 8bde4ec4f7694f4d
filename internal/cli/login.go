package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/flow"
)

func cmdLogin(opts *options) *cobra.Command {
	var email, password string
	c := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password and open the user page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			if email == "" {
				email = t.ask("Email: ")
			}
			if password == "" {
				password = t.ask("Password: ")
			}

			err = flow.NewLoginPage(t.env()).Submit(ctx, email, password)
			t.dumpCapture()
			if err != nil {
				return err
			}
			if token, ok := t.storage.Get(t.cfg.StorageKey); ok {
				t.printToken(token)
			}
			return t.openUserPage(ctx)
		},
	}
	c.Flags().StringVar(&email, "email", "", "email (prompted when empty)")
	c.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return c
}

func cmdUser(opts *options) *cobra.Command {
	var token string
	c := &cobra.Command{
		Use:   "user",
		Short: "Open the user page with a stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			if token != "" {
				t.storage.Set(t.cfg.StorageKey, token)
			}
			return t.openUserPage(cmd.Context())
		},
	}
	c.Flags().StringVar(&token, "token", "", "access token to place in storage before opening the page")
	return c
}

func (t *terminal) openUserPage(ctx context.Context) error {
	html, err := flow.NewUserPage(t.env()).Load(ctx)
	t.dumpCapture()
	if err != nil {
		return err
	}
	fmt.Fprintln(t.out, string(html))
	return nil
}
