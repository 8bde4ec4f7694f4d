package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/flow"
)

func cmdAuthorize(opts *options) *cobra.Command {
	var (
		responseType string
		username     string
		password     string
		params       map[string]string
	)
	c := &cobra.Command{
		Use:   "authorize",
		Short: "Open a login page for a new authorization request and submit it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			oc, err := t.client.OAuth2Config(ctx)
			if err != nil {
				return err
			}
			page, pageURL, err := flow.LoadAuthorizePage(ctx, t.env(), oc, flow.AuthorizeRequest{
				ResponseType: responseType,
				Extra:        params,
			})
			t.dumpCapture()
			if err != nil {
				return err
			}
			fmt.Fprintf(t.out, "Login page %s (%d fields)\n", pageURL, page.Model.Len())

			return t.runAuthorize(ctx, pageURL, page, credentials{username: username, password: password})
		},
	}
	c.Flags().StringVar(&responseType, "response-type", "", "response_type of the request (default from config)")
	c.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	c.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	c.Flags().StringToStringVar(&params, "param", nil, "extra authorization request parameter, key=value")
	return c
}
