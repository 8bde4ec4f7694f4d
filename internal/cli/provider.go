package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/flow"
)

func cmdProvider(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "provider [NAME]",
		Short: "List the external identity providers of the login page, or follow one",
		Args:  cobra.MaximumNArgs(1),
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
			page, _, err := flow.LoadAuthorizePage(ctx, t.env(), oc, flow.AuthorizeRequest{})
			if err != nil {
				return err
			}
			links := flow.NewProviderLinks(t.env(), page.Providers)

			if len(args) == 0 {
				for _, l := range links.Links() {
					fmt.Fprintf(t.out, "%s\t%s\n", l.Name, l.URL)
				}
				return nil
			}
			err = links.Follow(ctx, args[0])
			t.dumpCapture()
			return err
		},
	}
}
