package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func cmdHealthcheck(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "healthcheck",
		Short: "Check that the authorization server is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			if err := t.client.HealthCheck(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(t.out, "ok")
			return nil
		},
	}
}
