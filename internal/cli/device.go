package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/godel-oidc/authflow/internal/flow"
)

func cmdDevice(opts *options) *cobra.Command {
	c := &cobra.Command{
		Use:   "device",
		Short: "Device code grant operations",
	}
	c.AddCommand(cmdDeviceStart(opts), cmdDevicePair(opts))
	return c
}

func cmdDeviceStart(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a device authorization and wait for approval",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			tok, err := flow.RunDevice(cmd.Context(), t.client, func(da *oauth2.DeviceAuthResponse) {
				target := da.VerificationURIComplete
				if target == "" {
					target = da.VerificationURI
				}
				fmt.Fprintf(t.out, "Open %s and enter the code %s\n", target, da.UserCode)
				if !da.Expiry.IsZero() {
					fmt.Fprintf(t.out, "The code expires at %s\n", da.Expiry.Format(time.RFC3339))
				}
			})
			t.dumpCapture()
			if err != nil {
				return err
			}
			t.printToken(tok.AccessToken)
			fmt.Fprintf(t.out, "token_type: %s\n", tok.Type())
			return nil
		},
	}
}

func cmdDevicePair(opts *options) *cobra.Command {
	var username, password string
	c := &cobra.Command{
		Use:   "pair USER_CODE",
		Short: "Enter a device user code and approve the device on its login page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.newTerminal(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			pairErr := flow.PairDevice(ctx, t.env(), args[0])
			t.dumpCapture()
			last, ok := t.nav.Last()
			if !ok || last.Reload || !t.isAuthorizePage(last.URL) {
				return pairErr
			}

			page, pageURL, err := t.client.LoadPage(ctx, last.URL)
			if err != nil {
				return errors.Join(pairErr, err)
			}
			return t.runAuthorize(ctx, pageURL, page, credentials{username: username, password: password})
		},
	}
	c.Flags().StringVarP(&username, "username", "u", "", "username (prompted when empty)")
	c.Flags().StringVarP(&password, "password", "p", "", "password (prompted when empty)")
	return c
}
