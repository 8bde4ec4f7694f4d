package flow

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
)

// PairDevice submits the user code typed on the device entry page and follows
// the server to the page it lands on. The tab moves even when the code is
// rejected; the rejection is still returned.
func PairDevice(ctx context.Context, env Env, userCode string) error {
	final, err := env.Transport.SubmitUserCode(ctx, strings.TrimSpace(userCode))
	if final != "" {
		if navErr := env.Navigator.Navigate(ctx, final); navErr != nil {
			return navErr
		}
	}
	if err != nil {
		env.logger().Warn("User code rejected", "error", err)
		return err
	}
	return nil
}

// DeviceAuthorizer is the device side of the device code grant.
// *transport.Client implements it.
type DeviceAuthorizer interface {
	OAuth2Config(ctx context.Context) (*oauth2.Config, error)
	StartDeviceAuthorization(ctx context.Context, oc *oauth2.Config) (*oauth2.DeviceAuthResponse, error)
	PollDeviceToken(ctx context.Context, oc *oauth2.Config, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error)
}

// RunDevice starts a device authorization, hands the user code to show and
// waits until the user approves or declines it on another session.
func RunDevice(ctx context.Context, d DeviceAuthorizer, show func(*oauth2.DeviceAuthResponse)) (*oauth2.Token, error) {
	oc, err := d.OAuth2Config(ctx)
	if err != nil {
		return nil, err
	}
	da, err := d.StartDeviceAuthorization(ctx, oc)
	if err != nil {
		return nil, err
	}
	if show != nil {
		show(da)
	}
	return d.PollDeviceToken(ctx, oc, da)
}
