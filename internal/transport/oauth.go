package transport

import (
	"context"
	"errors"
	"fmt"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/godel-oidc/authflow/internal/protocol"
)

// OAuth2Config returns the OAuth2 client configuration. With an issuer
// configured the endpoints come from OIDC discovery, otherwise they are built
// from base_url and the configured paths.
func (c *Client) OAuth2Config(ctx context.Context) (*oauth2.Config, error) {
	endpoint := oauth2.Endpoint{
		AuthURL:       c.cfg.Endpoint(c.cfg.Paths.Authorize),
		TokenURL:      c.cfg.Endpoint(c.cfg.Paths.Token),
		DeviceAuthURL: c.cfg.Endpoint(c.cfg.Paths.DeviceStart),
		AuthStyle:     oauth2.AuthStyleInParams,
	}

	if c.cfg.Issuer != "" {
		provider, err := gooidc.NewProvider(c.clientContext(ctx), c.cfg.Issuer)
		if err != nil {
			return nil, fmt.Errorf("discover OIDC provider %s: %w", c.cfg.Issuer, err)
		}
		discovered := provider.Endpoint()
		endpoint.AuthURL = discovered.AuthURL
		endpoint.TokenURL = discovered.TokenURL
		if discovered.DeviceAuthURL != "" {
			endpoint.DeviceAuthURL = discovered.DeviceAuthURL
		}
		c.logger.Info("OIDC provider discovered", "issuer", c.cfg.Issuer, "authorize", endpoint.AuthURL)
	}

	return &oauth2.Config{
		ClientID:     c.cfg.Client.ClientID,
		ClientSecret: c.cfg.Client.ClientSecret,
		RedirectURL:  c.cfg.Client.RedirectURI,
		Endpoint:     endpoint,
		Scopes:       c.cfg.Client.Scopes,
	}, nil
}

// StartDeviceAuthorization asks the server for a device and user code pair.
func (c *Client) StartDeviceAuthorization(ctx context.Context, oc *oauth2.Config) (*oauth2.DeviceAuthResponse, error) {
	da, err := oc.DeviceAuth(c.clientContext(ctx))
	if err != nil {
		return nil, oauthError("device_authorization", oc.Endpoint.DeviceAuthURL, err)
	}
	c.logger.Info("Device authorization started", "user_code", da.UserCode, "verification_uri", da.VerificationURI)
	return da, nil
}

// PollDeviceToken polls the token endpoint until the user approves or
// declines the device, or the device code expires.
func (c *Client) PollDeviceToken(ctx context.Context, oc *oauth2.Config, da *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	tok, err := oc.DeviceAccessToken(c.clientContext(ctx), da)
	if err != nil {
		return nil, oauthError("device_token", oc.Endpoint.TokenURL, err)
	}
	return tok, nil
}

func (c *Client) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// oauthError converts an oauth2.RetrieveError into a CredentialError and any
// other failure into a NetworkError.
func oauthError(op, url string, err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		ce := &CredentialError{
			Op:          op,
			ErrorCode:   re.ErrorCode,
			Description: re.ErrorDescription,
			URI:         re.ErrorURI,
			RawBody:     string(re.Body),
		}
		if ce.ErrorCode == "" {
			ce.ErrorCode, ce.Description, ce.URI = protocol.ParseErrorBody(re.Body)
		}
		if re.Response != nil {
			ce.StatusCode = re.Response.StatusCode
		}
		return ce
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return &NetworkError{Op: op, URL: url, Err: err}
}
