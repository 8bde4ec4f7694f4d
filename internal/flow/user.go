package flow

import (
	"context"

	"github.com/godel-oidc/authflow/internal/protocol"
	"github.com/godel-oidc/authflow/internal/transport"
)

// UserPage bootstraps the user page from the stored access token.
type UserPage struct {
	env Env
}

// NewUserPage creates the controller of the user page.
func NewUserPage(env Env) *UserPage {
	return &UserPage{env: env}
}

// Load fetches the page of the token's subject and returns its HTML.
//
// The subject is read from the token without verifying it; it only selects
// which URL to request and the server decides access. Any failure sends the
// tab to the login page and returns a *transport.TokenAbsentError.
func (p *UserPage) Load(ctx context.Context) ([]byte, error) {
	token, ok := p.env.Storage.Get(p.env.Config.StorageKey)
	if !ok || token == "" {
		return nil, p.toLogin(ctx, transport.ErrTokenAbsent)
	}

	subject, err := protocol.UnverifiedSubject(token)
	if err != nil {
		return nil, p.toLogin(ctx, err)
	}

	page, err := p.env.Transport.FetchUser(ctx, token, subject)
	if err != nil {
		return nil, p.toLogin(ctx, err)
	}
	return page, nil
}

func (p *UserPage) toLogin(ctx context.Context, reason error) error {
	p.env.logger().Warn("Access token unusable, redirecting to login", "error", reason)
	if err := p.env.Navigator.Navigate(ctx, p.env.Config.Endpoint(p.env.Config.Paths.LoginPage)); err != nil {
		return err
	}
	return &transport.TokenAbsentError{Reason: reason}
}
