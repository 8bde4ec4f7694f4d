package flow

import "context"

// LoginPage is the classic email and password login.
type LoginPage struct {
	env Env
}

// NewLoginPage creates the controller of the login page.
func NewLoginPage(env Env) *LoginPage {
	return &LoginPage{env: env}
}

// Submit logs in. On success the access token is stored for the origin and
// the tab moves to the user page. On failure nothing is stored and the tab
// stays where it is.
func (p *LoginPage) Submit(ctx context.Context, email, password string) error {
	logger := p.env.logger()
	token, err := p.env.Transport.Login(ctx, email, password)
	if err != nil {
		logger.Warn("Login failed", "error", err)
		return err
	}

	p.env.Storage.Set(p.env.Config.StorageKey, token)
	logger.Info("Login succeeded", "storage_key", p.env.Config.StorageKey)
	return p.env.Navigator.Navigate(ctx, p.env.Config.Endpoint(p.env.Config.Paths.User))
}
