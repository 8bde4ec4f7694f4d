package flow

import (
	"context"
	"errors"
	"fmt"

	"github.com/godel-oidc/authflow/internal/config"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/protocol"
)

// ErrNoState is returned for a provider link whose query carries no state.
var ErrNoState = errors.New("provider link has no state parameter")

// ProviderLinks are the external identity provider links of a login page.
type ProviderLinks struct {
	env   Env
	links []form.ProviderLink
}

// NewProviderLinks creates the controller for links. Configured [[provider]]
// entries are appended after the page's own links unless a link of the same
// name is already on the page.
func NewProviderLinks(env Env, links []form.ProviderLink) *ProviderLinks {
	all := append([]form.ProviderLink(nil), links...)
	all = append(all, configuredLinks(env.Config, links)...)
	return &ProviderLinks{env: env, links: all}
}

func configuredLinks(cfg *config.Config, onPage []form.ProviderLink) []form.ProviderLink {
	seen := make(map[string]bool, len(onPage))
	for _, l := range onPage {
		seen[l.Name] = true
	}
	var out []form.ProviderLink
	for _, p := range cfg.Providers {
		if !seen[p.Name] {
			out = append(out, form.ProviderLink{Name: p.Name, URL: p.Link})
		}
	}
	return out
}

// Links returns the available links in display order.
func (p *ProviderLinks) Links() []form.ProviderLink {
	return append([]form.ProviderLink(nil), p.links...)
}

// Follow registers the state of the named link with the authorization server
// and only then navigates to the link. Nothing is navigated to when the
// registration fails.
func (p *ProviderLinks) Follow(ctx context.Context, name string) error {
	var link *form.ProviderLink
	for i := range p.links {
		if p.links[i].Name == name {
			link = &p.links[i]
			break
		}
	}
	if link == nil {
		return fmt.Errorf("unknown provider %q", name)
	}

	state, ok := protocol.QueryParam(link.URL, "state")
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNoState)
	}

	logger := p.env.logger().With("provider", name)
	if err := p.env.Transport.RegisterDeviceState(ctx, state); err != nil {
		logger.Warn("State registration failed", "error", err)
		return fmt.Errorf("register state for %s: %w", name, err)
	}
	logger.Info("State registered, following provider link")
	return p.env.Navigator.Navigate(ctx, link.URL)
}
