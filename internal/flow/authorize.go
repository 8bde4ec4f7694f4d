package flow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/godel-oidc/authflow/internal/consent"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/i18n"
	"github.com/godel-oidc/authflow/internal/transport"
)

// AuthorizePage is the login form of an authorization request.
type AuthorizePage struct {
	env     Env
	model   form.Model
	builder form.Builder
	modal   *consent.Modal
	access  *consent.Redirector
	logger  *slog.Logger
}

// NewAuthorizePage creates the controller for a login page whose request
// model is model. The modal and redirector handlers are bound here, once.
func NewAuthorizePage(env Env, model form.Model) *AuthorizePage {
	p := &AuthorizePage{
		env:     env,
		model:   model.Clone(),
		builder: form.Builder{Policy: env.Config.ScopePolicy},
		logger:  env.logger(),
	}
	p.modal = consent.NewModal(env.Surface, p.reload)
	p.access = consent.NewRedirector(env.Surface, env.Navigator)
	return p
}

// Modal returns the device consent modal of the page.
func (p *AuthorizePage) Modal() *consent.Modal {
	return p.modal
}

// Redirector returns the "service wants access" confirmation of the page.
func (p *AuthorizePage) Redirector() *consent.Redirector {
	return p.access
}

// Model returns a copy of the page's request model.
func (p *AuthorizePage) Model() form.Model {
	return p.model.Clone()
}

// Submit handles one submission of the login form. The grant is routed
// afresh on every call.
//
// A device code grant first waits for the consent modal. Declining cancels
// the device flow and follows the server to wherever it lands. A rejected
// device code submission shows the credential error overlay and navigates
// nowhere; its "try again" reloads the page.
func (p *AuthorizePage) Submit(ctx context.Context, username, password string) error {
	body := p.builder.Build(p.model, username, password)
	kind := form.Route(body)
	logger := p.logger.With("flow_id", uuid.NewString(), "grant", kind.String())
	logger.Info("Authorization form submitted", "fields", body.Len())

	if kind == form.DeviceCode {
		return p.submitDevice(ctx, logger, body)
	}
	return p.submit(ctx, logger, body)
}

func (p *AuthorizePage) submitDevice(ctx context.Context, logger *slog.Logger, body form.Body) error {
	gate, err := p.modal.Open(p.env.printer().Sprintf(i18n.DeviceConsent))
	if err != nil {
		return err
	}
	dec, err := gate.Wait(ctx)
	if err != nil {
		return err
	}
	logger.Info("Device consent decided", "decision", dec.String())

	if dec == consent.Declined {
		target, err := p.env.Transport.CancelDeviceFlow(ctx, body)
		if err != nil {
			p.showCredentialError(logger, err)
			return err
		}
		return p.env.Navigator.Navigate(ctx, target)
	}

	if err := p.submit(ctx, logger, body); err != nil {
		if transport.IsRecoverable(err) {
			p.showCredentialError(logger, err)
		}
		return err
	}
	return nil
}

func (p *AuthorizePage) submit(ctx context.Context, logger *slog.Logger, body form.Body) error {
	result, err := p.env.Transport.Submit(ctx, body)
	if err != nil {
		logger.Warn("Authorization rejected", "error", err)
		return err
	}
	logger.Info("Authorization accepted", "redirect_url", result.RedirectURL)

	dec, err := p.access.Confirm(ctx, result.Text, result.RedirectURL)
	if err != nil {
		return err
	}
	logger.Info("Access decided", "decision", dec.String())
	return nil
}

func (p *AuthorizePage) showCredentialError(logger *slog.Logger, err error) {
	logger.Warn("Device code submission failed", "error", err)
	p.modal.ShowCredentialError(p.env.printer().Sprintf(i18n.CredentialsInvalid))
}

// reload is the modal's "try again" hook. The caller builds a fresh page.
func (p *AuthorizePage) reload() {
	if err := p.env.Navigator.Reload(context.Background()); err != nil {
		p.logger.Error("Reload failed", "error", err)
	}
}
