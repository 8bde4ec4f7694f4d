package flow

import (
	"context"

	"github.com/godel-oidc/authflow/internal/browser"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/i18n"
	"github.com/godel-oidc/authflow/internal/transport"
)

// Registration form field names.
const (
	PasswordField        = "password"
	ConfirmPasswordField = "confirm-password"
)

// RegisterPage is the user registration form.
type RegisterPage struct {
	env Env
}

// NewRegisterPage creates the controller of the registration page.
func NewRegisterPage(env Env) *RegisterPage {
	return &RegisterPage{env: env}
}

// Submit sends every field of the form. Mismatched passwords block the
// submission with a *transport.ValidationError; a failed submission shows
// the localized alert.
func (p *RegisterPage) Submit(ctx context.Context, fields []form.Pair) error {
	printer := p.env.printer()
	if fieldValue(fields, PasswordField) != fieldValue(fields, ConfirmPasswordField) {
		return &transport.ValidationError{
			Field:   ConfirmPasswordField,
			Message: printer.Sprintf(i18n.PasswordMismatch),
		}
	}

	if err := p.env.Transport.Register(ctx, fields); err != nil {
		p.env.logger().Warn("Registration failed", "error", err)
		p.env.Surface.Show(browser.Alert, printer.Sprintf(i18n.RegisterFailed))
		return err
	}
	p.env.logger().Info("Registration submitted")
	return nil
}

func fieldValue(fields []form.Pair, key string) string {
	for _, f := range fields {
		if f.Key == key {
			return f.Value
		}
	}
	return ""
}
