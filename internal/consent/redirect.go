package consent

import (
	"context"
	"fmt"
	"strings"

	"github.com/godel-oidc/authflow/internal/browser"
)

// RefusedCode replaces the authorization code when the user declines access.
// The receiving client treats it as an explicit refusal, not a transport error.
const RefusedCode = "user_refused_to_give_permission"

// Redirector asks "service wants access to" after the server accepted the
// credentials and follows or refuses the redirect accordingly.
type Redirector struct {
	dialog
	nav browser.Navigator
}

// NewRedirector creates the post-consent redirector for a page.
func NewRedirector(surface browser.Surface, nav browser.Navigator) *Redirector {
	return &Redirector{
		dialog: dialog{kind: browser.ServiceAccess, surface: surface},
		nav:    nav,
	}
}

// Accept is the accept button handler.
func (r *Redirector) Accept() bool {
	return r.click(Approved)
}

// Decline is the decline button handler.
func (r *Redirector) Decline() bool {
	return r.click(Declined)
}

// Awaiting reports whether the dialog is waiting for a decision.
func (r *Redirector) Awaiting() bool {
	return r.awaiting()
}

// Confirm shows the access text, waits for a decision and navigates to
// redirectURL, or to its refused form when declined.
func (r *Redirector) Confirm(ctx context.Context, text, redirectURL string) (Decision, error) {
	g, err := r.open(AccessText(text))
	if err != nil {
		return Pending, err
	}
	dec, err := g.Wait(ctx)
	if err != nil {
		return Pending, err
	}

	target := redirectURL
	if dec == Declined {
		target = DeclineURL(redirectURL)
	}
	if err := r.nav.Navigate(ctx, target); err != nil {
		return dec, fmt.Errorf("navigate: %w", err)
	}
	return dec, nil
}

// AccessText is the confirmation line shown for the scopes in text.
func AccessText(text string) string {
	return "Service wants access to: " + text
}

// DeclineURL replaces every code assignment in the query of redirectURL with
// RefusedCode. Other parameters keep their order and encoding. A URL without
// a code parameter gets one appended.
func DeclineURL(redirectURL string) string {
	base, fragment, hasFragment := strings.Cut(redirectURL, "#")
	path, query, _ := strings.Cut(base, "?")

	var parts []string
	if query != "" {
		parts = strings.Split(query, "&")
	}
	replaced := false
	for i, p := range parts {
		if key, _, _ := strings.Cut(p, "="); key == "code" {
			parts[i] = "code=" + RefusedCode
			replaced = true
		}
	}
	if !replaced {
		parts = append(parts, "code="+RefusedCode)
	}

	out := path + "?" + strings.Join(parts, "&")
	if hasFragment {
		out += "#" + fragment
	}
	return out
}
