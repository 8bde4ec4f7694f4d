// Package flow contains the page controllers of the authorization flow. Each
// controller is built once per page load and discarded on reload.
package flow

import (
	"context"
	"log/slog"

	"golang.org/x/text/message"

	"github.com/godel-oidc/authflow/internal/browser"
	"github.com/godel-oidc/authflow/internal/config"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/i18n"
	"github.com/godel-oidc/authflow/internal/transport"
)

// Transport is the network side of the pages. *transport.Client implements it.
type Transport interface {
	LoadPage(ctx context.Context, target string) (*form.Page, string, error)
	Submit(ctx context.Context, body form.Body) (*transport.AuthorizeResult, error)
	CancelDeviceFlow(ctx context.Context, body form.Body) (string, error)
	RegisterDeviceState(ctx context.Context, state string) error
	SubmitUserCode(ctx context.Context, userCode string) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	FetchUser(ctx context.Context, token, subject string) ([]byte, error)
	Register(ctx context.Context, fields []form.Pair) error
}

// Env is what a page sees of its browser tab.
type Env struct {
	Config    *config.Config
	Transport Transport
	Navigator browser.Navigator
	Surface   browser.Surface
	Storage   *browser.Storage
	Logger    *slog.Logger
}

func (e Env) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

func (e Env) printer() *message.Printer {
	return i18n.Printer(e.Config.Locale)
}
