package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/browser"
	"github.com/godel-oidc/authflow/internal/config"
	"github.com/godel-oidc/authflow/internal/flow"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/protocol"
	"github.com/godel-oidc/authflow/internal/transport"
)

// terminal is a browser tab driven from a terminal. Navigations and dialogs
// are printed; decisions are read from the input.
type terminal struct {
	cfg     *config.Config
	client  *transport.Client
	nav     *browser.PrintNavigator
	text    *browser.TextSurface
	storage *browser.Storage
	in      *bufio.Reader
	out     io.Writer
	errOut  io.Writer
	logger  *slog.Logger
	verbose bool

	// page answers the dialogs shown while it is being submitted.
	page *flow.AuthorizePage
}

func (o *options) newTerminal(cmd *cobra.Command) (*terminal, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	logger := setupLogger(level, cmd.ErrOrStderr())
	if cfg.InsecureSkipVerify {
		logger.Warn("TLS certificate verification is disabled")
	}

	out := cmd.OutOrStdout()
	return &terminal{
		cfg:     cfg,
		client:  transport.New(cfg, transport.WithLogger(logger)),
		nav:     browser.NewPrintNavigator(out),
		text:    browser.NewTextSurface(out),
		storage: browser.NewStorageArea(cfg.StorageTTL.Duration).Origin(cfg.Origin),
		in:      bufio.NewReader(cmd.InOrStdin()),
		out:     out,
		errOut:  cmd.ErrOrStderr(),
		logger:  logger,
		verbose: o.verbose,
	}, nil
}

func (t *terminal) env() flow.Env {
	return flow.Env{
		Config:    t.cfg,
		Transport: t.client,
		Navigator: t.nav,
		Surface:   t,
		Storage:   t.storage,
		Logger:    t.logger,
	}
}

// Show implements browser.Surface. Decision dialogs are answered from the
// input before Show returns.
func (t *terminal) Show(d browser.Dialog, text string) {
	t.text.Show(d, text)
	if t.page == nil {
		return
	}
	switch d {
	case browser.DeviceConsent:
		if t.confirm("Approve? [y/N] ") {
			t.page.Modal().Approve()
		} else {
			t.page.Modal().Decline()
		}
	case browser.ServiceAccess:
		if t.confirm("Allow? [y/N] ") {
			t.page.Redirector().Accept()
		} else {
			t.page.Redirector().Decline()
		}
	case browser.CredentialError:
		if t.ask("Type r to try again: ") == "r" {
			t.page.Modal().Retry()
		}
	}
}

// Hide implements browser.Surface.
func (t *terminal) Hide(d browser.Dialog) {
	t.text.Hide(d)
}

// ask prints prompt and returns the next input line, trimmed. End of input
// reads as an empty answer.
func (t *terminal) ask(prompt string) string {
	fmt.Fprint(t.out, prompt)
	line, _ := t.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (t *terminal) confirm(prompt string) bool {
	switch strings.ToLower(t.ask(prompt)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// reloadedSince reports whether a reload was navigated after the first n visits.
func (t *terminal) reloadedSince(n int) bool {
	visits := t.nav.Visits()
	for _, v := range visits[min(n, len(visits)):] {
		if v.Reload {
			return true
		}
	}
	return false
}

// isAuthorizePage reports whether target is the login page of this server.
func (t *terminal) isAuthorizePage(target string) bool {
	u, err := url.Parse(target)
	if err != nil {
		return false
	}
	base, err := url.Parse(t.cfg.Endpoint(t.cfg.Paths.Authorize))
	if err != nil {
		return false
	}
	return u.Host == base.Host && u.Path == base.Path
}

type credentials struct {
	username string
	password string
}

// runAuthorize drives the login page at pageURL until it leaves the page.
// A "try again" reloads the page and starts over with a fresh controller.
func (t *terminal) runAuthorize(ctx context.Context, pageURL string, page *form.Page, creds credentials) error {
	defer func() { t.page = nil }()
	for {
		t.printProviders(page.Providers)

		c := creds
		if c.username == "" {
			c.username = t.ask("Username: ")
		}
		if c.password == "" {
			c.password = t.ask("Password: ")
		}

		before := len(t.nav.Visits())
		t.page = flow.NewAuthorizePage(t.env(), page.Model)
		err := t.page.Submit(ctx, c.username, c.password)
		t.dumpCapture()
		if err == nil || !t.reloadedSince(before) {
			return err
		}

		t.logger.Info("Reloading login page", "url", pageURL)
		var loadErr error
		page, _, loadErr = t.client.LoadPage(ctx, pageURL)
		if loadErr != nil {
			return loadErr
		}
	}
}

func (t *terminal) printProviders(links []form.ProviderLink) {
	if len(links) == 0 {
		return
	}
	fmt.Fprintln(t.out, "Sign in with:")
	for _, l := range links {
		fmt.Fprintf(t.out, "  %s\t%s\n", l.Name, l.URL)
	}
}

// dumpCapture writes the HTTP exchanges of the last step to the error output
// when verbose.
func (t *terminal) dumpCapture() {
	exchanges := t.client.Exchanges()
	if !t.verbose {
		return
	}
	for _, ex := range exchanges {
		fmt.Fprintf(t.errOut, "\n%s %s (%s)\n", ex.Method, ex.URL, ex.Elapsed.Round(time.Millisecond))
		if ex.Err != nil {
			fmt.Fprintf(t.errOut, "error: %s\n", protocol.CleanGoErrorMessage(ex.Err.Error()))
			continue
		}
		fmt.Fprintf(t.errOut, "%s\n%s\n", protocol.FormatHTTPStatusLine(ex.StatusCode), protocol.FormatHTTPHeaders(ex.Headers))
		if len(ex.Body) > 0 {
			fmt.Fprintf(t.errOut, "\n%s\n", protocol.PrettyJSON(ex.Body))
		}
		if params := protocol.ParseURLParams(ex.Headers.Get("Location")); len(params) > 0 {
			fmt.Fprintln(t.errOut, "\nLocation parameters:")
			for _, p := range params {
				fmt.Fprintf(t.errOut, "  %s = %s\n", p.Key, p.Value)
			}
		}
	}
}

// printToken writes an access token, decoded when it is a JWT and verbose.
func (t *terminal) printToken(token string) {
	fmt.Fprintf(t.out, "access_token: %s\n", token)
	if !t.verbose || !protocol.IsJWT(token) {
		return
	}
	header, payload, _ := protocol.DecodeJWT(token)
	fmt.Fprintf(t.errOut, "\nJWT header (unverified):\n%s\nJWT payload (unverified):\n%s\n", header, payload)
}
