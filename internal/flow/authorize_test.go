package flow

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/godel-oidc/authflow/internal/browser"
	"github.com/godel-oidc/authflow/internal/consent"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/transport"
)

const redirectURL = "https://rp.example.com/cb?code=abc&state=xyz"

func authorizeServer(status int, respBody string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /authorize/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, respBody)
	})
	mux.HandleFunc("DELETE /device/auth/cancel", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/device/cancelled", http.StatusSeeOther)
	})
	mux.HandleFunc("GET /device/cancelled", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "cancelled")
	})
	return mux
}

func codeModel(responseType string) form.Model {
	return form.NewModel(
		form.Field{Name: "client_id", Value: "test_client"},
		form.Field{Name: "response_type", Value: responseType},
		form.Field{Name: "scope", Value: "None"},
		form.Field{Name: "redirect_uri", Value: "https://rp.example.com/cb"},
		form.Field{Name: "nonce", Value: "None"},
	)
}

// clicker answers every dialog of page with the configured buttons.
type clicker struct {
	page    *AuthorizePage
	device  consent.Decision
	access  consent.Decision
	devices int
}

func (c *clicker) onShow(d browser.Dialog, _ string) {
	switch d {
	case browser.DeviceConsent:
		c.devices++
		if c.device == consent.Approved {
			c.page.Modal().Approve()
		} else if c.device == consent.Declined {
			c.page.Modal().Decline()
		}
	case browser.ServiceAccess:
		if c.access == consent.Approved {
			c.page.Redirector().Accept()
		} else if c.access == consent.Declined {
			c.page.Redirector().Decline()
		}
	}
}

const okBody = `{"some_text":"openid profile","redirect_url":"` + redirectURL + `"}`

func TestAuthorizeCodeGrant(t *testing.T) {
	tests := []struct {
		name       string
		access     consent.Decision
		wantVisits []string
	}{
		{
			name:       "access accepted",
			access:     consent.Approved,
			wantVisits: []string{redirectURL},
		},
		{
			name:       "access declined",
			access:     consent.Declined,
			wantVisits: []string{"https://rp.example.com/cb?code=user_refused_to_give_permission&state=xyz"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clicker{access: tt.access}
			tab := newTestTab(t, authorizeServer(http.StatusOK, okBody), c.onShow)
			c.page = NewAuthorizePage(tab.env, codeModel("code"))

			if err := c.page.Submit(context.Background(), "u", "p"); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			if c.devices != 0 {
				t.Errorf("device consent shown %d times for a code grant", c.devices)
			}
			got := tab.visits()
			if len(got) != 1 || got[0] != tt.wantVisits[0] {
				t.Errorf("visits = %v, want %v", got, tt.wantVisits)
			}

			reqs := tab.log.requests()
			if len(reqs) != 1 {
				t.Fatalf("requests = %+v, want one authorize POST", reqs)
			}
			want := "client_id=test_client&response_type=code&scope=username%3Du%26password%3Dp" +
				"&redirect_uri=https%3A%2F%2Frp.example.com%2Fcb&nonce=&username=u&password=p"
			if reqs[0].Body != want {
				t.Errorf("body =\n%s\nwant\n%s", reqs[0].Body, want)
			}
		})
	}
}

func TestAuthorizeCodeGrantRejected(t *testing.T) {
	c := &clicker{access: consent.Approved}
	tab := newTestTab(t, authorizeServer(http.StatusUnauthorized, `{"detail":"bad credentials"}`), c.onShow)
	c.page = NewAuthorizePage(tab.env, codeModel("code"))

	err := c.page.Submit(context.Background(), "u", "wrong")
	var credErr *transport.CredentialError
	if !errors.As(err, &credErr) {
		t.Fatalf("err = %v, want *transport.CredentialError", err)
	}
	if len(tab.visits()) != 0 {
		t.Errorf("visits = %v, want none", tab.visits())
	}
	if c.page.Modal().CredentialErrorShown() {
		t.Error("credential overlay is only for device code grants")
	}
}

func TestAuthorizeDeviceGrant(t *testing.T) {
	tests := []struct {
		name          string
		device        consent.Decision
		wantVisit     func(tab *testTab) string
		wantAuthorize int
		wantCancel    int
		wantState     consent.State
	}{
		{
			name:          "approved",
			device:        consent.Approved,
			wantVisit:     func(*testTab) string { return redirectURL },
			wantAuthorize: 1,
			wantState:     consent.ConsentApproved,
		},
		{
			name:       "declined",
			device:     consent.Declined,
			wantVisit:  func(tab *testTab) string { return tab.srv.URL + "/device/cancelled" },
			wantCancel: 1,
			wantState:  consent.ConsentDeclined,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &clicker{device: tt.device, access: consent.Approved}
			tab := newTestTab(t, authorizeServer(http.StatusOK, okBody), c.onShow)
			c.page = NewAuthorizePage(tab.env, codeModel(form.DeviceCodeGrantType))

			if err := c.page.Submit(context.Background(), "u", "p"); err != nil {
				t.Fatalf("Submit failed: %v", err)
			}

			if c.devices != 1 {
				t.Errorf("device consent shown %d times, want 1", c.devices)
			}
			if got := c.page.Modal().State(); got != tt.wantState {
				t.Errorf("State = %v, want %v", got, tt.wantState)
			}
			visits := tab.visits()
			if len(visits) != 1 || visits[0] != tt.wantVisit(tab) {
				t.Errorf("visits = %v, want [%s]", visits, tt.wantVisit(tab))
			}
			if n := tab.log.count(http.MethodPost, "/authorize/"); n != tt.wantAuthorize {
				t.Errorf("authorize requests = %d, want %d", n, tt.wantAuthorize)
			}
			if n := tab.log.count(http.MethodDelete, "/device/auth/cancel"); n != tt.wantCancel {
				t.Errorf("cancel requests = %d, want %d", n, tt.wantCancel)
			}
		})
	}
}

func TestAuthorizeDeviceGrantCredentialFailure(t *testing.T) {
	c := &clicker{device: consent.Approved, access: consent.Approved}
	tab := newTestTab(t, authorizeServer(http.StatusUnauthorized, `{"error":"access_denied"}`), c.onShow)
	c.page = NewAuthorizePage(tab.env, codeModel(form.DeviceCodeGrantType))

	err := c.page.Submit(context.Background(), "u", "wrong")
	if !transport.IsRecoverable(err) {
		t.Fatalf("err = %v, want a credential failure", err)
	}

	if !c.page.Modal().CredentialErrorShown() {
		t.Fatal("credential overlay not shown")
	}
	if text, ok := tab.screen.Visible(browser.CredentialError); !ok || text != "Invalid credentials. Try again." {
		t.Errorf("overlay = (%q, %v)", text, ok)
	}
	if len(tab.visits()) != 0 {
		t.Fatalf("visits = %v, want none before retry", tab.visits())
	}

	if !c.page.Modal().Retry() {
		t.Fatal("Retry() = false")
	}
	if got := tab.visits(); len(got) != 1 || got[0] != "(reload)" {
		t.Errorf("visits = %v, want a single reload", got)
	}
	if _, ok := tab.screen.Visible(browser.CredentialError); ok {
		t.Error("overlay still visible after retry")
	}
	if c.page.Modal().Retry() {
		t.Error("second Retry() should be ignored")
	}
}

func TestAuthorizeDeviceGrantNetworkFailure(t *testing.T) {
	c := &clicker{device: consent.Approved}
	tab := newTestTab(t, authorizeServer(http.StatusOK, okBody), c.onShow)
	c.page = NewAuthorizePage(tab.env, codeModel(form.DeviceCodeGrantType))
	tab.srv.Close()

	err := c.page.Submit(context.Background(), "u", "p")
	var netErr *transport.NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("err = %v, want *transport.NetworkError", err)
	}
	if !c.page.Modal().CredentialErrorShown() {
		t.Error("network failure should show the same overlay")
	}
	if len(tab.visits()) != 0 {
		t.Errorf("visits = %v, want none", tab.visits())
	}
}

func TestAuthorizePageReusedAcrossSubmissions(t *testing.T) {
	c := &clicker{device: consent.Declined, access: consent.Approved}
	tab := newTestTab(t, authorizeServer(http.StatusOK, okBody), c.onShow)
	c.page = NewAuthorizePage(tab.env, codeModel(form.DeviceCodeGrantType))
	ctx := context.Background()

	if err := c.page.Submit(ctx, "u", "p"); err != nil {
		t.Fatalf("first Submit failed: %v", err)
	}
	c.device = consent.Approved
	if err := c.page.Submit(ctx, "u", "p"); err != nil {
		t.Fatalf("second Submit failed: %v", err)
	}

	if n := tab.log.count(http.MethodDelete, "/device/auth/cancel"); n != 1 {
		t.Errorf("cancel requests = %d, want 1", n)
	}
	if n := tab.log.count(http.MethodPost, "/authorize/"); n != 1 {
		t.Errorf("authorize requests = %d, want 1", n)
	}
	if c.devices != 2 {
		t.Errorf("device consent shown %d times, want 2", c.devices)
	}
}

func TestAuthorizeWaitCancelled(t *testing.T) {
	c := &clicker{} // never clicks
	tab := newTestTab(t, authorizeServer(http.StatusOK, okBody), c.onShow)
	c.page = NewAuthorizePage(tab.env, codeModel(form.DeviceCodeGrantType))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.page.Submit(ctx, "u", "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if c.page.Modal().State() != consent.AwaitingDeviceConsent {
		t.Errorf("State = %v, want awaiting", c.page.Modal().State())
	}
	if len(tab.log.requests()) != 0 {
		t.Errorf("requests = %+v, want none", tab.log.requests())
	}
}
