package flow

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"

	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/protocol"
)

// AuthorizeRequest customizes the authorization request a login page is opened for.
type AuthorizeRequest struct {
	ResponseType string            // empty means the configured response_type
	Extra        map[string]string // added after the configured extra_auth_params
}

// LoadAuthorizePage opens the login page of a fresh authorization request
// and returns the parsed page with the URL it was served from.
func LoadAuthorizePage(ctx context.Context, env Env, oc *oauth2.Config, req AuthorizeRequest) (*form.Page, string, error) {
	state, err := protocol.RandomHex(16)
	if err != nil {
		return nil, "", fmt.Errorf("generate state: %w", err)
	}

	responseType := req.ResponseType
	if responseType == "" {
		responseType = env.Config.Client.ResponseType
	}
	opts := []oauth2.AuthCodeOption{oauth2.SetAuthURLParam("response_type", responseType)}
	for _, k := range protocol.SortedKeys(env.Config.Client.ExtraAuthParams) {
		opts = append(opts, oauth2.SetAuthURLParam(k, env.Config.Client.ExtraAuthParams[k]))
	}
	for _, k := range protocol.SortedKeys(req.Extra) {
		opts = append(opts, oauth2.SetAuthURLParam(k, req.Extra[k]))
	}

	authURL := oc.AuthCodeURL(state, opts...)
	env.logger().Debug("Loading authorize page", "url", authURL, "response_type", responseType)

	page, final, err := env.Transport.LoadPage(ctx, authURL)
	if err != nil {
		return nil, final, fmt.Errorf("load authorize page: %w", err)
	}
	return page, final, nil
}
