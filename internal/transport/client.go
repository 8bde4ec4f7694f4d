// Package transport performs the network round-trips of the authorization
// flow. Every call is a single attempt: there is no retry and no backoff.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/godel-oidc/authflow/internal/config"
	"github.com/godel-oidc/authflow/internal/form"
	"github.com/godel-oidc/authflow/internal/protocol"
)

const formContentType = "application/x-www-form-urlencoded"

// AuthorizeResult is the JSON body of a successful authorize submission.
type AuthorizeResult struct {
	Text        string `json:"some_text"`
	RedirectURL string `json:"redirect_url"`
}

// Client talks to one authorization server.
type Client struct {
	cfg        *config.Config
	httpClient *http.Client // follows redirects
	noRedirect *http.Client // returns the first response as is
	recorder   *recorder
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	base   http.RoundTripper
	logger *slog.Logger
}

// WithRoundTripper sets the underlying transport.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *clientOptions) { o.base = rt }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// New creates a client for cfg. Cookies set by the server are kept for the
// client's lifetime, as a browser tab would.
func New(cfg *config.Config, opts ...Option) *Client {
	o := clientOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.base == nil && cfg.InsecureSkipVerify {
		o.base = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	rec := newRecorder(o.base)
	jar, _ := cookiejar.New(nil)

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: rec,
			Jar:       jar,
			Timeout:   cfg.Timeout.Duration,
		},
		noRedirect: &http.Client{
			Transport: rec,
			Jar:       jar,
			Timeout:   cfg.Timeout.Duration,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		recorder: rec,
		logger:   o.logger,
	}
}

// HTTPClient returns the redirect-following client, for libraries that take one.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Exchanges returns the HTTP exchanges made since the previous call, one per
// redirect hop.
func (c *Client) Exchanges() []Exchange {
	return c.recorder.Drain()
}

// response is a fully read HTTP response.
type response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	FinalURL   string
}

func (c *Client) do(ctx context.Context, hc *http.Client, op, method, target, contentType string, body io.Reader, header http.Header) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", op, err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", "op", op, "method", method, "url", target, "error", err)
		return nil, &NetworkError{Op: op, URL: target, Err: fmt.Errorf("%s", protocol.CleanGoErrorMessage(err.Error()))}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, URL: target, Err: err}
	}

	finalURL := target
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	c.logger.Debug("Request completed", "op", op, "method", method, "url", target, "status", resp.StatusCode, "final_url", finalURL)

	return &response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
		FinalURL:   finalURL,
	}, nil
}

func credentialError(op string, resp *response) *CredentialError {
	code, desc, uri := protocol.ParseErrorBody(resp.Body)
	if code == "" {
		if v := resp.Header.Get("WWW-Authenticate"); v != "" {
			code, desc, uri = protocol.ParseWWWAuthenticate(v)
		}
	}
	return &CredentialError{
		Op:          op,
		StatusCode:  resp.StatusCode,
		ErrorCode:   code,
		Description: desc,
		URI:         uri,
		RawBody:     string(resp.Body),
	}
}

// LoadPage fetches an HTML page and parses its model fields and provider links.
// The returned URL is where the page was finally served from.
func (c *Client) LoadPage(ctx context.Context, target string) (*form.Page, string, error) {
	resp, err := c.do(ctx, c.httpClient, "load_page", http.MethodGet, target, "", nil, nil)
	if err != nil {
		return nil, "", err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return nil, resp.FinalURL, credentialError("load_page", resp)
	}
	page, err := form.ParsePage(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, resp.FinalURL, err
	}
	return page, resp.FinalURL, nil
}

// Submit posts the authorize body. Redirects are not followed: success is a
// 2xx carrying the consent text and the redirect URL as JSON.
func (c *Client) Submit(ctx context.Context, body form.Body) (*AuthorizeResult, error) {
	target := c.cfg.Endpoint(c.cfg.Paths.Authorize)
	resp, err := c.do(ctx, c.noRedirect, "authorize", http.MethodPost, target, formContentType, strings.NewReader(body.Encode()), nil)
	if err != nil {
		return nil, err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return nil, credentialError("authorize", resp)
	}

	var result AuthorizeResult
	if err := json.Unmarshal(resp.Body, &result); err != nil || result.RedirectURL == "" {
		return nil, &CredentialError{
			Op:          "authorize",
			StatusCode:  resp.StatusCode,
			ErrorCode:   "invalid_response",
			Description: "response carries no redirect_url",
			RawBody:     string(resp.Body),
		}
	}
	return &result, nil
}

// CancelDeviceFlow deletes the pending device authorization and returns the
// URL the server settled on, which the caller navigates to.
func (c *Client) CancelDeviceFlow(ctx context.Context, body form.Body) (string, error) {
	target := c.cfg.Endpoint(c.cfg.Paths.DeviceCancel)
	resp, err := c.do(ctx, c.httpClient, "cancel_device_flow", http.MethodDelete, target, formContentType, strings.NewReader(body.Encode()), nil)
	if err != nil {
		return "", err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		c.logger.Warn("Device flow cancellation rejected", "status", resp.StatusCode, "final_url", resp.FinalURL)
	}
	return resp.FinalURL, nil
}

// RegisterDeviceState binds a provider link's state to this browser session.
func (c *Client) RegisterDeviceState(ctx context.Context, state string) error {
	target := c.cfg.Endpoint(c.cfg.Paths.OIDCState)
	data := url.Values{"state": {state}}
	resp, err := c.do(ctx, c.httpClient, "register_state", http.MethodPost, target, formContentType, strings.NewReader(data.Encode()), nil)
	if err != nil {
		return err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return credentialError("register_state", resp)
	}
	return nil
}

// SubmitUserCode posts a device user code and returns the URL the server
// redirected to. The URL is returned even when the code was rejected.
func (c *Client) SubmitUserCode(ctx context.Context, userCode string) (string, error) {
	target := c.cfg.Endpoint(c.cfg.Paths.DeviceAuth)
	body := form.NewBody(form.Pair{Key: "user_code", Value: userCode})
	resp, err := c.do(ctx, c.httpClient, "submit_user_code", http.MethodPost, target, formContentType, strings.NewReader(body.Encode()), nil)
	if err != nil {
		return "", err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return resp.FinalURL, credentialError("submit_user_code", resp)
	}
	return resp.FinalURL, nil
}

// Login exchanges email and password for an access token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	target := c.cfg.Endpoint(c.cfg.Paths.Login)
	data := url.Values{"email": {email}, "password": {password}}
	resp, err := c.do(ctx, c.noRedirect, "login", http.MethodPost, target, formContentType, strings.NewReader(data.Encode()), nil)
	if err != nil {
		return "", err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return "", credentialError("login", resp)
	}

	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(resp.Body, &tok); err != nil || tok.AccessToken == "" {
		return "", &CredentialError{
			Op:          "login",
			StatusCode:  resp.StatusCode,
			ErrorCode:   "invalid_response",
			Description: "response carries no access_token",
			RawBody:     string(resp.Body),
		}
	}
	return tok.AccessToken, nil
}

// FetchUser requests the user page of subject with token as Bearer credential.
func (c *Client) FetchUser(ctx context.Context, token, subject string) ([]byte, error) {
	target := c.cfg.Endpoint(c.cfg.Paths.User) + url.PathEscape(subject)
	header := http.Header{"Authorization": {"Bearer " + token}}
	resp, err := c.do(ctx, c.httpClient, "fetch_user", http.MethodGet, target, "", nil, header)
	if err != nil {
		return nil, err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return nil, credentialError("fetch_user", resp)
	}
	return resp.Body, nil
}

// Register posts a registration form as multipart/form-data. Any status other
// than 200 is a failure.
func (c *Client) Register(ctx context.Context, fields []form.Pair) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := mw.WriteField(f.Key, f.Value); err != nil {
			return fmt.Errorf("register: write field %s: %w", f.Key, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("register: close form: %w", err)
	}

	target := c.cfg.Endpoint(c.cfg.Paths.Register)
	resp, err := c.do(ctx, c.httpClient, "register", http.MethodPost, target, mw.FormDataContentType(), &buf, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return credentialError("register", resp)
	}
	return nil
}

// HealthCheck reports whether the authorization server answers 2xx on its health path.
func (c *Client) HealthCheck(ctx context.Context) error {
	target := c.cfg.Endpoint(c.cfg.Paths.HealthCheck)
	resp, err := c.do(ctx, c.httpClient, "healthcheck", http.MethodGet, target, "", nil, nil)
	if err != nil {
		return err
	}
	if !protocol.IsSuccess(resp.StatusCode) {
		return credentialError("healthcheck", resp)
	}
	return nil
}
