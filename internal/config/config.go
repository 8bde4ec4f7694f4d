package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ScopePolicy selects how end-user credentials are carried in the authorize body.
type ScopePolicy string

const (
	// ScopeMerged appends "&username=..&password=.." to the scope field only.
	ScopeMerged ScopePolicy = "merged"
	// ScopeExplicit sends discrete username/password fields only.
	ScopeExplicit ScopePolicy = "explicit"
	// ScopeBoth does both. Later revisions of the login form send both.
	ScopeBoth ScopePolicy = "both"
)

// DefaultStorageKey is the storage key the bearer token is written under.
const DefaultStorageKey = "access_token_godel_oidc"

// Config is the top-level configuration.
type Config struct {
	BaseURL            string         `toml:"base_url"`
	Issuer             string         `toml:"issuer"` // OIDC discovery (optional)
	InsecureSkipVerify bool           `toml:"insecure_skip_verify"`
	LogLevel           string         `toml:"log_level"`
	Locale             string         `toml:"locale"`
	Timeout            Duration       `toml:"timeout"`
	ScopePolicy        ScopePolicy    `toml:"scope_policy"`
	StorageKey         string         `toml:"storage_key"`
	StorageTTL         Duration       `toml:"storage_ttl"`
	Client             ClientConfig   `toml:"client"`
	Paths              PathsConfig    `toml:"paths"`
	Providers          []ProviderLink `toml:"provider"`

	// Computed fields (not from TOML)
	Origin string // scheme://host of base_url, used as the storage origin
}

// ClientConfig describes the relying party on whose behalf the login page is opened.
type ClientConfig struct {
	ClientID        string            `toml:"client_id"`
	ClientSecret    string            `toml:"client_secret"`
	RedirectURI     string            `toml:"redirect_uri"`
	Scopes          []string          `toml:"scopes"`
	ResponseType    string            `toml:"response_type"`
	ExtraAuthParams map[string]string `toml:"extra_auth_params"`
}

// PathsConfig holds the authorization server endpoints, relative to base_url.
type PathsConfig struct {
	Authorize    string `toml:"authorize"`
	DeviceCancel string `toml:"device_cancel"`
	OIDCState    string `toml:"oidc_state"`
	DeviceAuth   string `toml:"device_auth"`
	DeviceStart  string `toml:"device_start"`
	Token        string `toml:"token"`
	Login        string `toml:"login"`
	LoginPage    string `toml:"login_page"`
	User         string `toml:"user"`
	Register     string `toml:"register"`
	HealthCheck  string `toml:"healthcheck"`
}

// ProviderLink is a pre-built external identity provider authorization link.
type ProviderLink struct {
	Name string `toml:"name"`
	Link string `toml:"link"`
}

// Duration is a time.Duration decoded from a TOML string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

// Load reads the configuration from a TOML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)

	switch cfg.ScopePolicy {
	case ScopeMerged, ScopeExplicit, ScopeBoth:
	default:
		return nil, fmt.Errorf("scope_policy %q: must be merged, explicit or both", cfg.ScopePolicy)
	}

	origin, err := parseBaseURL(&cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.Origin = origin

	seen := make(map[string]bool)
	for i, p := range cfg.Providers {
		if p.Name == "" || p.Link == "" {
			return nil, fmt.Errorf("provider[%d]: name and link are required", i)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("duplicate provider %q", p.Name)
		}
		seen[p.Name] = true
		if _, err := url.Parse(p.Link); err != nil {
			return nil, fmt.Errorf("provider[%d] (%s): invalid link: %w", i, p.Name, err)
		}
	}

	return cfg, nil
}

// Default returns a configuration for baseURL with every default applied.
func Default(baseURL string) (*Config, error) {
	cfg := &Config{BaseURL: baseURL}
	applyDefaults(cfg)
	origin, err := parseBaseURL(&cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.Origin = origin
	return cfg, nil
}

// SetBaseURL replaces base_url and recomputes the origin.
func (c *Config) SetBaseURL(raw string) error {
	origin, err := parseBaseURL(&raw)
	if err != nil {
		return err
	}
	c.BaseURL = raw
	c.Origin = origin
	return nil
}

// Endpoint joins a configured path onto base_url.
func (c *Config) Endpoint(path string) string {
	return c.BaseURL + path
}

// parseBaseURL validates and normalizes base_url, returning its origin.
func parseBaseURL(baseURL *string) (string, error) {
	if *baseURL == "" {
		return "", fmt.Errorf("base_url is required")
	}

	u, err := url.Parse(*baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base_url %q: %w", *baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base_url %q: scheme must be http or https", *baseURL)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base_url %q: host is required", *baseURL)
	}

	// Normalize base_url: remove trailing slash
	origin := u.Scheme + "://" + u.Host
	*baseURL = origin + strings.TrimRight(u.Path, "/")
	return origin, nil
}

func applyDefaults(c *Config) {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Locale == "" {
		c.Locale = "en"
	}
	if c.Timeout.Duration == 0 {
		c.Timeout.Duration = 30 * time.Second
	}
	if c.ScopePolicy == "" {
		c.ScopePolicy = ScopeBoth
	}
	if c.StorageKey == "" {
		c.StorageKey = DefaultStorageKey
	}
	if c.StorageTTL.Duration == 0 {
		c.StorageTTL.Duration = time.Hour
	}
	applyClientDefaults(&c.Client)
	applyPathDefaults(&c.Paths)
}

func applyClientDefaults(c *ClientConfig) {
	if len(c.Scopes) == 0 {
		c.Scopes = []string{"openid", "profile", "email"}
	}
	if c.ResponseType == "" {
		c.ResponseType = "code"
	}
}

func applyPathDefaults(p *PathsConfig) {
	defaults := []struct {
		field *string
		value string
	}{
		{&p.Authorize, "/authorize/"},
		{&p.DeviceCancel, "/device/auth/cancel"},
		{&p.OIDCState, "/authorize/oidc/state"},
		{&p.DeviceAuth, "/device/auth"},
		{&p.DeviceStart, "/device/"},
		{&p.Token, "/token/"},
		{&p.Login, "/login"},
		{&p.LoginPage, "/user/login"},
		{&p.User, "/user/"},
		{&p.Register, "/user/register"},
		{&p.HealthCheck, "/health"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
}
