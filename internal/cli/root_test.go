package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI executes the root command with args, feeding input as stdin.
func runCLI(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootDefaultsAndFlags(t *testing.T) {
	t.Setenv("CONFIG_FILE", "/etc/authflow.toml")
	root := NewRootCmd()

	if root.Use != "authflow" {
		t.Errorf("Use = %q", root.Use)
	}
	if !root.SilenceUsage || !root.SilenceErrors {
		t.Error("usage and errors should be silenced")
	}
	if f := root.PersistentFlags().Lookup("config"); f == nil || f.DefValue != "/etc/authflow.toml" {
		t.Errorf("config flag = %+v, want default from CONFIG_FILE", f)
	}
	for _, name := range []string{"base-url", "verbose"} {
		if root.PersistentFlags().Lookup(name) == nil {
			t.Errorf("missing persistent flag %q", name)
		}
	}

	want := []string{"authorize", "device", "healthcheck", "login", "provider", "register", "user"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("missing command %q in %v", name, got)
		}
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(`base_url = "http://127.0.0.1:8000"
locale = "ru"`), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		opts        options
		wantBaseURL string
		wantLocale  string
		wantErr     bool
	}{
		{
			name:        "config file",
			opts:        options{configPath: path},
			wantBaseURL: "http://127.0.0.1:8000",
			wantLocale:  "ru",
		},
		{
			name:        "base url overrides config file",
			opts:        options{configPath: path, baseURL: "https://auth.example.com/"},
			wantBaseURL: "https://auth.example.com",
			wantLocale:  "ru",
		},
		{
			name:        "base url only",
			opts:        options{baseURL: "https://auth.example.com"},
			wantBaseURL: "https://auth.example.com",
			wantLocale:  "en",
		},
		{
			name:    "nothing",
			wantErr: true,
		},
		{
			name:    "missing file",
			opts:    options{configPath: "/nonexistent/config.toml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := tt.opts.loadConfig()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("loadConfig failed: %v", err)
			}
			if cfg.BaseURL != tt.wantBaseURL {
				t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, tt.wantBaseURL)
			}
			if cfg.Locale != tt.wantLocale {
				t.Errorf("Locale = %q, want %q", cfg.Locale, tt.wantLocale)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	defer slog.SetDefault(slog.Default())

	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := setupLogger(tt.level, io.Discard)
			ctx := context.Background()
			if !logger.Enabled(ctx, tt.want) {
				t.Errorf("level %v disabled", tt.want)
			}
			if tt.want > slog.LevelDebug && logger.Enabled(ctx, tt.want-1) {
				t.Errorf("level below %v enabled", tt.want)
			}
		})
	}
}

func TestParseFields(t *testing.T) {
	pairs, err := parseFields([]string{"email=a@b.com", "name=Alice Smith", "note=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	if len(pairs) != 3 || pairs[0].Key != "email" || pairs[1].Value != "Alice Smith" || pairs[2].Value != "a=b" {
		t.Errorf("pairs = %+v", pairs)
	}

	if _, err := parseFields([]string{"novalue"}); err == nil {
		t.Error("expected error for a field without =")
	}
	if _, err := parseFields([]string{"=x"}); err == nil {
		t.Error("expected error for an empty key")
	}
}
