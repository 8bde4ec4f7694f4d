// Package cli implements the authflow command line.
package cli

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/godel-oidc/authflow/internal/config"
)

type options struct {
	configPath string
	baseURL    string
	verbose    bool
}

// NewRootCmd builds the authflow command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "authflow",
		Short:         "Drive OAuth2/OIDC authorization flows from a terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("CONFIG_FILE"), "config file path (default $CONFIG_FILE)")
	root.PersistentFlags().StringVar(&opts.baseURL, "base-url", "", "authorization server base URL, overrides base_url of the config file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level and dump the last HTTP response")

	root.AddCommand(
		cmdAuthorize(opts),
		cmdDevice(opts),
		cmdProvider(opts),
		cmdLogin(opts),
		cmdUser(opts),
		cmdRegister(opts),
		cmdHealthcheck(opts),
	)
	return root
}

func (o *options) loadConfig() (*config.Config, error) {
	switch {
	case o.configPath != "":
		cfg, err := config.Load(o.configPath)
		if err != nil {
			return nil, err
		}
		if o.baseURL != "" {
			if err := cfg.SetBaseURL(o.baseURL); err != nil {
				return nil, err
			}
		}
		return cfg, nil
	case o.baseURL != "":
		return config.Default(o.baseURL)
	default:
		return nil, errors.New("--config, CONFIG_FILE or --base-url is required")
	}
}

func setupLogger(level string, w io.Writer) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
