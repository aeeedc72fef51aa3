// SPDX-License-Identifier: MPL-2.0

// Package config loads vendfile's settings from a TOML config file in the
// platform config directory, with defaults for everything so no file is
// required.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/vendfile/vendfile/internal/diag"
)

const (
	// AppName is the application name, used for the config directory.
	AppName = "vendfile"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

type (
	// Config holds the resolved settings for one invocation.
	Config struct {
		// APIBase is the repository metadata API base URL.
		APIBase string `mapstructure:"api_base"`

		// UserAgent is sent with every request.
		UserAgent string `mapstructure:"user_agent"`

		// HTTPTimeout bounds each individual request. The engine itself has
		// no timeout logic; this is the transport's job.
		HTTPTimeout time.Duration `mapstructure:"http_timeout"`

		// TickInterval is the pause between scheduling passes.
		TickInterval time.Duration `mapstructure:"tick_interval"`

		// LogLevel is one of debug, info, warn, error.
		LogLevel string `mapstructure:"log_level"`

		// Progress defaults `vendfile sync` to the live progress view.
		Progress bool `mapstructure:"progress"`
	}

	// LoadOptions overrides where the config is read from, primarily for tests.
	LoadOptions struct {
		// ConfigFilePath loads exactly this file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the platform config directory lookup.
		ConfigDirPath string
	}
)

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		APIBase:      "https://api.github.com",
		UserAgent:    "vendfile/dev",
		HTTPTimeout:  30 * time.Second,
		TickInterval: 50 * time.Millisecond,
		LogLevel:     "info",
		Progress:     false,
	}
}

// ConfigDir returns the vendfile configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions performs option-driven config loading. A missing config
// file is not an error; the defaults apply.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("api_base", defaults.APIBase)
	v.SetDefault("user_agent", defaults.UserAgent)
	v.SetDefault("http_timeout", defaults.HTTPTimeout)
	v.SetDefault("tick_interval", defaults.TickInterval)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("progress", defaults.Progress)

	v.SetConfigType(ConfigFileExt)

	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, diag.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Remove the --config flag to use the defaults").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, diag.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Check that the file contains valid TOML syntax").
				Wrap(err).
				BuildError()
		}
	} else {
		cfgDir := opts.ConfigDirPath
		if cfgDir == "" {
			dir, err := ConfigDir()
			if err != nil {
				return nil, err
			}
			cfgDir = dir
		}

		cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		if fileExists(cfgPath) {
			v.SetConfigFile(cfgPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, diag.NewErrorContext().
					WithOperation("load configuration").
					WithResource(cfgPath).
					WithSuggestion("Check that the file contains valid TOML syntax").
					Wrap(err).
					BuildError()
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling configuration: %w", err)
	}

	return &cfg, nil
}

// fileExists reports whether path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
