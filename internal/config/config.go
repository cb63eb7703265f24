// SPDX-License-Identifier: MPL-2.0

// Package config loads polbuild's tool-level configuration: cache location,
// registry endpoints, git identity, and interactivity defaults. Project
// state lives in the manifest, never here.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"polbuild/internal/index"
)

const (
	// AppName is the application name, used for config and cache paths.
	AppName = "polbuild"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

// Config holds tool-level settings. Zero values fall back to defaults at
// load time, so a missing config file is not an error.
type Config struct {
	// CacheDir is the root of the download cache (content-addressed by
	// commit under <CacheDir>/downloads).
	CacheDir string `mapstructure:"cache_dir" toml:"cache_dir"`
	// IndexURL overrides the default module index.
	IndexURL string `mapstructure:"index_url" toml:"index_url"`
	// VersionsURL overrides the registry version-to-checksum catalog.
	VersionsURL string `mapstructure:"versions_url" toml:"versions_url"`
	// ModulesURL overrides the registry archive base URL.
	ModulesURL string `mapstructure:"modules_url" toml:"modules_url"`
	// NonInteractive answers every prompt with its default.
	NonInteractive bool `mapstructure:"non_interactive" toml:"non_interactive"`
	// GitUserName and GitUserEmail override the commit identity.
	GitUserName  string `mapstructure:"git_user_name" toml:"git_user_name"`
	GitUserEmail string `mapstructure:"git_user_email" toml:"git_user_email"`
}

// ConfigDir returns the polbuild configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
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

// Load reads the config file (if present), applies POLBUILD_* environment
// overrides, and fills defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType(ConfigFileExt)
	v.SetEnvPrefix("POLBUILD")
	v.AutomaticEnv()

	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.CacheDir == "" {
		if base, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(base, AppName)
		} else {
			c.CacheDir = filepath.Join(".", "."+AppName)
		}
	}
	if c.IndexURL == "" {
		c.IndexURL = index.DefaultURL
	}
	if c.VersionsURL == "" {
		c.VersionsURL = index.DefaultVersionsURL
	}
	if c.ModulesURL == "" {
		c.ModulesURL = index.DefaultModulesURL
	}
}

// WriteDefault writes a starter config file with the current effective
// values, creating the config directory if needed. Fails if a config file
// already exists.
func (c *Config) WriteDefault() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("config file %s already exists", path)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
