// Package config manages the gh-csm configuration file.
// Config is stored in ~/.config/gh-csm/config.yaml
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configDirName  = "gh-csm"
	configFileName = "config.yaml"
	tokensFileName = "tokens"
)

// Config represents the gh-csm configuration.
type Config struct {
	Defaults Defaults        `mapstructure:"defaults" yaml:"defaults"`
	Repos    map[string]Repo `mapstructure:"repos" yaml:"repos"`
	Terminal Terminal        `mapstructure:"terminal" yaml:"terminal"`
	SSH      SSH             `mapstructure:"ssh" yaml:"ssh"`
	Hooks    Hooks           `mapstructure:"hooks" yaml:"hooks"`
	Author   Author          `mapstructure:"author" yaml:"author"`
}

// Defaults are the default settings for codespace and repository creation.
type Defaults struct {
	Machine            string `mapstructure:"machine" yaml:"machine"`
	Location           string `mapstructure:"location" yaml:"location"`
	Devcontainer       string `mapstructure:"devcontainer" yaml:"devcontainer"`
	IdleTimeout        int    `mapstructure:"idle_timeout" yaml:"idle_timeout"` // minutes
	DefaultPermissions bool   `mapstructure:"default_permissions" yaml:"default_permissions"`
	Visibility         string `mapstructure:"visibility" yaml:"visibility"`
	License            string `mapstructure:"license" yaml:"license"`
	AutoConfirm        bool   `mapstructure:"auto_confirm" yaml:"auto_confirm"`
}

// Repo is per-repository configuration. Nil pointers inherit Defaults.
type Repo struct {
	Alias              string `mapstructure:"alias" yaml:"alias,omitempty"`
	Machine            string `mapstructure:"machine" yaml:"machine,omitempty"`
	Branch             string `mapstructure:"branch" yaml:"branch,omitempty"`
	Devcontainer       string `mapstructure:"devcontainer" yaml:"devcontainer,omitempty"`
	DefaultPermissions *bool  `mapstructure:"default_permissions" yaml:"default_permissions,omitempty"`
	SSHRetry           *bool  `mapstructure:"ssh_retry" yaml:"ssh_retry,omitempty"`
}

// Terminal configures terminal integration.
type Terminal struct {
	SetTabTitle bool   `mapstructure:"set_tab_title" yaml:"set_tab_title"`
	TitleFormat string `mapstructure:"title_format" yaml:"title_format"`
	// Picker is "auto" (fzf when installed), "fzf" or "builtin".
	Picker string `mapstructure:"picker" yaml:"picker"`
}

// SSH configures reconnect behavior of the ssh command.
type SSH struct {
	Retry      bool `mapstructure:"retry" yaml:"retry"`
	RetryDelay int  `mapstructure:"retry_delay" yaml:"retry_delay"` // seconds
	MaxRetries int  `mapstructure:"max_retries" yaml:"max_retries"`
}

// Hooks are shell commands run after lifecycle events. The codespace name
// is exported as CSM_CODESPACE.
type Hooks struct {
	PostCreate []string `mapstructure:"post_create" yaml:"post_create,omitempty"`
}

// Author signs the initial commit pushed into empty repositories.
type Author struct {
	Name  string `mapstructure:"name" yaml:"name,omitempty"`
	Email string `mapstructure:"email" yaml:"email,omitempty"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Defaults: Defaults{
			Machine:      "basicLinux32gb",
			Location:     "EuropeWest",
			Devcontainer: "",
			IdleTimeout:  30,
			Visibility:   "private",
			License:      "mit",
		},
		Repos: map[string]Repo{},
		Terminal: Terminal{
			SetTabTitle: true,
			TitleFormat: "CS: {short_repo}:{branch}",
			Picker:      "auto",
		},
		SSH: SSH{
			Retry:      false,
			RetryDelay: 2,
			MaxRetries: 10,
		},
	}
}

// Dir returns the path to the config directory.
func Dir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, configDirName), nil
}

// Path returns the config file path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// TokensPath returns the token file path.
func TokensPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, tokensFileName), nil
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Save writes the config to path, or to Path when path is empty.
func Save(cfg *Config, path string) error {
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ResolveAlias looks up a repo by alias and returns the full repo name.
// If no alias matches, returns the input unchanged.
func (c *Config) ResolveAlias(alias string) string {
	for repo, cfg := range c.Repos {
		if cfg.Alias == alias {
			return repo
		}
	}
	return alias
}

// GetRepoConfig returns the configuration for a specific repo. Repository
// names match case-insensitively, as on GitHub; the loader lowercases keys.
func (c *Config) GetRepoConfig(repo string) *Repo {
	if cfg, ok := c.Repos[repo]; ok {
		return &cfg
	}
	for name, cfg := range c.Repos {
		if strings.EqualFold(name, repo) {
			return &cfg
		}
	}
	return nil
}

// GetEffectiveMachine returns the machine type for repo.
func (c *Config) GetEffectiveMachine(repo string) string {
	if r := c.GetRepoConfig(repo); r != nil && r.Machine != "" {
		return r.Machine
	}
	return c.Defaults.Machine
}

// GetEffectiveBranch returns the configured branch for repo, or "" to let
// the resolver decide.
func (c *Config) GetEffectiveBranch(repo string) string {
	if r := c.GetRepoConfig(repo); r != nil {
		return r.Branch
	}
	return ""
}

// GetEffectiveDevcontainer returns the devcontainer path for repo.
func (c *Config) GetEffectiveDevcontainer(repo string) string {
	if r := c.GetRepoConfig(repo); r != nil && r.Devcontainer != "" {
		return r.Devcontainer
	}
	return c.Defaults.Devcontainer
}

// GetEffectiveDefaultPermissions returns whether to accept the devcontainer's
// requested permissions for repo.
func (c *Config) GetEffectiveDefaultPermissions(repo string) bool {
	if r := c.GetRepoConfig(repo); r != nil && r.DefaultPermissions != nil {
		return *r.DefaultPermissions
	}
	return c.Defaults.DefaultPermissions
}

// GetEffectiveSSHRetry returns whether ssh should reconnect for repo.
func (c *Config) GetEffectiveSSHRetry(repo string) bool {
	if r := c.GetRepoConfig(repo); r != nil && r.SSHRetry != nil {
		return *r.SSHRetry
	}
	return c.SSH.Retry
}

// IdleTimeout returns the default idle timeout as a duration.
func (c *Config) IdleTimeout() time.Duration {
	return time.Duration(c.Defaults.IdleTimeout) * time.Minute
}

// RetryDelay returns the delay between ssh reconnect attempts.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.SSH.RetryDelay) * time.Second
}
