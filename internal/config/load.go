package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// keyDelimiter replaces viper's "." so repository names such as
// "acme/site.io" stay a single map key.
const keyDelimiter = "::"

// EnvPrefix prefixes environment overrides, e.g. CSM_DEFAULTS_MACHINE.
const EnvPrefix = "CSM"

func key(parts ...string) string {
	return strings.Join(parts, keyDelimiter)
}

// Load reads configuration from path, or from Path when path is empty.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		var err error
		if path, err = Path(); err != nil {
			return DefaultConfig(), nil
		}
	}

	cfg := DefaultConfig()

	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	v.SetDefault(key("defaults", "machine"), cfg.Defaults.Machine)
	v.SetDefault(key("defaults", "location"), cfg.Defaults.Location)
	v.SetDefault(key("defaults", "devcontainer"), cfg.Defaults.Devcontainer)
	v.SetDefault(key("defaults", "idle_timeout"), cfg.Defaults.IdleTimeout)
	v.SetDefault(key("defaults", "default_permissions"), cfg.Defaults.DefaultPermissions)
	v.SetDefault(key("defaults", "visibility"), cfg.Defaults.Visibility)
	v.SetDefault(key("defaults", "license"), cfg.Defaults.License)
	v.SetDefault(key("defaults", "auto_confirm"), cfg.Defaults.AutoConfirm)
	v.SetDefault(key("terminal", "set_tab_title"), cfg.Terminal.SetTabTitle)
	v.SetDefault(key("terminal", "title_format"), cfg.Terminal.TitleFormat)
	v.SetDefault(key("terminal", "picker"), cfg.Terminal.Picker)
	v.SetDefault(key("ssh", "retry"), cfg.SSH.Retry)
	v.SetDefault(key("ssh", "retry_delay"), cfg.SSH.RetryDelay)
	v.SetDefault(key("ssh", "max_retries"), cfg.SSH.MaxRetries)
	v.SetDefault(key("author", "name"), cfg.Author.Name)
	v.SetDefault(key("author", "email"), cfg.Author.Email)

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if cfg.Repos == nil {
		cfg.Repos = map[string]Repo{}
	}
	return cfg, nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
