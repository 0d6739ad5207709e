package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"pkt.systems/pslog"
)

// Credentials are the optional tokens read from the token file. The file is
// never written by gh-csm.
type Credentials struct {
	Primary   string
	Secondary string
	// Active is "primary" or "secondary"; empty means primary.
	Active string
}

// ActiveToken returns the token selected by Active, or "" when none is set.
func (c Credentials) ActiveToken() string {
	if strings.EqualFold(c.Active, "secondary") {
		return c.Secondary
	}
	return c.Primary
}

// LoadCredentials reads the KEY=value token file at path, or TokensPath when
// path is empty. A missing file yields empty credentials. A file readable by
// group or others is ignored with a warning.
func LoadCredentials(ctx context.Context, path string) (Credentials, error) {
	if path == "" {
		var err error
		if path, err = TokensPath(); err != nil {
			return Credentials{}, nil
		}
	}
	log := pslog.Ctx(ctx).With("path", path)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credentials{}, nil
		}
		return Credentials{}, err
	}
	if info.Mode().Perm()&0o077 != 0 {
		log.Warn("ignoring token file accessible by other users", "mode", fmt.Sprintf("%#o", info.Mode().Perm()))
		return Credentials{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return Credentials{}, fmt.Errorf("failed to read token file: %w", err)
	}

	creds := Credentials{
		Primary:   v.GetString("primary_token"),
		Secondary: v.GetString("secondary_token"),
		Active:    v.GetString("active"),
	}
	switch strings.ToLower(creds.Active) {
	case "", "primary", "secondary":
	default:
		log.Warn("unknown ACTIVE value, using primary", "active", creds.Active)
		creds.Active = ""
	}
	log.Debug("token file loaded", "active", creds.Active, "token_set", creds.ActiveToken() != "")
	return creds, nil
}
