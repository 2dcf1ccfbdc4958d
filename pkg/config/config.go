// Package config loads inix's layered configuration: embedded defaults,
// then the user's config.toml, then INIX_ environment overrides.
package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	inixerr "github.com/inix-sh/inix/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Defaults holds extra entries appended to every render
type Defaults struct {
	Packages []string `koanf:"packages"`
	Inputs   []string `koanf:"inputs"`
}

// Config is the resolved user configuration
type Config struct {
	// OnConflict is the fallback conflict policy. Empty means
	// "prompt interactively when a conflict occurs".
	OnConflict string `koanf:"on_conflict"`

	Defaults Defaults `koanf:"defaults"`
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load resolves the configuration. configPath may point at a missing
// file; embedded defaults apply in that case.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, inixerr.Wrap(err, inixerr.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. User config, if present
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
				return nil, inixerr.Wrapf(err, inixerr.ErrConfigParse, "failed to parse %s", configPath)
			}
		}
	}

	// 3. Environment overrides (INIX_ON_CONFLICT, ...)
	if err := k.Load(env.Provider("INIX_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "INIX_")), "__", ".")
	}), nil); err != nil {
		return nil, inixerr.Wrap(err, inixerr.ErrConfigLoad, "failed to load env vars")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, inixerr.Wrap(err, inixerr.ErrConfigParse, "failed to unmarshal configuration")
	}

	return &cfg, nil
}
