// Package config loads resmerge configuration. Configuration is layered:
// embedded defaults, then an optional resmerge.toml in the working tree,
// then RESMERGE_-prefixed environment variables.
package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	rmerrors "github.com/arthur-debert/resmerge/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// ConfigFileName is the per-tree configuration file name
const ConfigFileName = "resmerge.toml"

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "RESMERGE_CFG_"

// Config is the materialized configuration
type Config struct {
	Output  OutputConfig  `koanf:"output" toml:"output"`
	Cache   CacheConfig   `koanf:"cache" toml:"cache"`
	Logging LoggingConfig `koanf:"logging" toml:"logging"`
}

// OutputConfig controls the merged output tree
type OutputConfig struct {
	Root string `koanf:"root" toml:"root"`
}

// CacheConfig controls the serialized cache blob location
type CacheConfig struct {
	Dir       string `koanf:"dir" toml:"dir"`
	UnitLabel string `koanf:"unit_label" toml:"unit_label"`
}

// LoggingConfig controls log verbosity
type LoggingConfig struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity"`
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the configuration for the given working tree. An empty
// root means the current directory. A missing resmerge.toml is not an
// error; a malformed one is.
func Load(root string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, rmerrors.Wrap(err, rmerrors.ErrConfigLoad, "failed to load defaults")
	}

	if root == "" {
		root = "."
	}
	path := filepath.Join(root, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, rmerrors.Wrapf(err, rmerrors.ErrConfigParse,
				"failed to load config from %s", path)
		}
	}

	// RESMERGE_CFG_OUTPUT_ROOT -> output.root
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, rmerrors.Wrap(err, rmerrors.ErrConfigLoad, "failed to load env overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, rmerrors.Wrap(err, rmerrors.ErrConfigParse, "failed to unmarshal config")
	}

	return &cfg, nil
}
