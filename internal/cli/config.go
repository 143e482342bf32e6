package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config is the effective CLI configuration.
type Config struct {
	Format   string `koanf:"format"`
	Verbose  bool   `koanf:"verbose"`
	SpecsDir string `koanf:"specs_dir"`
	Catalog  string `koanf:"catalog"`
}

// Configuration defaults.
const (
	DefaultConfigFile = "cqlmap.yaml"
	DefaultFormat     = "text"
	DefaultSpecsDir   = "specs"
	EnvPrefix         = "CQLMAP_"
)

// LoadConfig loads configuration from defaults, a config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// An explicit cfgFile must exist; otherwise cqlmap.yaml in the working
// directory is used when present. Only flags that were set on the command
// line override lower layers.
func LoadConfig(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"format":    DefaultFormat,
		"verbose":   false,
		"specs_dir": DefaultSpecsDir,
		"catalog":   "",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	path := cfgFile
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// CQLMAP_SPECS_DIR -> specs_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// --specs-dir -> specs_dir
			key := strings.ReplaceAll(f.Name, "-", "_")
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	return &cfg, nil
}
