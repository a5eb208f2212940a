package config

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

// EnvPrefix marks environment variables read as configuration. A double
// underscore separates nesting levels: ROCKETMINER_STORE__DRIVER sets
// store.driver.
const EnvPrefix = "ROCKETMINER_"

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"driver":           "store.driver",
	"path":             "store.path",
	"dsn":              "store.dsn",
	"redis-url":        "store.redis_url",
	"redis-prefix":     "store.redis_prefix",
	"log-level":        "log.level",
	"log-format":       "log.format",
	"output":           "output",
	"metrics-textfile": "metrics.textfile",
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"store.driver": DefaultDriver,
		"store.path":   DefaultPath,
		"log.level":    DefaultLogLevel,
		"log.format":   DefaultLogFormat,
		"output":       DefaultOutput,
	}
}

// Load reads configuration. Precedence (highest to lowest):
// flags > env vars > config file > defaults. cfgFile may be empty, in which
// case rocketminer.yaml in the working directory is used when present.
// Only flags that were explicitly set override lower layers.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if cfgFile == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			cfgFile = DefaultConfigFile
		}
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = cfgFile
	return &cfg, nil
}

// envKey turns ROCKETMINER_STORE__REDIS_URL into store.redis_url.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}
