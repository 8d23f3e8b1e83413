package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/rowan-gud/kysely-codegen/internal/errs"
)

// flagsNotInConfig are command-line flags that are not configuration keys.
var flagsNotInConfig = map[string]bool{
	"config":  true,
	"help":    true,
	"version": true,
}

func defaults() map[string]any {
	return map[string]any{
		"url":                 DefaultURL,
		"out_file":            DefaultOutFile,
		"domains":             true,
		"type_only_imports":   true,
		"runtime_enums_style": DefaultRuntimeEnumsStyle,
		"log_level":           DefaultLogLevel,
		"log_format":          DefaultLogFormat,
		"store.provider":      DefaultStoreProvider,
	}
}

// Load reads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
//
// An empty cfgFile loads kysely-codegen.yaml when it exists. An explicit
// cfgFile must exist.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "failed to load defaults", err)
	}

	// 2. Load config file
	path, err := findConfigFile(cfgFile)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, "error reading config file "+path, err)
		}
	}

	// 3. Load environment variables
	// Transform: KYSELY_CODEGEN_OUT_FILE -> out_file, KYSELY_CODEGEN_STORE__BUCKET -> store.bucket
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "failed to load env vars", err)
	}

	// 4. Load flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || flagsNotInConfig[f.Name] {
				return "", nil
			}
			return flagKey(f.Name), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, errs.Wrap(errs.ErrKindConfig, "failed to load flags", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindConfig, "unable to decode config", err)
	}
	return &cfg, nil
}

// flagKey maps a kebab-case flag to its config key: --out-file is out_file,
// --store-bucket is store.bucket.
func flagKey(name string) string {
	key := strings.ReplaceAll(name, "-", "_")
	if rest, ok := strings.CutPrefix(key, "store_"); ok {
		return "store." + rest
	}
	return key
}

func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", errs.Wrap(errs.ErrKindConfig, "--config: cannot read "+explicit, err)
		}
		return explicit, nil
	}
	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", errs.Wrap(errs.ErrKindConfig, "cannot read "+DefaultConfigFile, err)
	}
	return "", nil
}
