package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dotsync/pkg/errors"
	"github.com/arthur-debert/dotsync/pkg/logging"
	"github.com/arthur-debert/dotsync/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys
const EnvPrefix = "DOTSYNC_"

// LoadOptions tweaks configuration loading
type LoadOptions struct {
	// ConfigFile overrides the resolved user config file
	ConfigFile string

	// Overrides are applied last, after environment variables (flag values)
	Overrides map[string]interface{}
}

// Load merges embedded defaults, the user config file and DOTSYNC_ env vars,
// then decodes and validates the result. A missing user config file is not
// an error; a malformed one is.
func Load(p paths.Paths, opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config.loader")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	// 2. User config file
	configFile := opts.ConfigFile
	if configFile == "" {
		configFile = p.ConfigFilePath()
	}
	configFile = paths.ExpandHome(configFile)

	if _, err := os.Stat(configFile); err == nil {
		if err := k.Load(file.Provider(configFile), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse config file %s", configFile).
				WithDetail("path", configFile)
		}
		logger.Debug().Str("path", configFile).Msg("Loaded user config")
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat config file %s", configFile).
			WithDetail("path", configFile)
	} else {
		logger.Debug().Str("path", configFile).Msg("No user config file, using defaults")
	}

	// 3. Environment variables
	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envValue), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment variables")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to decode configuration").
			WithDetail("path", configFile)
	}

	baseDir := filepath.Dir(configFile)
	normalize(&cfg, baseDir)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("repos", len(cfg.Repos)).
		Int("workers", cfg.Sync.Workers).
		Dur("retention", cfg.Sync.Retention).
		Msg("Configuration loaded")

	return &cfg, nil
}

// envKey maps DOTSYNC_SYNC_AUTO_PRUNE to sync.auto_prune: only the first
// underscore separates the section from the key. Variables outside the
// config sections (DOTSYNC_DATA_DIR and friends) map to "".
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if key == "home" {
		return key
	}
	section, rest, ok := strings.Cut(key, "_")
	if !ok || rest == "" {
		return ""
	}
	switch section {
	case "sync", "security":
		return section + "." + rest
	}
	return ""
}

// envValue skips unknown and empty variables
func envValue(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envKey(key), value
}

// normalize resolves repo paths to absolute paths, relative ones against the
// config file's directory
func normalize(cfg *Config, baseDir string) {
	if cfg.Home != "" {
		cfg.Home = paths.ExpandHome(cfg.Home)
	}

	for i := range cfg.Repos {
		r := &cfg.Repos[i]
		if r.Path == "" {
			continue
		}
		p := paths.ExpandHome(r.Path)
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		r.Path = filepath.Clean(p)
	}
}
