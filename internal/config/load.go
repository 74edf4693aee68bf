package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// EnvPrefix is the prefix of all configuration environment variables.
const EnvPrefix = "SPELLSTORM_"

// Load builds a configuration from defaults, the optional TOML file at
// path, and environment overrides, in that order of precedence. A
// missing file is not an error; an empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, &ParseError{Path: path, Err: err}
			}
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays SPELLSTORM_* environment variables. Malformed
// numeric values are ignored rather than failing startup.
func applyEnv(cfg *Config) {
	if v, ok := os.LookupEnv(EnvPrefix + "ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LANGUAGE"); ok {
		cfg.Language = v
	}
	envInt(EnvPrefix+"DEBOUNCE_MS", &cfg.DebounceMS)
	envInt(EnvPrefix+"MIN_WORD_LENGTH", &cfg.MinWordLength)
	envInt(EnvPrefix+"REQUEST_TIMEOUT_MS", &cfg.RequestTimeoutMS)
	envInt(EnvPrefix+"MAX_SUGGESTIONS", &cfg.MaxSuggestions)
	if v, ok := os.LookupEnv(EnvPrefix + "PROVIDER_URL"); ok {
		cfg.Provider.BaseURL = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "PROVIDER_CACHE_DIR"); ok {
		cfg.Provider.CacheDir = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "DICT_DIR"); ok {
		cfg.Provider.Dir = v
	}
	if v, ok := os.LookupEnv(EnvPrefix + "LOG_LEVEL"); ok {
		cfg.Logging.Level = v
	}
}

func envInt(name string, dst *int) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*dst = n
}
