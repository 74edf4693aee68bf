// Package config loads spellstorm configuration from TOML files with
// environment variable overrides.
package config

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
)

// Config holds all spellstorm settings.
type Config struct {
	// Enabled turns spell checking on at startup.
	Enabled bool `toml:"enabled"`
	// Language is the BCP 47 tag of the dictionary language.
	Language string `toml:"language"`

	// DebounceMS is the scan debounce interval in milliseconds.
	DebounceMS int `toml:"debounce_ms"`
	// MinWordLength is the minimum rune count for a checkable word.
	MinWordLength int `toml:"min_word_length"`
	// RequestTimeoutMS is the per-request dictionary protocol deadline
	// in milliseconds.
	RequestTimeoutMS int `toml:"request_timeout_ms"`
	// MaxSuggestions caps the ranked suggestion list per word.
	MaxSuggestions int `toml:"max_suggestions"`

	Provider ProviderConfig `toml:"provider"`
	Logging  LoggingConfig  `toml:"logging"`
}

// ProviderConfig configures where dictionary payloads come from. When
// BaseURL is set dictionaries are fetched over HTTP and cached under
// CacheDir; otherwise Dir is read directly.
type ProviderConfig struct {
	BaseURL  string `toml:"base_url"`
	CacheDir string `toml:"cache_dir"`
	Dir      string `toml:"dir"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Enabled:          true,
		Language:         "en-US",
		DebounceMS:       500,
		MinWordLength:    2,
		RequestTimeoutMS: 30000,
		MaxSuggestions:   5,
		Provider: ProviderConfig{
			Dir: "dictionaries",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Debounce returns the debounce interval as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// RequestTimeout returns the protocol deadline as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// Validate checks ranges and normalizes the language tag.
func (c *Config) Validate() error {
	tag, err := language.Parse(c.Language)
	if err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLanguage, c.Language)
	}
	c.Language = tag.String()

	if c.DebounceMS <= 0 {
		return fmt.Errorf("%w: debounce_ms must be positive, got %d", ErrInvalidValue, c.DebounceMS)
	}
	if c.MinWordLength <= 0 {
		return fmt.Errorf("%w: min_word_length must be positive, got %d", ErrInvalidValue, c.MinWordLength)
	}
	if c.RequestTimeoutMS <= 0 {
		return fmt.Errorf("%w: request_timeout_ms must be positive, got %d", ErrInvalidValue, c.RequestTimeoutMS)
	}
	if c.MaxSuggestions <= 0 {
		return fmt.Errorf("%w: max_suggestions must be positive, got %d", ErrInvalidValue, c.MaxSuggestions)
	}
	return nil
}
