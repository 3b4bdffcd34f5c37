// Package config provides YAML configuration parsing for the safefeed CLI.
//
// This package enables running the client as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	key: ${OPOINT_FEED_KEY}
//	timeout: 10s
//	lastid: 123456
//
// The pacing fields (interval, batch_size, expected_rate) should normally
// be left unset: providing any of them turns off the client's autotuning.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the safefeed CLI.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Key is the feed credential. Required. Supports environment variable
	// substitution: ${VAR} or ${VAR:-default}.
	Key string `yaml:"key"`

	// BaseURL overrides the feed endpoint. Supports environment variable
	// substitution. Empty means the production endpoint.
	BaseURL string `yaml:"base_url"`

	// Interval fixes the pacing interval. Setting it disables autotuning.
	// Accepts duration strings like "30s", "5m".
	Interval Duration `yaml:"interval"`

	// BatchSize fixes the number of articles per fetch. Setting it
	// disables autotuning.
	BatchSize int `yaml:"batch_size"`

	// ExpectedRate seeds the rate estimate, in articles per second.
	// Setting it disables autotuning.
	ExpectedRate float64 `yaml:"expected_rate"`

	// Timeout is the per-fetch timeout. Defaults to 30s.
	Timeout Duration `yaml:"timeout"`

	// LastID resumes the stream at a previously persisted position.
	// 0 starts at the oldest article still in the feed; unset starts at
	// the current newest.
	LastID *int64 `yaml:"lastid"`

	// UserAgent overrides the User-Agent header of the default transport.
	UserAgent string `yaml:"user_agent"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// already have an error, skip processing
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before validation.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the Key and BaseURL values.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Key == "" {
		return errors.New("key is required")
	}
	expanded, err := expandEnvVars(c.Key)
	if err != nil {
		return fmt.Errorf("key: %w", err)
	}
	c.Key = expanded

	if c.BaseURL != "" {
		expanded, err := expandEnvVars(c.BaseURL)
		if err != nil {
			return fmt.Errorf("base_url: %w", err)
		}
		c.BaseURL = expanded

		parsedURL, err := url.Parse(c.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("base_url scheme must be http or https, got %q", parsedURL.Scheme)
		}
	}

	if c.Interval.Duration() < 0 {
		return fmt.Errorf("interval cannot be negative, got %s", c.Interval.Duration())
	}
	if c.BatchSize < 0 {
		return fmt.Errorf("batch_size cannot be negative, got %d", c.BatchSize)
	}
	if c.ExpectedRate < 0 {
		return fmt.Errorf("expected_rate cannot be negative, got %g", c.ExpectedRate)
	}
	if c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}

	return nil
}

// Autotuned reports whether the config leaves all pacing parameters to the
// client's autotuning.
func (c *Config) Autotuned() bool {
	return c.Interval == 0 && c.BatchSize == 0 && c.ExpectedRate == 0
}
