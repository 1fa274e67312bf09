// Package config loads client settings from a YAML file and the
// environment, and turns them into client options.
//
// Environment variables use the APICLIENT_ prefix and override the file:
//
//	APICLIENT_BASE_URL=https://api.example.com
//	APICLIENT_TOKEN="Bearer abc"
//	APICLIENT_TIMEOUT=10s
//	APICLIENT_THROTTLE_RPS=5
//	APICLIENT_THROTTLE_BURST=10
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/apiclient/client"
	"github.com/adamwoolhether/apiclient/internal/validate"
)

// EnvPrefix prefixes every environment variable read by [Load].
const EnvPrefix = "APICLIENT"

// Config holds everything needed to build a client.
type Config struct {
	BaseURL           string        `yaml:"base_url" split_words:"true" validate:"required,url"`
	Token             string        `yaml:"token"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	UserAgent         string        `yaml:"user_agent" split_words:"true"`
	RequestIDHeader   string        `yaml:"request_id_header" split_words:"true"`
	MaxErrorBody      int64         `yaml:"max_error_body" split_words:"true" validate:"gte=0"`
	NoFollowRedirects bool          `yaml:"no_follow_redirects" split_words:"true"`
	ValidatePayloads  bool          `yaml:"validate_payloads" split_words:"true"`
	Throttle          Throttle      `yaml:"throttle"`
}

// Throttle enables client side rate limiting when RPS is set.
type Throttle struct {
	RPS   int `yaml:"rps" validate:"gte=0"`
	Burst int `yaml:"burst" validate:"gte=0,required_with=RPS"`
}

// Load reads the YAML file at path, if any, then applies environment
// overrides and validates the result.
func Load(path string) (Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Parse is Load without validation, for callers that overlay
// further settings before validating.
func Parse(path string) (Config, error) {
	var cfg Config

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}

		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("processing environment: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a Config from the environment only.
func FromEnv() (Config, error) {
	return Load("")
}

// Validate checks the Config against its declared constraints.
func (c Config) Validate() error {
	if err := validate.Check(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

// Options maps the Config onto client options. BaseURL and Token are
// constructor arguments and are not included.
func (c Config) Options() []client.Option {
	var opts []client.Option

	if c.Timeout > 0 {
		opts = append(opts, client.WithTimeout(c.Timeout))
	}
	if c.UserAgent != "" {
		opts = append(opts, client.WithUserAgent(c.UserAgent))
	}
	if c.RequestIDHeader != "" {
		opts = append(opts, client.WithRequestID(c.RequestIDHeader))
	}
	if c.MaxErrorBody > 0 {
		opts = append(opts, client.WithMaxErrorBody(c.MaxErrorBody))
	}
	if c.NoFollowRedirects {
		opts = append(opts, client.WithNoFollowRedirects())
	}
	if c.ValidatePayloads {
		opts = append(opts, client.WithValidation())
	}
	if c.Throttle.RPS > 0 {
		opts = append(opts, client.WithThrottle(c.Throttle.RPS, c.Throttle.Burst))
	}

	return opts
}
