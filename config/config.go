package config

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
	"github.com/go-playground/validator/v10"
)

// Environment variables of the configuration surface.
const (
	EnvAPIKey    = "HONEYBADGER_API_KEY"
	EnvProjectID = "HONEYBADGER_PROJECT_ID"
	EnvTransport = "TRANSPORT"
	EnvHost      = "HOST"
	EnvPort      = "PORT"
	EnvLogLevel  = "LOG_LEVEL"
)

// Transports supported by the server.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

var validate = validator.New()

// Config is the process configuration, read once at startup
// and never mutated thereafter.
type Config struct {
	// APIKey is the Honeybadger personal API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" validate:"required"`
	// ProjectID is the Honeybadger project to serve.
	ProjectID string `json:"project_id,omitempty" yaml:"project_id,omitempty" validate:"required"`
	// Transport selects the MCP wire transport.
	Transport string `json:"transport,omitempty" yaml:"transport,omitempty" validate:"omitempty,oneof=stdio sse"`
	// Host and Port bind the SSE transport.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	Port int    `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	// LogLevel sets the global log verbosity.
	LogLevel string `json:"log_level,omitempty" yaml:"log_level,omitempty"`
	// BaseURL overrides the Honeybadger API endpoint, mostly for tests.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
}

// Load returns the configuration from the optional YAML file,
// overlaid with environment variables.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if file != "" {
		if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
			return nil, err
		}
	}

	if v := os.Getenv(EnvAPIKey); v != "" {
		cfg.APIKey = v
	}
	if v := os.Getenv(EnvProjectID); v != "" {
		cfg.ProjectID = v
	}
	if v := os.Getenv(EnvTransport); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid %s value: %q", EnvPort, v)
		}
		cfg.Port = port
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if c.Host == "" {
		c.Host = "127.0.0.1"
	}
	if c.Port == 0 {
		c.Port = 8050
	}
	if c.LogLevel == "" {
		c.LogLevel = "INFO"
	}
}

// Validate fails fast on a missing credential or an invalid value.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return errors.Errorf("%s environment variable is required", EnvAPIKey)
	}
	if c.ProjectID == "" {
		return errors.Errorf("%s environment variable is required", EnvProjectID)
	}
	if err := validate.Struct(c); err != nil {
		return errors.WithMessage(err, "invalid configuration")
	}
	return nil
}
