// Package config provides YAML configuration parsing for probelight.
//
// This package enables running probelight as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	device_name: kitchen-monitor
//	poll_interval: 30s
//	request_timeout: 5s
//
//	network:
//	  ssid: ${WIFI_SSID}
//	  password: ${WIFI_PASSWORD}
//	  check_address: 1.1.1.1:443
//
//	endpoints:
//	  - name: API
//	    url: https://api.example.com/health
//	  - url: https://status.example.com/ping
//
// Credential values support ${VAR} and ${VAR:-default} environment variable
// substitution, so secrets never need to live in the file itself.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding keys are absent.
const (
	DefaultDeviceName      = "probelight"
	DefaultPollInterval    = 30 * time.Second
	DefaultRequestTimeout  = 5 * time.Second
	DefaultReconnectDelay  = 5 * time.Second
	DefaultConnectAttempts = 30
)

// minPollInterval is the minimum allowed polling interval. This prevents
// accidental DoS of endpoints with overly aggressive polling.
const minPollInterval = 1 * time.Second

// Config is the root configuration structure for probelight.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// DeviceName identifies the agent on the network and in the
	// User-Agent header. Defaults to "probelight".
	DeviceName string `yaml:"device_name"`

	// PollInterval is the time between poll cycles. Accepts duration
	// strings like "30s", "1m", "500ms". Defaults to 30s.
	PollInterval Duration `yaml:"poll_interval"`

	// RequestTimeout bounds each individual probe request. Defaults to 5s.
	RequestTimeout Duration `yaml:"request_timeout"`

	// ReconnectDelay is the backoff after a detected link loss before
	// reconnecting. Defaults to 5s.
	ReconnectDelay Duration `yaml:"reconnect_delay"`

	// ConnectAttempts bounds how many times one connection attempt may
	// retry before giving up until the next check. Defaults to 30.
	ConnectAttempts int `yaml:"connect_attempts"`

	// InsecureTLS disables certificate verification on probe requests.
	InsecureTLS bool `yaml:"insecure_tls"`

	// Network holds the connection provider settings.
	Network NetworkConfig `yaml:"network"`

	// Endpoints is the fixed ordered list of probe targets.
	Endpoints []EndpointConfig `yaml:"endpoints"`
}

// NetworkConfig holds connection credentials and link-check settings.
type NetworkConfig struct {
	// SSID is the network name to join. Supports environment variable
	// substitution: ${VAR} or ${VAR:-default}.
	SSID string `yaml:"ssid"`

	// Password is the network credential. Supports environment variable
	// substitution.
	Password string `yaml:"password"`

	// CheckAddress is the TCP address dialed to verify connectivity when
	// the link is managed by the host OS.
	CheckAddress string `yaml:"check_address"`
}

// EndpointConfig defines a single probe target.
type EndpointConfig struct {
	// Name is an optional display name used in logs.
	Name string `yaml:"name"`

	// URL is the health check endpoint URL. Supports environment
	// variable substitution.
	URL string `yaml:"url"`
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
		// submatches[2] is ":-..." (non-empty if default syntax was used)
		// submatches[3] is the actual default value (may be empty for ${VAR:-})
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
// Environment variables are expanded in credential and URL values.
// Defaults are applied for DeviceName, PollInterval, RequestTimeout,
// ReconnectDelay, and ConnectAttempts.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.DeviceName == "" {
		cfg.DeviceName = DefaultDeviceName
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = Duration(DefaultPollInterval)
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = Duration(DefaultRequestTimeout)
	}
	if cfg.ReconnectDelay == 0 {
		cfg.ReconnectDelay = Duration(DefaultReconnectDelay)
	}
	if cfg.ConnectAttempts == 0 {
		cfg.ConnectAttempts = DefaultConnectAttempts
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.PollInterval.Duration() < minPollInterval {
		return fmt.Errorf("poll_interval must be at least %s, got %s", minPollInterval, c.PollInterval.Duration())
	}
	if c.RequestTimeout.Duration() <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout.Duration())
	}
	if c.ReconnectDelay.Duration() < 0 {
		return fmt.Errorf("reconnect_delay cannot be negative, got %s", c.ReconnectDelay.Duration())
	}
	if c.ConnectAttempts < 1 {
		return fmt.Errorf("connect_attempts must be at least 1, got %d", c.ConnectAttempts)
	}

	expanded, err := expandEnvVars(c.Network.SSID)
	if err != nil {
		return fmt.Errorf("network: ssid: %w", err)
	}
	c.Network.SSID = expanded

	expanded, err = expandEnvVars(c.Network.Password)
	if err != nil {
		return fmt.Errorf("network: password: %w", err)
	}
	c.Network.Password = expanded

	for i := range c.Endpoints {
		ep := &c.Endpoints[i]

		if ep.URL == "" {
			return fmt.Errorf("endpoints[%d]: url is required", i)
		}
		expanded, err := expandEnvVars(ep.URL)
		if err != nil {
			return fmt.Errorf("endpoints[%d]: url: %w", i, err)
		}
		ep.URL = expanded

		parsedURL, err := url.Parse(ep.URL)
		if err != nil {
			return fmt.Errorf("endpoints[%d]: invalid url: %w", i, err)
		}
		if parsedURL.Scheme == "" {
			return fmt.Errorf("endpoints[%d]: url must have a scheme (http:// or https://)", i)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("endpoints[%d]: url scheme must be http or https, got %q", i, parsedURL.Scheme)
		}

		if ep.Name == "" {
			ep.Name = ep.URL
		}
	}

	return nil
}
