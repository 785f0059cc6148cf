package probelight

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"time"

	"github.com/probelight/probelight/internal/indicator"
)

// Endpoint is one health-check target. The URL is required; Name is an
// optional display name used in logs.
type Endpoint struct {
	Name string
	URL  string
}

// agentConfig holds mutable state during Agent construction.
type agentConfig struct {
	endpoints       []Endpoint
	conn            Conn
	output          indicator.Output
	logger          *slog.Logger
	creds           Credentials
	deviceName      string
	pollInterval    time.Duration
	requestTimeout  time.Duration
	reconnectDelay  time.Duration
	connectAttempts int
	checkInterval   time.Duration
	insecureTLS     bool
	cycleCallbacks  []func(Report)
}

// Option configures an [Agent] during construction.
//
// Option implements the functional options pattern, allowing optional
// configuration to be passed to [New] in a type-safe, extensible way.
// Options return an error if validation fails.
type Option func(*agentConfig) error

// WithEndpoint adds a single [Endpoint] to the polling list.
//
// Can be called multiple times. An agent with zero endpoints is valid: it
// supervises the link and runs empty cycles.
func WithEndpoint(e Endpoint) Option {
	return func(cfg *agentConfig) error {
		if err := validateEndpoint(e); err != nil {
			return err
		}
		cfg.endpoints = append(cfg.endpoints, e)
		return nil
	}
}

// WithEndpoints adds multiple [Endpoint] values to the polling list.
// Equivalent to calling [WithEndpoint] multiple times.
func WithEndpoints(endpoints ...Endpoint) Option {
	return func(cfg *agentConfig) error {
		for _, e := range endpoints {
			if err := validateEndpoint(e); err != nil {
				return err
			}
			cfg.endpoints = append(cfg.endpoints, e)
		}
		return nil
	}
}

func validateEndpoint(e Endpoint) error {
	if e.URL == "" {
		return errors.New("endpoint url is required")
	}
	u, err := url.Parse(e.URL)
	if err != nil {
		return fmt.Errorf("invalid endpoint url %q: %w", e.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint url scheme must be http or https, got %q", u.Scheme)
	}
	return nil
}

// WithConn sets the connection provider. Defaults to [NewHostConn] with its
// default check address.
func WithConn(c Conn) Option {
	return func(cfg *agentConfig) error {
		if c == nil {
			return errors.New("conn must not be nil")
		}
		cfg.conn = c
		return nil
	}
}

// WithCredentials sets the network credentials handed to the connection
// provider. Providers that do not join networks themselves ignore them.
func WithCredentials(ssid, password string) Option {
	return func(cfg *agentConfig) error {
		cfg.creds = Credentials{SSID: ssid, Password: password}
		return nil
	}
}

// WithDeviceName sets the agent's identity: the hostname presented to the
// network and the User-Agent prefix on probe requests.
// Defaults to "probelight".
func WithDeviceName(name string) Option {
	return func(cfg *agentConfig) error {
		if name == "" {
			return errors.New("device name must not be empty")
		}
		cfg.deviceName = name
		return nil
	}
}

// WithPollInterval sets the time between poll cycles. Defaults to 30s.
func WithPollInterval(d time.Duration) Option {
	return func(cfg *agentConfig) error {
		if d <= 0 {
			return errors.New("poll interval must be positive")
		}
		cfg.pollInterval = d
		return nil
	}
}

// WithRequestTimeout bounds each individual probe request. Defaults to 5s.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *agentConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithReconnectDelay sets the backoff after a detected link loss before the
// agent reconnects. Defaults to 5s.
func WithReconnectDelay(d time.Duration) Option {
	return func(cfg *agentConfig) error {
		if d < 0 {
			return errors.New("reconnect delay cannot be negative")
		}
		cfg.reconnectDelay = d
		return nil
	}
}

// WithConnectAttempts bounds how many times one connection attempt may
// retry before giving up until the next periodic check. Defaults to 30.
func WithConnectAttempts(n int) Option {
	return func(cfg *agentConfig) error {
		if n < 1 {
			return errors.New("connect attempts must be at least 1")
		}
		cfg.connectAttempts = n
		return nil
	}
}

// WithCheckInterval sets how often the agent re-checks link health while
// idle. Defaults to 1s.
func WithCheckInterval(d time.Duration) Option {
	return func(cfg *agentConfig) error {
		if d <= 0 {
			return errors.New("check interval must be positive")
		}
		cfg.checkInterval = d
		return nil
	}
}

// WithInsecureTLS disables certificate verification on probe requests, for
// endpoints behind self-signed certificates.
func WithInsecureTLS() Option {
	return func(cfg *agentConfig) error {
		cfg.insecureTLS = true
		return nil
	}
}

// WithLights sets the indicator output receiving light transitions.
func WithLights(out Output) Option {
	return func(cfg *agentConfig) error {
		if out == nil {
			return errors.New("lights output must not be nil")
		}
		cfg.output = outputAdapter{o: out}
		return nil
	}
}

// WithConsoleLights renders the two lights as colored lines on w.
// This is the default, writing to stderr.
func WithConsoleLights(w io.Writer) Option {
	return func(cfg *agentConfig) error {
		if w == nil {
			return errors.New("console lights writer must not be nil")
		}
		cfg.output = consoleOutput(w)
		return nil
	}
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *agentConfig) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithCycleCallback registers a function invoked with each cycle's
// [Report], after the cycle completes. Callbacks run on the agent's control
// loop; keep them fast.
func WithCycleCallback(fn func(Report)) Option {
	return func(cfg *agentConfig) error {
		if fn == nil {
			return errors.New("cycle callback must not be nil")
		}
		cfg.cycleCallbacks = append(cfg.cycleCallbacks, fn)
		return nil
	}
}
