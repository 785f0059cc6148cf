package netlink

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/probelight/probelight/internal/indicator"
)

// State is the supervisor's view of the link.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Options bounds the supervisor's connect behavior. Zero fields fall back
// to defaults.
type Options struct {
	// MaxAttempts is how many Connect calls one connection attempt may
	// make before giving up until the next periodic check. Default 30.
	MaxAttempts int

	// AttemptInterval is the pause between Connect calls within one
	// attempt. Default 500ms.
	AttemptInterval time.Duration

	// ReconnectDelay is the backoff after a detected link loss before
	// reconnecting. Default 5s.
	ReconnectDelay time.Duration

	// PulseCount and PulseInterval shape the success-light pulse emitted
	// on a successful (re)connect. Defaults 3 and 200ms.
	PulseCount    int
	PulseInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts == 0 {
		o.MaxAttempts = 30
	}
	if o.AttemptInterval == 0 {
		o.AttemptInterval = 500 * time.Millisecond
	}
	if o.ReconnectDelay == 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.PulseCount == 0 {
		o.PulseCount = 3
	}
	if o.PulseInterval == 0 {
		o.PulseInterval = 200 * time.Millisecond
	}
	return o
}

// Supervisor owns the connection lifecycle and gates poll cycles.
//
// State transitions:
//
//	Disconnected -> Connecting   on a connect attempt
//	Connecting   -> Connected    on success (clears error light, pulses
//	                             success light)
//	Connecting   -> Disconnected after MaxAttempts failures (sets error
//	                             light)
//	Connected    -> Disconnected on a periodic check observing link loss
//	                             (sets error light, logs)
//
// Check is the supervisor's single entry point and is not safe for
// concurrent invocation; the agent drives it from one control loop. State
// reads are safe from any goroutine.
type Supervisor struct {
	conn     Conn
	creds    Credentials
	hostname string
	opts     Options
	lights   *indicator.Panel
	logger   *slog.Logger

	mu    sync.Mutex
	state State
}

// NewSupervisor creates a Supervisor starting in Disconnected.
func NewSupervisor(conn Conn, creds Credentials, hostname string, opts Options, lights *indicator.Panel, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		conn:     conn,
		creds:    creds,
		hostname: hostname,
		opts:     opts.withDefaults(),
		lights:   lights,
		logger:   logger,
		state:    Disconnected,
	}
}

// State returns the current link state.
func (s *Supervisor) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsConnected reports whether poll cycles may run. Implements the
// coordinator's connectivity gate.
func (s *Supervisor) IsConnected() bool {
	return s.State() == Connected
}

func (s *Supervisor) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// Check reconciles the supervisor's state with the provider's link signal.
//
// While Connected it only verifies the link is still up, handling loss by
// setting the error light and falling back to Disconnected. From
// Disconnected it runs one bounded connection attempt. Returns the state
// after reconciliation.
func (s *Supervisor) Check(ctx context.Context) State {
	if s.conn.IsConnected() {
		if s.State() != Connected {
			// Link came back without our involvement (provider-side
			// auto-reconnect). Adopt it.
			s.setState(Connected)
			s.logger.Info("link restored", "hostname", s.hostname)
			s.lights.Set(indicator.Error, false)
		}
		return Connected
	}

	if s.State() == Connected {
		s.logger.Warn("link lost", "hostname", s.hostname)
		s.lights.Set(indicator.Error, true)
		s.setState(Disconnected)
		if !sleepCtx(ctx, s.opts.ReconnectDelay) {
			return s.State()
		}
	}

	s.connect(ctx)
	return s.State()
}

// connect runs one bounded connection attempt: up to MaxAttempts blocking
// Connect calls, AttemptInterval apart.
func (s *Supervisor) connect(ctx context.Context) {
	s.setState(Connecting)
	s.logger.Info("connecting",
		"ssid", s.creds.SSID,
		"hostname", s.hostname,
		"max_attempts", s.opts.MaxAttempts,
	)

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			break
		}

		err := s.conn.Connect(ctx, s.creds, s.hostname)
		if err == nil && s.conn.IsConnected() {
			s.setState(Connected)
			info := s.conn.Status()
			s.logger.Info("link established",
				"hostname", s.hostname,
				"address", info.Address,
				"signal_dbm", info.SignalStrength,
				"attempts", attempt,
			)
			s.lights.Set(indicator.Error, false)
			s.lights.Pulse(indicator.Success, s.opts.PulseCount, s.opts.PulseInterval)
			return
		}
		if err != nil {
			s.logger.Debug("connect attempt failed",
				"attempt", attempt,
				"error", err,
			)
		}
		if attempt < s.opts.MaxAttempts && !sleepCtx(ctx, s.opts.AttemptInterval) {
			break
		}
	}

	s.setState(Disconnected)
	s.logger.Warn("connection failed, will retry on next check",
		"ssid", s.creds.SSID,
		"attempts", s.opts.MaxAttempts,
	)
	s.lights.Set(indicator.Error, true)
}

// sleepCtx sleeps for d unless the context is cancelled first. Reports
// whether the full duration elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
