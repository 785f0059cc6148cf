package probelight

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/probelight/probelight/internal/cycle"
	"github.com/probelight/probelight/internal/indicator"
	"github.com/probelight/probelight/internal/netlink"
	"github.com/probelight/probelight/internal/probe"
)

const (
	defaultDeviceName      = "probelight"
	defaultPollInterval    = 30 * time.Second
	defaultRequestTimeout  = 5 * time.Second
	defaultReconnectDelay  = 5 * time.Second
	defaultConnectAttempts = 30
	defaultCheckInterval   = 1 * time.Second
)

// Report summarizes one completed (or refused) poll cycle.
type Report struct {
	// ID correlates the cycle's log lines.
	ID string

	// Total is the number of configured endpoints.
	Total int

	// Failed is the number of probes whose outcome was not a success.
	Failed int

	// Refused is true when the cycle was skipped because the link was
	// down; no network activity happened.
	Refused bool

	// Elapsed is the wall time from fan-out to join.
	Elapsed time.Duration
}

// Agent is the monitoring agent: it supervises the network link, fans out
// concurrent probes on a fixed interval, and drives the two indicator
// lights. Create it with [New] and run it with [Agent.Start].
type Agent struct {
	targets        []probe.Endpoint
	supervisor     *netlink.Supervisor
	coordinator    *cycle.Coordinator
	logger         *slog.Logger
	deviceName     string
	pollInterval   time.Duration
	checkInterval  time.Duration
	cycleCallbacks []func(Report)
}

// New creates an [Agent] with the given options.
//
// Defaults: host-managed connection provider, console lights on stderr,
// [slog.Default] logging, 30s poll interval, 5s request timeout, 5s
// reconnect delay, 30 connect attempts. An agent with zero endpoints is
// valid and only supervises the link.
func New(opts ...Option) (*Agent, error) {
	cfg := &agentConfig{
		deviceName:      defaultDeviceName,
		pollInterval:    defaultPollInterval,
		requestTimeout:  defaultRequestTimeout,
		reconnectDelay:  defaultReconnectDelay,
		connectAttempts: defaultConnectAttempts,
		checkInterval:   defaultCheckInterval,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.conn == nil {
		cfg.conn = NewHostConn("")
	}
	if cfg.output == nil {
		cfg.output = consoleOutput(os.Stderr)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	targets := make([]probe.Endpoint, len(cfg.endpoints))
	for i, e := range cfg.endpoints {
		targets[i] = probe.Endpoint{
			Name:  e.Name,
			URL:   e.URL,
			Index: i + 1,
		}
	}

	panel := indicator.NewPanel(cfg.output)
	prober := probe.New(cfg.requestTimeout, cfg.deviceName, cfg.insecureTLS, panel, logger)
	supervisor := netlink.NewSupervisor(
		connAdapter{c: cfg.conn},
		netlink.Credentials(cfg.creds),
		cfg.deviceName,
		netlink.Options{
			MaxAttempts:    cfg.connectAttempts,
			ReconnectDelay: cfg.reconnectDelay,
		},
		panel,
		logger,
	)
	coordinator := cycle.New(prober, panel, supervisor, logger)

	return &Agent{
		targets:        targets,
		supervisor:     supervisor,
		coordinator:    coordinator,
		logger:         logger,
		deviceName:     cfg.deviceName,
		pollInterval:   cfg.pollInterval,
		checkInterval:  cfg.checkInterval,
		cycleCallbacks: cfg.cycleCallbacks,
	}, nil
}

// Start runs the agent until the context is cancelled.
//
// Start connects immediately and, if the link comes up, runs one poll cycle
// right away. After that, cycles run on the poll interval and link health is
// re-checked on the check interval. Cycles launched while the link is down
// are refused by the coordinator without network activity.
//
// Returns nil on graceful shutdown.
func (a *Agent) Start(ctx context.Context) error {
	a.logger.Info("probelight starting",
		"device", a.deviceName,
		"endpoints", len(a.targets),
		"poll_interval", a.pollInterval.String(),
	)

	if a.supervisor.Check(ctx) == netlink.Connected {
		a.runCycle(ctx)
	}

	pollTicker := time.NewTicker(a.pollInterval)
	defer pollTicker.Stop()
	checkTicker := time.NewTicker(a.checkInterval)
	defer checkTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("probelight stopped")
			return nil
		case <-checkTicker.C:
			a.supervisor.Check(ctx)
		case <-pollTicker.C:
			a.runCycle(ctx)
		}
	}
}

// LinkState returns the supervisor's current view of the link as a string:
// "disconnected", "connecting", or "connected".
func (a *Agent) LinkState() string {
	return a.supervisor.State().String()
}

func (a *Agent) runCycle(ctx context.Context) {
	r := a.coordinator.Run(ctx, a.targets)
	report := Report{
		ID:      r.ID,
		Total:   r.Total,
		Failed:  r.Failed,
		Refused: r.Refused,
		Elapsed: r.Elapsed,
	}
	for _, fn := range a.cycleCallbacks {
		fn(report)
	}
}
