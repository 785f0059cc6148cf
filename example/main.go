// Command example runs probelight against a couple of public endpoints
// using the host's own network, with the lights rendered on the terminal.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/probelight/probelight"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	agent, err := probelight.New(
		probelight.WithEndpoints(
			probelight.Endpoint{Name: "example.com", URL: "https://example.com"},
			probelight.Endpoint{Name: "cloudflare", URL: "https://cloudflare.com"},
		),
		probelight.WithDeviceName("probelight-example"),
		probelight.WithPollInterval(30 * time.Second),
		probelight.WithConsoleLights(os.Stderr),
		probelight.WithLogger(logger),
		probelight.WithCycleCallback(func(r probelight.Report) {
			logger.Info("cycle finished", "total", r.Total, "failed", r.Failed)
		}),
	)
	if err != nil {
		logger.Error("failed to create agent", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := agent.Start(ctx); err != nil {
		logger.Error("agent error", "error", err)
		os.Exit(1)
	}
}
