// Package probelight provides a small embeddable monitoring agent that
// keeps a network link alive, periodically fans out concurrent health-check
// probes against a fixed set of endpoints, and reflects aggregate
// success/failure through two binary indicator lights.
//
// Probelight is designed as an SDK-first library: the connection provider
// and the indicator output are both small interfaces, so the same core runs
// against real hardware, a host's managed network, or test doubles.
//
// # Quick Start
//
// Configure endpoints and start the agent with graceful shutdown:
//
//	agent, _ := probelight.New(
//	    probelight.WithEndpoints(
//	        probelight.Endpoint{Name: "API", URL: "https://api.example.com/health"},
//	        probelight.Endpoint{Name: "Status", URL: "https://status.example.com/ping"},
//	    ),
//	    probelight.WithConsoleLights(os.Stderr),
//	)
//
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	agent.Start(ctx) // blocks until context is cancelled
//
// # Behavior
//
// On start the agent connects, pulses the success light on a successful
// connect, and runs an immediate poll cycle. After that, cycles run on a
// fixed interval while the link is up; a periodic check detects link loss
// and reconnects with backoff. Every probe failure switches the error light
// on; the light is clear at the end of any cycle with zero failures.
//
// All errors are locally recovered: a failed probe or a lost link produces a
// log line, an error-light transition, and a failure count, never a process
// exit.
package probelight
