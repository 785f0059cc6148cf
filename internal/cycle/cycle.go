// Package cycle coordinates one round of concurrent health probes.
//
// A cycle fans out one goroutine per configured endpoint, aggregates their
// outcomes in shared atomic counters, and joins on all of them before
// reporting. Probes may complete in any order; the only cross-probe guarantee
// is that the error light ends the cycle set if and only if at least one
// probe failed.
package cycle

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/probelight/probelight/internal/indicator"
	"github.com/probelight/probelight/internal/probe"
)

// Connectivity gates whether a cycle may run. Implemented by the
// connectivity supervisor.
type Connectivity interface {
	IsConnected() bool
}

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

// Coordinator fans out probes and awaits their completion.
type Coordinator struct {
	prober *probe.Prober
	lights *indicator.Panel
	link   Connectivity
	logger *slog.Logger
}

// New creates a Coordinator.
func New(prober *probe.Prober, lights *indicator.Panel, link Connectivity, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		prober: prober,
		lights: lights,
		link:   link,
		logger: logger,
	}
}

// Run executes one poll cycle over the given endpoints and blocks until
// every probe has reported.
//
// If the link is down the cycle is refused: the error light is set and no
// network activity occurs. With zero endpoints the cycle completes
// immediately with no failures.
//
// Each endpoint gets its own goroutine. A failing probe increments the
// shared failure counter after its own indicator update; completion is
// signalled as each unit's terminal action. There is no ordering
// between units, and no cycle-level timeout beyond each probe's own request
// timeout: a probe that never returns blocks the cycle.
func (c *Coordinator) Run(ctx context.Context, endpoints []probe.Endpoint) Report {
	if !c.link.IsConnected() {
		c.logger.Warn("poll cycle refused", "reason", "not connected")
		c.lights.Set(indicator.Error, true)
		return Report{Total: len(endpoints), Refused: true}
	}

	id := uuid.NewString()
	total := len(endpoints)
	start := time.Now()

	c.logger.Info("poll cycle starting", "cycle_id", id, "endpoints", total)

	var failed atomic.Int32

	// The wait group is the completion barrier: its counter plays the role
	// of the active-probe count, decremented as each unit's terminal action.
	var wg sync.WaitGroup
	for _, ep := range endpoints {
		wg.Add(1)
		go func(ep probe.Endpoint) {
			defer wg.Done()
			defer c.recoverProbePanic(&failed, ep)

			outcome := c.prober.Probe(ctx, ep, &failed)
			if !outcome.OK() {
				failed.Add(1)
			}
		}(ep)
	}
	wg.Wait()

	f := int(failed.Load())

	// Cycle-end sync: the per-probe updates race against each other, so the
	// light can transiently disagree with the counter mid-cycle. Settle it
	// now that every probe has reported.
	c.lights.Update(func(w indicator.Writer) {
		w.Set(indicator.Error, f > 0)
	})

	c.logger.Info("poll cycle complete",
		"cycle_id", id,
		"total", total,
		"failed", f,
		"elapsed", time.Since(start).String(),
	)

	return Report{
		ID:      id,
		Total:   total,
		Failed:  f,
		Elapsed: time.Since(start),
	}
}

// recoverProbePanic converts a panicking probe unit into an ordinary failure
// so one bad probe cannot take down the agent or hang the cycle.
func (c *Coordinator) recoverProbePanic(failed *atomic.Int32, ep probe.Endpoint) {
	if r := recover(); r != nil {
		correlationID := uuid.NewString()
		c.logger.Error("probe panic",
			"correlation_id", correlationID,
			"index", ep.Index,
			"url", ep.URL,
			"panic", fmt.Sprintf("%v", r),
			"stack", string(debug.Stack()),
		)
		failed.Add(1)
		c.lights.Set(indicator.Error, true)
	}
}
