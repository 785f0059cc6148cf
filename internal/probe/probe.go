// Package probe performs single bounded health-check requests against
// configured endpoints and classifies their outcomes.
//
// Each probe invocation owns a dedicated HTTP client end-to-end: no transport
// state is shared between concurrent probes, and all connections are released
// before the invocation returns, on every exit path. Indicator side effects
// happen inside the probe so that the error light tracks failures as they are
// observed, not only at cycle boundaries.
package probe

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/probelight/probelight/internal/indicator"
)

// maxResponseBodySize caps how much of a response body is read. Health
// endpoints return small payloads; anything beyond this is discarded.
const maxResponseBodySize = 1 << 20 // 1MB

// Endpoint is one immutable polling target.
type Endpoint struct {
	// Name is an optional display name; falls back to the URL in logs.
	Name string

	// URL is the health check target.
	URL string

	// Index is the endpoint's 1-based position in the configured list,
	// used to correlate log lines within a cycle.
	Index int
}

// Prober issues one blocking health-check request per call.
type Prober struct {
	timeout   time.Duration
	userAgent string
	insecure  bool
	lights    *indicator.Panel
	logger    *slog.Logger
}

// New creates a Prober.
//
// deviceName becomes the User-Agent ("<deviceName>/1.0"). insecure disables
// TLS certificate verification, matching deployments that pin nothing and
// poll endpoints with self-signed certificates.
func New(timeout time.Duration, deviceName string, insecure bool, lights *indicator.Panel, logger *slog.Logger) *Prober {
	return &Prober{
		timeout:   timeout,
		userAgent: fmt.Sprintf("%s/1.0", deviceName),
		insecure:  insecure,
		lights:    lights,
		logger:    logger,
	}
}

// Probe performs one GET against the endpoint and classifies the result.
//
// failures is the current cycle's shared failure counter. On any non-success
// outcome the error light is switched on. On success the error light is
// cleared only if failures reads zero inside the same exclusive section —
// a lone success must not wipe out an error recorded by a sibling probe.
// Probe never increments failures itself; that is the coordinator's job.
func (p *Prober) Probe(ctx context.Context, ep Endpoint, failures *atomic.Int32) Outcome {
	start := time.Now()

	transport := &http.Transport{}
	if p.insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	client := &http.Client{Transport: transport}
	defer transport.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.URL, nil)
	if err != nil {
		p.logger.Error("failed to build request",
			"index", ep.Index,
			"url", ep.URL,
			"error", err,
		)
		p.lights.Set(indicator.Error, true)
		return Outcome{
			Kind:    KindInitError,
			Err:     fmt.Errorf("failed to build request: %w", err),
			Latency: time.Since(start),
		}
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		kind := classifyTransportError(err)
		p.logger.Warn("request failed",
			"index", ep.Index,
			"url", ep.URL,
			"kind", kind.String(),
			"error", err,
			"latency", time.Since(start).String(),
		)
		p.lights.Set(indicator.Error, true)
		return Outcome{
			Kind:      KindTransportError,
			Transport: kind,
			Err:       fmt.Errorf("request failed: %w", err),
			Latency:   time.Since(start),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		p.logger.Warn("failed to read response body",
			"index", ep.Index,
			"url", ep.URL,
			"status", resp.StatusCode,
			"error", err,
		)
		p.lights.Set(indicator.Error, true)
		return Outcome{
			Kind:       KindTransportError,
			Transport:  TransportLost,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
			Latency:    time.Since(start),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		p.logger.Warn("unhealthy response",
			"index", ep.Index,
			"url", ep.URL,
			"status", resp.StatusCode,
			"latency", time.Since(start).String(),
		)
		p.lights.Set(indicator.Error, true)
		return Outcome{
			Kind:       KindHTTPError,
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
		}
	}

	// A success clears the error light only when no sibling failure has been
	// recorded yet. The counter is read inside the exclusive section, but a
	// sibling that has set the light and not yet incremented the counter can
	// still be wiped out here; the cycle-end sync restores the light.
	p.lights.Update(func(w indicator.Writer) {
		if failures.Load() == 0 {
			w.Set(indicator.Error, false)
		}
	})

	p.logger.Info("probe ok",
		"index", ep.Index,
		"url", ep.URL,
		"status", resp.StatusCode,
		"bytes", len(body),
		"latency", time.Since(start).String(),
	)
	return Outcome{
		Kind:       KindSuccess,
		StatusCode: resp.StatusCode,
		BodyLen:    len(body),
		Latency:    time.Since(start),
	}
}

// classifyTransportError buckets a transport failure for diagnostics.
// All buckets are handled identically by callers.
func classifyTransportError(err error) TransportKind {
	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return TransportRefused
	case errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return TransportLost
	case errors.Is(err, context.DeadlineExceeded):
		return TransportTimeout
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return TransportTimeout
	}
	return TransportOther
}
