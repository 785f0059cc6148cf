package probe

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/probelight/probelight/internal/indicator"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestProber builds a prober with an instrumented light panel.
func newTestProber(timeout time.Duration) (*Prober, *indicator.Panel, *indicator.Memory) {
	mem := indicator.NewMemory()
	panel := indicator.NewPanel(mem)
	return New(timeout, "testdev", false, panel, testLogger()), panel, mem
}

func TestProbe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	prober, panel, _ := newTestProber(5 * time.Second)
	panel.Set(indicator.Error, true) // left over from a previous failure

	var failures atomic.Int32
	outcome := prober.Probe(context.Background(), Endpoint{URL: server.URL, Index: 1}, &failures)

	if !outcome.OK() {
		t.Fatalf("expected success, got %s (err=%v)", outcome.Kind, outcome.Err)
	}
	if outcome.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", outcome.StatusCode)
	}
	if outcome.BodyLen != 2 {
		t.Errorf("BodyLen = %d, want 2", outcome.BodyLen)
	}
	if panel.Get(indicator.Error) {
		t.Error("success with zero recorded failures must clear the error light")
	}
}

// TestProbe_SuccessKeepsErrorWithSiblingFailures verifies that a lone
// success does not clear the error light while the cycle's failure counter
// is non-zero.
func TestProbe_SuccessKeepsErrorWithSiblingFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober, panel, _ := newTestProber(5 * time.Second)
	panel.Set(indicator.Error, true)

	var failures atomic.Int32
	failures.Store(1)

	outcome := prober.Probe(context.Background(), Endpoint{URL: server.URL, Index: 1}, &failures)

	if !outcome.OK() {
		t.Fatalf("expected success, got %s", outcome.Kind)
	}
	if !panel.Get(indicator.Error) {
		t.Error("error light must stay set while sibling failures are recorded")
	}
}

func TestProbe_SendsIdentityHeaders(t *testing.T) {
	var gotUserAgent, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	prober, _, _ := newTestProber(5 * time.Second)

	var failures atomic.Int32
	prober.Probe(context.Background(), Endpoint{URL: server.URL, Index: 1}, &failures)

	if gotUserAgent != "testdev/1.0" {
		t.Errorf("User-Agent = %q, want %q", gotUserAgent, "testdev/1.0")
	}
	if gotAccept != "application/json" {
		t.Errorf("Accept = %q, want %q", gotAccept, "application/json")
	}
}

func TestProbe_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	prober, panel, _ := newTestProber(5 * time.Second)

	var failures atomic.Int32
	outcome := prober.Probe(context.Background(), Endpoint{URL: server.URL, Index: 1}, &failures)

	if outcome.Kind != KindHTTPError {
		t.Fatalf("Kind = %s, want http_error", outcome.Kind)
	}
	if outcome.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", outcome.StatusCode)
	}
	if !panel.Get(indicator.Error) {
		t.Error("http error must set the error light")
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	// grab a port that nothing listens on
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	prober, panel, _ := newTestProber(2 * time.Second)

	var failures atomic.Int32
	outcome := prober.Probe(context.Background(), Endpoint{URL: url, Index: 1}, &failures)

	if outcome.Kind != KindTransportError {
		t.Fatalf("Kind = %s, want transport_error", outcome.Kind)
	}
	if outcome.Transport != TransportRefused {
		t.Errorf("Transport = %s, want connection_refused", outcome.Transport)
	}
	if !panel.Get(indicator.Error) {
		t.Error("transport error must set the error light")
	}
}

func TestProbe_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	prober, panel, _ := newTestProber(50 * time.Millisecond)

	var failures atomic.Int32
	outcome := prober.Probe(context.Background(), Endpoint{URL: server.URL, Index: 1}, &failures)

	if outcome.Kind != KindTransportError {
		t.Fatalf("Kind = %s, want transport_error", outcome.Kind)
	}
	if outcome.Transport != TransportTimeout {
		t.Errorf("Transport = %s, want read_timeout", outcome.Transport)
	}
	if !panel.Get(indicator.Error) {
		t.Error("timeout must set the error light")
	}
}

func TestProbe_InitError(t *testing.T) {
	prober, panel, _ := newTestProber(time.Second)

	var failures atomic.Int32
	// control character makes the request object unconstructable
	outcome := prober.Probe(context.Background(), Endpoint{URL: "http://example.com/\x7f", Index: 1}, &failures)

	if outcome.Kind != KindInitError {
		t.Fatalf("Kind = %s, want init_error", outcome.Kind)
	}
	if outcome.Err == nil {
		t.Error("expected Err to be set")
	}
	if !panel.Get(indicator.Error) {
		t.Error("init error must set the error light")
	}
}

func TestClassifyTransportError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want TransportKind
	}{
		{"connection refused", wrap(syscall.ECONNREFUSED), TransportRefused},
		{"connection reset", wrap(syscall.ECONNRESET), TransportLost},
		{"eof", wrap(io.EOF), TransportLost},
		{"unexpected eof", wrap(io.ErrUnexpectedEOF), TransportLost},
		{"deadline exceeded", wrap(context.DeadlineExceeded), TransportTimeout},
		{"net timeout", timeoutError{}, TransportTimeout},
		{"other", errors.New("mystery"), TransportOther},
	}

	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTransportError(tt.err); got != tt.want {
				t.Errorf("classifyTransportError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func wrap(err error) error {
	return &url.Error{Op: "Get", URL: "http://example.com", Err: err}
}

// timeoutError satisfies the net.Error timeout check.
type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

func TestKindAndTransportStrings(t *testing.T) {
	if KindSuccess.String() != "success" || KindInitError.String() != "init_error" {
		t.Error("unexpected Kind string labels")
	}
	if TransportRefused.String() != "connection_refused" || TransportOther.String() != "other" {
		t.Error("unexpected TransportKind string labels")
	}
}
