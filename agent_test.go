package probelight

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// upConn is a Conn whose link is always up.
type upConn struct{}

func (upConn) IsConnected() bool { return true }
func (upConn) Connect(context.Context, Credentials, string) error {
	return nil
}
func (upConn) Status() LinkInfo { return LinkInfo{Address: "192.168.1.50"} }

// downConn is a Conn that never comes up.
type downConn struct{}

func (downConn) IsConnected() bool { return false }
func (downConn) Connect(context.Context, Credentials, string) error {
	return errors.New("no network")
}
func (downConn) Status() LinkInfo { return LinkInfo{} }

// recordingOutput captures light transitions for assertions.
type recordingOutput struct {
	mu     sync.Mutex
	lights map[Light]bool
}

func newRecordingOutput() *recordingOutput {
	return &recordingOutput{lights: make(map[Light]bool)}
}

func (r *recordingOutput) Set(l Light, on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights[l] = on
}

func (r *recordingOutput) on(l Light) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lights[l]
}

func TestNew_Defaults(t *testing.T) {
	agent, err := New(WithLogger(testLogger()))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if agent.LinkState() != "disconnected" {
		t.Errorf("LinkState() = %q, want disconnected before Start", agent.LinkState())
	}
}

func TestNew_OptionValidation(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"empty endpoint url", WithEndpoint(Endpoint{Name: "x"})},
		{"bad endpoint scheme", WithEndpoint(Endpoint{URL: "ftp://example.com"})},
		{"nil conn", WithConn(nil)},
		{"empty device name", WithDeviceName("")},
		{"zero poll interval", WithPollInterval(0)},
		{"negative request timeout", WithRequestTimeout(-time.Second)},
		{"negative reconnect delay", WithReconnectDelay(-time.Second)},
		{"zero connect attempts", WithConnectAttempts(0)},
		{"zero check interval", WithCheckInterval(0)},
		{"nil lights", WithLights(nil)},
		{"nil console writer", WithConsoleLights(nil)},
		{"nil logger", WithLogger(nil)},
		{"nil cycle callback", WithCycleCallback(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.opt); err == nil {
				t.Error("expected option validation error, got nil")
			}
		})
	}
}

// TestAgent_ImmediateCycleOnStart verifies that a connected agent runs one
// poll cycle right after start and reports it through the cycle callback.
func TestAgent_ImmediateCycleOnStart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer server.Close()

	out := newRecordingOutput()
	reports := make(chan Report, 1)

	agent, err := New(
		WithEndpoints(
			Endpoint{Name: "one", URL: server.URL},
			Endpoint{Name: "two", URL: server.URL},
		),
		WithConn(upConn{}),
		WithLights(out),
		WithLogger(testLogger()),
		WithPollInterval(time.Hour),
		WithCycleCallback(func(r Report) {
			select {
			case reports <- r:
			default:
			}
		}),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- agent.Start(ctx) }()

	select {
	case report := <-reports:
		if report.Total != 2 || report.Failed != 0 || report.Refused {
			t.Errorf("report = %+v, want {Total:2 Failed:0 Refused:false}", report)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no cycle report after start")
	}

	if out.on(LightError) {
		t.Error("error light must be clear after an all-success cycle")
	}
	if agent.LinkState() != "connected" {
		t.Errorf("LinkState() = %q, want connected", agent.LinkState())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned %v on cancellation, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

// TestAgent_StartWithLinkDown verifies that an agent that cannot connect
// stays disconnected, lights the error indicator, and runs no probes.
func TestAgent_StartWithLinkDown(t *testing.T) {
	out := newRecordingOutput()

	agent, err := New(
		WithEndpoint(Endpoint{URL: "http://192.0.2.1/health"}),
		WithConn(downConn{}),
		WithConnectAttempts(1),
		WithLights(out),
		WithLogger(testLogger()),
		WithPollInterval(time.Hour),
		WithCheckInterval(time.Hour),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- agent.Start(ctx) }()

	// the initial connect attempt is synchronous up to the first tick wait
	deadline := time.After(5 * time.Second)
	for agent.LinkState() != "disconnected" || !out.on(LightError) {
		select {
		case <-deadline:
			t.Fatalf("agent never settled: state=%s error_light=%v", agent.LinkState(), out.on(LightError))
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}
