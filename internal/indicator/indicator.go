// Package indicator controls the agent's two binary status lights.
//
// All mutation of light state goes through [Panel], which serializes writers
// with a mutex so that concurrent probes never interleave a partial update.
// The actual output target (hardware pin, terminal, test double) is abstracted
// behind the [Output] interface.
package indicator

import (
	"sync"
	"time"
)

// Light identifies one of the two binary indicator outputs.
type Light int

const (
	// Error is the light switched on whenever any probe or connectivity
	// failure has been observed.
	Error Light = iota

	// Success is the light pulsed on a successful network (re)connect.
	Success
)

// String returns a human-readable name for the light.
func (l Light) String() string {
	switch l {
	case Error:
		return "error"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Output is the hardware seam: one binary set operation per light.
//
// Implementations do not need to be safe for concurrent use; [Panel]
// serializes all calls.
type Output interface {
	Set(l Light, on bool)
}

// Writer is the view of the lights handed to an [Panel.Update] transition.
//
// Set both forwards to the underlying [Output] and records the value so that
// later reads observe the last written state.
type Writer interface {
	Set(l Light, on bool)
	Get(l Light) bool
}

// Panel serializes access to the two indicator lights.
//
// Every read and write of light state happens while holding the panel's
// mutex, so concurrent callers observe mutations as strictly serialized.
// The zero value is not usable; construct with [NewPanel].
type Panel struct {
	mu    sync.Mutex
	out   Output
	state [2]bool
}

// NewPanel creates a Panel driving the given output.
func NewPanel(out Output) *Panel {
	return &Panel{out: out}
}

// panelWriter implements [Writer] against a locked panel.
type panelWriter struct {
	p *Panel
}

func (w panelWriter) Set(l Light, on bool) {
	w.p.state[l] = on
	w.p.out.Set(l, on)
}

func (w panelWriter) Get(l Light) bool {
	return w.p.state[l]
}

// Update runs fn as a single exclusive state transition against the lights.
//
// The mutex is held for the duration of fn and released unconditionally,
// including when fn panics. This is the only way to mutate light state.
func (p *Panel) Update(fn func(w Writer)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn(panelWriter{p})
}

// Set switches a single light on or off as one exclusive transition.
func (p *Panel) Set(l Light, on bool) {
	p.Update(func(w Writer) {
		w.Set(l, on)
	})
}

// Get reads the last written state of a light under the panel mutex.
func (p *Panel) Get(l Light) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state[l]
}

// Pulse blinks a light on and off count times, holding each phase for
// interval. Each individual toggle is its own exclusive transition, so other
// writers may interleave between toggles but never observe a torn write.
func (p *Panel) Pulse(l Light, count int, interval time.Duration) {
	for i := 0; i < count; i++ {
		p.Set(l, true)
		time.Sleep(interval)
		p.Set(l, false)
		time.Sleep(interval)
	}
}
