package indicator

import "sync"

// Memory is an instrumented in-memory [Output] for tests.
//
// It records the current value of each light and counts every write, which
// lets concurrency tests verify that writes are serialized and that pulses
// produce the expected number of toggles. Memory has its own mutex so tests
// can read it while a panel is being driven from other goroutines.
type Memory struct {
	mu     sync.Mutex
	lights [2]bool
	writes [2]int
}

// NewMemory creates an empty Memory output with both lights off.
func NewMemory() *Memory {
	return &Memory{}
}

// Set records the write and the new value.
func (m *Memory) Set(l Light, on bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lights[l] = on
	m.writes[l]++
}

// On reports the last written value for the light.
func (m *Memory) On(l Light) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lights[l]
}

// Writes returns how many times the light has been written.
func (m *Memory) Writes(l Light) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[l]
}
