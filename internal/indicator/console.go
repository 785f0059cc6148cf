package indicator

import (
	"io"

	"github.com/fatih/color"
)

// Console renders light transitions as colored lines on a terminal.
//
// It is the default output for the CLI, standing in for indicator hardware
// on hosts that have none: the error light prints in red, the success light
// in blue.
type Console struct {
	w      io.Writer
	colors [2]*color.Color
}

// NewConsole creates a Console writing to w.
func NewConsole(w io.Writer) *Console {
	return &Console{
		w: w,
		colors: [2]*color.Color{
			Error:   color.New(color.FgRed, color.Bold),
			Success: color.New(color.FgBlue, color.Bold),
		},
	}
}

// Set prints the new state of the light.
func (c *Console) Set(l Light, on bool) {
	state := "off"
	marker := "○"
	if on {
		state = "on"
		marker = "●"
	}
	_, _ = c.colors[l].Fprintf(c.w, "%s %s light %s\n", marker, l, state)
}

// Discard is an [Output] that drops all writes. Useful when only the
// panel's own state tracking is needed.
type Discard struct{}

// Set does nothing.
func (Discard) Set(Light, bool) {}
