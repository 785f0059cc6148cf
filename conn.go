package probelight

import (
	"context"
	"io"
	"time"

	"github.com/probelight/probelight/internal/indicator"
	"github.com/probelight/probelight/internal/netlink"
)

// Credentials identifies the network the agent should join.
type Credentials struct {
	SSID     string
	Password string
}

// LinkInfo carries diagnostic details about an established connection.
type LinkInfo struct {
	// Address is the local address on the link.
	Address string

	// SignalStrength is the link quality in dBm, zero when unknown.
	SignalStrength int
}

// Conn is the connection provider consumed by the agent's connectivity
// supervisor. Implement it to bind the agent to real link hardware; use
// [NewHostConn] on hosts whose network is managed by the operating system.
type Conn interface {
	// IsConnected reports whether the link is currently up.
	IsConnected() bool

	// Connect attempts to establish the link, blocking until it is up or
	// the attempt fails. hostname is the identity to present on the
	// network.
	Connect(ctx context.Context, creds Credentials, hostname string) error

	// Status returns diagnostics for the current connection. Only
	// meaningful while IsConnected is true.
	Status() LinkInfo
}

// NewHostConn returns a [Conn] for hosts with OS-managed networking. It
// verifies connectivity by dialing checkAddress (a sensible public endpoint
// is used when empty) and treats Connect as a reachability re-check.
func NewHostConn(checkAddress string) Conn {
	return hostConn{link: netlink.NewHostLink(checkAddress, 2 * time.Second)}
}

// hostConn adapts the internal host link to the public Conn interface.
type hostConn struct {
	link *netlink.HostLink
}

func (h hostConn) IsConnected() bool {
	return h.link.IsConnected()
}

func (h hostConn) Connect(ctx context.Context, creds Credentials, hostname string) error {
	return h.link.Connect(ctx, netlink.Credentials(creds), hostname)
}

func (h hostConn) Status() LinkInfo {
	return LinkInfo(h.link.Status())
}

// connAdapter presents a public Conn to the internal supervisor.
type connAdapter struct {
	c Conn
}

func (a connAdapter) IsConnected() bool {
	return a.c.IsConnected()
}

func (a connAdapter) Connect(ctx context.Context, creds netlink.Credentials, hostname string) error {
	return a.c.Connect(ctx, Credentials(creds), hostname)
}

func (a connAdapter) Status() netlink.Info {
	return netlink.Info(a.c.Status())
}

// Light names one of the agent's two indicator lights.
type Light string

const (
	// LightError is switched on whenever any probe or connectivity
	// failure has been observed.
	LightError Light = "error"

	// LightSuccess is pulsed on a successful network (re)connect.
	LightSuccess Light = "success"
)

// Output receives indicator light transitions. Implement it to drive real
// indicator hardware; all calls are serialized by the agent, so
// implementations need no locking of their own.
type Output interface {
	Set(l Light, on bool)
}

// outputAdapter presents a public Output to the internal indicator panel.
type outputAdapter struct {
	o Output
}

func (a outputAdapter) Set(l indicator.Light, on bool) {
	a.o.Set(Light(l.String()), on)
}

// consoleOutput builds the default colored-terminal output.
func consoleOutput(w io.Writer) indicator.Output {
	return indicator.NewConsole(w)
}
