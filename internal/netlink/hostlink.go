package netlink

import (
	"context"
	"fmt"
	"net"
	"time"
)

// defaultCheckAddress is a well-known reachable TCP endpoint used to decide
// whether the host has a network path at all.
const defaultCheckAddress = "1.1.1.1:443"

// HostLink is a [Conn] for hosts whose network is managed by the operating
// system. It cannot join networks itself; IsConnected probes reachability by
// dialing a known address, and Connect merely re-verifies. Credentials are
// accepted and ignored so configs stay portable to embedded providers.
type HostLink struct {
	checkAddress string
	dialTimeout  time.Duration
}

// NewHostLink creates a HostLink probing checkAddress. An empty address
// falls back to a well-known public endpoint.
func NewHostLink(checkAddress string, dialTimeout time.Duration) *HostLink {
	if checkAddress == "" {
		checkAddress = defaultCheckAddress
	}
	if dialTimeout <= 0 {
		dialTimeout = 2 * time.Second
	}
	return &HostLink{
		checkAddress: checkAddress,
		dialTimeout:  dialTimeout,
	}
}

// IsConnected reports whether the check address is reachable.
func (h *HostLink) IsConnected() bool {
	conn, err := net.DialTimeout("tcp", h.checkAddress, h.dialTimeout)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

// Connect verifies reachability; the OS owns the actual link.
func (h *HostLink) Connect(ctx context.Context, _ Credentials, _ string) error {
	d := net.Dialer{Timeout: h.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", h.checkAddress)
	if err != nil {
		return fmt.Errorf("no route to %s: %w", h.checkAddress, err)
	}
	_ = conn.Close()
	return nil
}

// Status returns the local address used to reach the check endpoint.
// Signal strength is unknown on a host link.
func (h *HostLink) Status() Info {
	conn, err := net.DialTimeout("tcp", h.checkAddress, h.dialTimeout)
	if err != nil {
		return Info{}
	}
	defer func() { _ = conn.Close() }()
	addr, _, _ := net.SplitHostPort(conn.LocalAddr().String())
	return Info{Address: addr}
}
