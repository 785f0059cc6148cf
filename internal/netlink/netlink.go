// Package netlink owns the network connection lifecycle.
//
// The actual connection mechanics (radio association, DHCP, link state) live
// behind the [Conn] interface; this package decides when to (re)connect,
// tracks a small state machine, and reflects link health on the indicator
// lights. Poll cycles are gated on the supervisor reporting Connected.
package netlink

import "context"

// Credentials identifies the network to join.
type Credentials struct {
	SSID     string
	Password string
}

// Info carries diagnostic details about an established connection.
type Info struct {
	// Address is the local address on the link.
	Address string

	// SignalStrength is the link quality in dBm, zero when unknown.
	SignalStrength int
}

// Conn is the external connection provider.
//
// Implementations are expected to make Connect block until the link is
// established or the attempt has failed; the supervisor bounds the overall
// number of attempts, not the duration of a single one.
type Conn interface {
	// IsConnected reports whether the link is currently up.
	IsConnected() bool

	// Connect attempts to establish the link, blocking until it is up or
	// the attempt fails. hostname is the identity to present on the
	// network.
	Connect(ctx context.Context, creds Credentials, hostname string) error

	// Status returns diagnostics for the current connection. Only
	// meaningful while IsConnected is true.
	Status() Info
}
