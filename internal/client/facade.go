// Package client implements the adapter described in spec §4.5: a
// synchronous TcpStream/UdpSocket façade over the same reliable packet
// transport the relay speaks, plus a Direct mode that bypasses the tunnel
// entirely for local testing.
//
// The façade is single-threaded and cooperative: state only ever advances
// inside a public call, which drives one non-blocking servicing pass over
// the transport first. There is no background goroutine mutating a
// TcpStream/UdpSocket behind the caller's back.
package client

import (
	"errors"
	"time"
)

// ErrDisconnected is returned once a façade has permanently stopped
// servicing its backend — by a driver/socket error, a relay close frame,
// or an explicit Close. It is terminal: every call after it keeps failing.
var ErrDisconnected = errors.New("client: disconnected")

// ErrConnectTimeout is returned by Connected when the caller-supplied
// timeout elapses before the proxied handshake completes.
var ErrConnectTimeout = errors.New("client: connect timed out")

// facade is the shape both Direct and Proxied modes implement identically,
// matching the original's Proxied/Direct enum variants of TcpStream/UdpSocket.
type facade interface {
	// Connected reports whether the façade has completed its handshake.
	// timeout is only consulted while still pending.
	Connected(timeout time.Duration) (bool, error)
	// Send transmits one application payload. Requires a prior Connected
	// true (proxied mode) — direct mode has no handshake to wait for.
	Send(data []byte) error
	// Receive pops at most one queued payload, or (nil, nil) if none is
	// ready yet.
	Receive() ([]byte, error)
	// Close tears the façade down immediately; idempotent.
	Close() error
}
