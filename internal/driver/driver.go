// Package driver implements the per-channel backends a worker drives:
// echo, TCP, and UDP. Each one is a small non-blocking state machine, polled
// by the worker roughly every 10ms — never a blocking read/write, so one
// slow driver can never stall the others sharing a session.
package driver

import "errors"

// Status mirrors the three-state lifecycle every driver goes through.
type Status int

const (
	Connecting Status = iota
	Connected
	Disconnected
)

func (s Status) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// MaxMessageSize is the size of a driver's read buffer. A read that fills
// the whole buffer has no way to tell where the message actually ended, so
// it is treated as fatal (ErrOversized) rather than silently truncated; the
// largest payload Receive hands back is therefore MaxMessageSize-1 bytes.
const MaxMessageSize = 4096

// ErrOversized is returned by Receive when a single read filled the
// MaxMessageSize buffer, meaning the true message may have been longer.
var ErrOversized = errors.New("driver: message exceeds maximum size")

// ErrDisconnected is returned by Send/Receive once the driver has
// permanently stopped servicing its backend.
var ErrDisconnected = errors.New("driver: disconnected")

// Driver is the non-blocking backend a worker polls once per tick. All
// three methods must return immediately: Receive returns (nil, nil) when
// no data is available yet, exactly like a WouldBlock read.
type Driver interface {
	// Status reports the current lifecycle state. A driver that is
	// Connecting is not yet ready for Send/Receive; one that reports
	// Disconnected will never transition back.
	Status() Status
	// Send writes one message to the backend. Called only while Connected.
	Send(data []byte) error
	// Receive polls for the next message without blocking. Returns
	// (nil, nil) if none is ready yet.
	Receive() ([]byte, error)
	// Close releases any resources the driver holds open.
	Close() error
}
