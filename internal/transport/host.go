// Package transport provides the WebRTC-backed peer transport used by both
// the relay and the client. It replaces the ENet create_host/service/send
// poll contract with an idiomatic Go push contract: callers read a single
// Events() channel instead of driving a service() loop themselves.
package transport

import (
	"context"
	"errors"
)

// PeerID is an opaque per-connection handle, independent of address family.
// On the relay side it identifies one signaling client; on the client side
// there is exactly one PeerID, the relay itself.
type PeerID string

// Reliability selects which of the two pre-negotiated DataChannels a Send
// travels over.
type Reliability int

const (
	// Reliable delivers in order and without loss (SCTP ordered/reliable).
	Reliable Reliability = iota
	// Unreliable delivers with no ordering or retransmission guarantee
	// (SCTP unordered, zero retransmits) — used for UDP channels' data
	// frames; echo and TCP channels use Reliable.
	Unreliable
)

// EventKind classifies an Event.
type EventKind int

const (
	EventConnect EventKind = iota
	EventDisconnect
	EventReceive
)

// Event is a single occurrence on the transport, analogous to one ENet
// service() result. ChannelID is only meaningful for EventReceive.
type Event struct {
	Kind      EventKind
	Peer      PeerID
	ChannelID uint8
	Data      []byte
}

var (
	// ErrHostClosed is returned by Send when the target peer connection has
	// already shut down (on ClientHostImpl, after Close or Disconnect).
	ErrHostClosed = errors.New("transport: host closed")
	// ErrPeerUnknown is returned by Send for a PeerID the host has no peer
	// connection for (on RelayHost, also after Disconnect or Close).
	ErrPeerUnknown = errors.New("transport: unknown peer")
)

// Host is the relay-side and client-side transport boundary. Events are
// pushed onto a single channel shared across all peers; callers demultiplex
// by Event.Peer.
type Host interface {
	// Events returns the channel of inbound occurrences. RelayHost and
	// ClientHostImpl never close it; it stays open after Close.
	Events() <-chan Event
	// Send transmits data on a logical channel to a peer, choosing the
	// physical DataChannel that matches mode.
	Send(peer PeerID, channelID uint8, data []byte, mode Reliability) error
	// Disconnect tears down one peer's connection without closing the host.
	Disconnect(peer PeerID)
	// Close shuts down every peer connection and releases the host.
	Close() error
}

// ClientHost is a Host that additionally knows how to establish its single
// outbound connection to a relay.
type ClientHost interface {
	Host
	// Connect performs signaling against serverURL and blocks until the
	// peer connection's DataChannels are open, or ctx is done.
	Connect(ctx context.Context, serverURL string) (PeerID, error)
}
