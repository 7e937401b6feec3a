package client

import (
	"context"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// TcpStream presents blocking-style connect/send/receive semantics over
// either a real local TCP socket (Direct mode) or a proxied channel
// through a relay (Proxied mode).
type TcpStream struct {
	f facade
}

// DialTCP connects to address. With proxyURL empty, it dials address
// directly, bypassing the tunnel. With proxyURL set, it opens a transport
// session against that relay and requests a Tcp channel for address.
func DialTCP(ctx context.Context, address, proxyURL string) (*TcpStream, error) {
	if proxyURL == "" {
		f, err := newDirectTCP(address)
		if err != nil {
			return nil, err
		}
		return &TcpStream{f: f}, nil
	}

	f, err := dialProxied(ctx, transport.NewClientHost(ctx), proxyURL,
		protocol.ChannelConfig{Kind: protocol.TCPKind, Addr: address})
	if err != nil {
		return nil, err
	}
	return &TcpStream{f: f}, nil
}

// Connected reports whether the stream has completed its handshake. For a
// direct stream this is true the instant DialTCP returns successfully; for
// a proxied stream it becomes true once the relay's driver reaches
// Connected and its handshake-ack has been observed, or the call fails with
// ErrConnectTimeout once timeout has elapsed.
func (s *TcpStream) Connected(timeout time.Duration) (bool, error) { return s.f.Connected(timeout) }

// Send writes one payload. A partial direct write, or a relay-side close,
// leaves the stream permanently disconnected.
func (s *TcpStream) Send(data []byte) error { return s.f.Send(data) }

// Receive pops at most one queued payload, or (nil, nil) if none is ready.
func (s *TcpStream) Receive() ([]byte, error) { return s.f.Receive() }

// Close tears the stream down. Safe to call more than once.
func (s *TcpStream) Close() error { return s.f.Close() }
