package client

import (
	"context"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// Stream is a façade over any ChannelConfig, including EchoKind, which
// neither TcpStream nor UdpSocket exposes — matching the original, where
// Proxied::connect takes an arbitrary protocol tag but TcpStream/UdpSocket
// only ever pass it "Tcp"/"Udp". Dial is how a caller (notably the
// sockbridge-client smoke-test CLI) reaches the Echo driver for loopback
// testing against a live relay.
type Stream struct {
	f facade
}

// Dial opens a proxied channel of the given config against proxyURL.
// There is no Direct-mode equivalent for EchoKind: Echo only ever exists
// as a relay-side test driver, never a local backend.
func Dial(ctx context.Context, proxyURL string, cfg protocol.ChannelConfig) (*Stream, error) {
	f, err := dialProxied(ctx, transport.NewClientHost(ctx), proxyURL, cfg)
	if err != nil {
		return nil, err
	}
	return &Stream{f: f}, nil
}

func (s *Stream) Connected(timeout time.Duration) (bool, error) { return s.f.Connected(timeout) }
func (s *Stream) Send(data []byte) error                        { return s.f.Send(data) }
func (s *Stream) Receive() ([]byte, error)                       { return s.f.Receive() }
func (s *Stream) Close() error                                   { return s.f.Close() }
