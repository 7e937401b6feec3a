package client

import (
	"context"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// UdpSocket mirrors TcpStream for UDP targets: same façade shape, same
// Direct/Proxied split, with the driver's 4095-byte-datagram ceiling
// applying identically on both ends.
type UdpSocket struct {
	f facade
}

// DialUDP connects to address. With proxyURL empty, it binds and connects
// a local UDP socket directly. With proxyURL set, it requests a Udp
// channel through that relay.
func DialUDP(ctx context.Context, address, proxyURL string) (*UdpSocket, error) {
	if proxyURL == "" {
		f, err := newDirectUDP(address)
		if err != nil {
			return nil, err
		}
		return &UdpSocket{f: f}, nil
	}

	f, err := dialProxied(ctx, transport.NewClientHost(ctx), proxyURL,
		protocol.ChannelConfig{Kind: protocol.UDPKind, Addr: address})
	if err != nil {
		return nil, err
	}
	return &UdpSocket{f: f}, nil
}

func (s *UdpSocket) Connected(timeout time.Duration) (bool, error) { return s.f.Connected(timeout) }
func (s *UdpSocket) Send(data []byte) error                        { return s.f.Send(data) }
func (s *UdpSocket) Receive() ([]byte, error)                      { return s.f.Receive() }
func (s *UdpSocket) Close() error                                  { return s.f.Close() }
