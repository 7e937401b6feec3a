package client

import (
	"context"
	"fmt"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// setupChannelID is the one logical channel a proxied façade ever uses.
// The client configures exactly one channel per spec §4.1's transport
// session parameters (peer_limit=1, channel_limit=1).
const setupChannelID uint8 = 0

// proxiedFacade drives the Pending -> Connected -> Disconnected state
// machine from spec §4.5 over a transport.ClientHost. Connect() on the
// host already blocks until the peer's DataChannels are open — the
// idiomatic-Go equivalent of "immediately upon the transport Connect
// event" from the original, since there is no separate Connect event to
// wait for once Connect() has returned.
type proxiedFacade struct {
	host      transport.ClientHost
	peer      transport.PeerID
	connectAt time.Time

	// mode is the physical DataChannel this channel's data frames travel
	// over once connected: Reliable for TCP/Echo backends, Unreliable for
	// UDP, matching the relay side's choice in relay.Session (see
	// internal/relay/session.go). The setup request itself always goes out
	// Reliable regardless of mode, the same way the relay always answers
	// close frames Reliable — open/close are control traffic, not data.
	mode transport.Reliability

	connected    bool
	disconnected bool
	inbox        [][]byte
}

// dialProxied opens host, connects to proxyURL, and sends cfg as the setup
// message on channel 0. It does not wait for the handshake-ack — that is
// the caller's job via Connected(timeout).
func dialProxied(ctx context.Context, host transport.ClientHost, proxyURL string, cfg protocol.ChannelConfig) (*proxiedFacade, error) {
	peer, err := host.Connect(ctx, proxyURL)
	if err != nil {
		return nil, fmt.Errorf("client: connect to relay: %w", err)
	}

	setup, err := protocol.EncodeSetup(cfg)
	if err != nil {
		host.Close()
		return nil, fmt.Errorf("client: encode setup: %w", err)
	}
	if err := host.Send(peer, setupChannelID, setup, transport.Reliable); err != nil {
		host.Close()
		return nil, fmt.Errorf("client: send setup: %w", err)
	}

	mode := transport.Reliable
	if cfg.Kind == protocol.UDPKind {
		mode = transport.Unreliable
	}

	return &proxiedFacade{host: host, peer: peer, connectAt: time.Now(), mode: mode}, nil
}

// service drains every event currently queued on the host without
// blocking, updating connected/inbox/disconnected. Every public method
// calls this first, so state only ever advances from inside a user call —
// the cooperative contract spec §5 describes for the client.
func (p *proxiedFacade) service() error {
	if p.disconnected {
		return ErrDisconnected
	}
	for {
		select {
		case ev, ok := <-p.host.Events():
			if !ok {
				p.markDisconnected()
				return ErrDisconnected
			}
			if err := p.handleEvent(ev); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (p *proxiedFacade) handleEvent(ev transport.Event) error {
	if ev.Peer != p.peer {
		return nil
	}
	switch ev.Kind {
	case transport.EventDisconnect:
		p.markDisconnected()
		return ErrDisconnected

	case transport.EventReceive:
		if ev.ChannelID != setupChannelID {
			return nil
		}
		frame, err := protocol.Decode(ev.Data)
		if err != nil {
			p.markDisconnected()
			return ErrDisconnected
		}
		switch frame.Tag {
		case protocol.TagClose:
			p.markDisconnected()
			return ErrDisconnected
		case protocol.TagData:
			if !p.connected && len(frame.Body) == 0 {
				p.connected = true
			} else {
				p.inbox = append(p.inbox, frame.Body)
			}
		}
	}
	return nil
}

func (p *proxiedFacade) markDisconnected() {
	p.connected = false
	p.disconnected = true
	p.host.Disconnect(p.peer)
	p.host.Close()
}

func (p *proxiedFacade) Connected(timeout time.Duration) (bool, error) {
	if err := p.service(); err != nil {
		return false, err
	}
	if !p.connected && time.Since(p.connectAt) > timeout {
		p.markDisconnected()
		return false, ErrConnectTimeout
	}
	return p.connected, nil
}

func (p *proxiedFacade) Send(data []byte) error {
	if err := p.service(); err != nil {
		return err
	}
	if !p.connected {
		return ErrDisconnected
	}
	if err := p.host.Send(p.peer, setupChannelID, data, p.mode); err != nil {
		p.markDisconnected()
		return ErrDisconnected
	}
	return nil
}

func (p *proxiedFacade) Receive() ([]byte, error) {
	if err := p.service(); err != nil {
		return nil, err
	}
	if len(p.inbox) == 0 {
		return nil, nil
	}
	next := p.inbox[0]
	p.inbox = p.inbox[1:]
	return next, nil
}

func (p *proxiedFacade) Close() error {
	if p.disconnected {
		return nil
	}
	p.disconnected = true
	p.host.Disconnect(p.peer)
	return p.host.Close()
}
