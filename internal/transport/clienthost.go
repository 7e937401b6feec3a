package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/arlojin/sockbridge/internal/util"
)

var _ ClientHost = (*ClientHostImpl)(nil)

// ClientHostImpl dials a single relay over WebSocket signaling and keeps a
// single PeerConn. It implements ClientHost.
type ClientHostImpl struct {
	ctx    context.Context
	cancel context.CancelFunc

	events chan Event

	mu   sync.Mutex
	peer *PeerConn
}

// NewClientHost constructs a ClientHostImpl; call Connect to perform
// signaling and establish the peer connection.
func NewClientHost(ctx context.Context) *ClientHostImpl {
	cCtx, cancel := context.WithCancel(ctx)
	return &ClientHostImpl{
		ctx:    cCtx,
		cancel: cancel,
		events: make(chan Event, 256),
	}
}

// Connect dials serverURL over WebSocket, performs the offerer side of
// SDP/ICE exchange, and blocks until both DataChannels are open.
func (c *ClientHostImpl) Connect(ctx context.Context, serverURL string) (PeerID, error) {
	wsConn, _, err := websocket.DefaultDialer.DialContext(ctx, serverURL, nil)
	if err != nil {
		return "", fmt.Errorf("transport: dial signaling server: %w", err)
	}

	id := PeerID(util.NewSessionID())
	peer, err := NewPeerConn(c.ctx, id, c.events)
	if err != nil {
		wsConn.Close()
		return "", fmt.Errorf("transport: create peer connection: %w", err)
	}

	if err := offerExchange(ctx, wsConn, peer); err != nil {
		wsConn.Close()
		peer.Close()
		return "", fmt.Errorf("transport: signaling exchange: %w", err)
	}
	wsConn.Close()

	c.mu.Lock()
	c.peer = peer
	c.mu.Unlock()

	go func() {
		<-peer.Done()
		select {
		case c.events <- Event{Kind: EventDisconnect, Peer: id}:
		case <-c.ctx.Done():
		}
	}()

	return id, nil
}

// offerExchange performs the client's (offerer) side of SDP/ICE exchange:
// send an offer, receive the answer, trickle ICE candidates both ways, and
// return once the DataChannels are open or ctx is done.
func offerExchange(ctx context.Context, wsConn *websocket.Conn, peer *PeerConn) error {
	var wsMu sync.Mutex
	wsSend := func(msg signalMessage) {
		wsMu.Lock()
		defer wsMu.Unlock()
		if err := wsConn.WriteJSON(msg); err != nil {
			select {
			case <-peer.Ready():
			default:
				util.LogDebug("signaling send failed: %v", err)
			}
		}
	}

	peer.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		data, _ := json.Marshal(c.ToJSON())
		wsSend(signalMessage{Type: signalCandidate, Candidate: string(data)})
	})

	offer, err := peer.CreateOffer()
	if err != nil {
		return fmt.Errorf("CreateOffer: %w", err)
	}
	if err := peer.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("SetLocalDescription: %w", err)
	}
	wsSend(signalMessage{Type: signalOffer, SDP: offer.SDP})

	errCh := make(chan error, 1)
	go func() {
		for {
			var msg signalMessage
			if err := wsConn.ReadJSON(&msg); err != nil {
				errCh <- err
				return
			}
			switch msg.Type {
			case signalAnswer:
				if err := peer.SetRemoteDescription(webrtc.SessionDescription{
					Type: webrtc.SDPTypeAnswer, SDP: msg.SDP,
				}); err != nil {
					util.LogDebug("SetRemoteDescription failed: %v", err)
				}
			case signalCandidate:
				var init webrtc.ICECandidateInit
				if err := json.Unmarshal([]byte(msg.Candidate), &init); err == nil {
					if err := peer.AddICECandidate(init); err != nil {
						util.LogDebug("AddICECandidate failed: %v", err)
					}
				}
			}
		}
	}()

	select {
	case <-peer.Ready():
		return nil
	case err := <-errCh:
		select {
		case <-peer.Ready():
			return nil
		default:
			return fmt.Errorf("signaling read: %w", err)
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ---------------------------------------------------------------------------
// Host
// ---------------------------------------------------------------------------

func (c *ClientHostImpl) Events() <-chan Event { return c.events }

func (c *ClientHostImpl) Send(peer PeerID, channelID uint8, data []byte, mode Reliability) error {
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p == nil || p.ID() != peer {
		return ErrPeerUnknown
	}
	return p.Send(channelID, data, mode)
}

func (c *ClientHostImpl) Disconnect(peer PeerID) {
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p != nil && p.ID() == peer {
		p.Close()
	}
}

func (c *ClientHostImpl) Close() error {
	c.cancel()
	c.mu.Lock()
	p := c.peer
	c.mu.Unlock()
	if p != nil {
		return p.Close()
	}
	return nil
}
