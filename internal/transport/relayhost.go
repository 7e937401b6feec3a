package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"

	"github.com/arlojin/sockbridge/internal/signaling"
	"github.com/arlojin/sockbridge/internal/util"
)

var _ Host = (*RelayHost)(nil)

// RelayHost accepts any number of concurrent clients over a single
// WebSocket signaling server, giving each its own PeerConn. It implements
// Host; the relay's session supervisor reads Events() and never sees a
// signaling detail.
type RelayHost struct {
	ctx    context.Context
	cancel context.CancelFunc

	server *signaling.Server
	events chan Event

	mu    sync.Mutex
	peers map[PeerID]*PeerConn
}

// NewRelayHost starts a signaling server on addr (host:port, or ":0" for a
// random port) and begins accepting clients in the background. pin, if
// non-empty, is required as a query parameter on the signaling URL.
func NewRelayHost(ctx context.Context, addr, pin string) (*RelayHost, int, error) {
	hCtx, cancel := context.WithCancel(ctx)

	server := signaling.NewServer(pin)
	port, err := server.Start(addr)
	if err != nil {
		cancel()
		return nil, 0, fmt.Errorf("transport: start signaling server: %w", err)
	}

	h := &RelayHost{
		ctx:    hCtx,
		cancel: cancel,
		server: server,
		events: make(chan Event, 256),
		peers:  make(map[PeerID]*PeerConn),
	}

	go h.acceptLoop()

	return h, port, nil
}

func (h *RelayHost) acceptLoop() {
	for {
		select {
		case conn, ok := <-h.server.Accept():
			if !ok {
				return
			}
			go h.handleClient(conn)
		case <-h.ctx.Done():
			return
		}
	}
}

func (h *RelayHost) handleClient(wsConn *websocket.Conn) {
	defer wsConn.Close()

	id := PeerID(util.NewSessionID())
	peer, err := NewPeerConn(h.ctx, id, h.events)
	if err != nil {
		util.LogError("failed to create peer connection for %s: %v", id, err)
		return
	}

	h.mu.Lock()
	h.peers[id] = peer
	h.mu.Unlock()
	defer func() {
		h.mu.Lock()
		delete(h.peers, id)
		h.mu.Unlock()
	}()

	if err := answerExchange(wsConn, peer); err != nil {
		util.LogError("signaling with %s failed: %v", id, err)
		peer.Close()
		return
	}

	select {
	case h.events <- Event{Kind: EventConnect, Peer: id}:
	case <-h.ctx.Done():
		return
	}

	select {
	case <-peer.Done():
	case <-h.ctx.Done():
	}
}

// answerExchange performs the relay's (answerer) side of SDP/ICE exchange:
// receive the offer, send an answer, trickle ICE candidates both ways, and
// return once the DataChannels are open.
func answerExchange(wsConn *websocket.Conn, peer *PeerConn) error {
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

	errCh := make(chan error, 1)
	go func() {
		for {
			var msg signalMessage
			if err := wsConn.ReadJSON(&msg); err != nil {
				errCh <- err
				return
			}
			switch msg.Type {
			case signalOffer:
				if err := peer.SetRemoteDescription(webrtc.SessionDescription{
					Type: webrtc.SDPTypeOffer, SDP: msg.SDP,
				}); err != nil {
					util.LogDebug("SetRemoteDescription failed: %v", err)
					continue
				}
				answer, err := peer.CreateAnswer()
				if err != nil {
					util.LogDebug("CreateAnswer failed: %v", err)
					continue
				}
				if err := peer.SetLocalDescription(answer); err != nil {
					util.LogDebug("SetLocalDescription failed: %v", err)
					continue
				}
				wsSend(signalMessage{Type: signalAnswer, SDP: answer.SDP})

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
	}
}

// ---------------------------------------------------------------------------
// Host
// ---------------------------------------------------------------------------

func (h *RelayHost) Events() <-chan Event { return h.events }

func (h *RelayHost) Send(peer PeerID, channelID uint8, data []byte, mode Reliability) error {
	h.mu.Lock()
	p, ok := h.peers[peer]
	h.mu.Unlock()
	if !ok {
		return ErrPeerUnknown
	}
	return p.Send(channelID, data, mode)
}

func (h *RelayHost) Disconnect(peer PeerID) {
	h.mu.Lock()
	p, ok := h.peers[peer]
	delete(h.peers, peer)
	h.mu.Unlock()
	if ok {
		p.Close()
	}
}

func (h *RelayHost) Close() error {
	h.cancel()
	h.server.Close()

	h.mu.Lock()
	peers := make([]*PeerConn, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.peers = nil
	h.mu.Unlock()

	for _, p := range peers {
		p.Close()
	}
	return nil
}
