package transport

import (
	"context"
	"errors"
	"sync"

	"github.com/arlojin/sockbridge/internal/util"
	"github.com/pion/webrtc/v4"
)

// PeerConn wraps one PeerConnection and its two pre-negotiated DataChannels
// (reliable + unreliable), multiplexing many logical channel-ids over them
// by prefixing every message with a one-byte channel-id. Both RelayHost and
// ClientHost are built from one or more PeerConns; PeerConn itself knows
// nothing about sessions, drivers, or the wire protocol above the frame
// layer — it only demultiplexes by channel-id and reports Events.
type PeerConn struct {
	id PeerID
	pc *webrtc.PeerConnection

	reliable   *webrtc.DataChannel
	unreliable *webrtc.DataChannel

	reliableSender   *dcSender
	unreliableSender *dcSender

	openSignal chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	pcState webrtc.PeerConnectionState
}

// NewPeerConn creates a PeerConn backed by a new PeerConnection and both
// pre-negotiated DataChannels, and wires inbound messages onto events.
// Caller performs signaling via CreateOffer/CreateAnswer/... and waits on
// Ready() before calling Send.
func NewPeerConn(ctx context.Context, id PeerID, events chan<- Event) (*PeerConn, error) {
	pc, err := newPeerConnection()
	if err != nil {
		return nil, err
	}

	reliable, unreliable, err := newDataChannels(pc)
	if err != nil {
		pc.Close()
		return nil, err
	}

	pCtx, cancel := context.WithCancel(ctx)

	p := &PeerConn{
		id:         id,
		pc:         pc,
		reliable:   reliable,
		unreliable: unreliable,
		openSignal: make(chan struct{}),
		ctx:        pCtx,
		cancel:     cancel,
		pcState:    webrtc.PeerConnectionStateNew,
	}

	var openMu sync.Mutex
	var openOnce sync.Once
	reliableOpen, unreliableOpen := false, false
	checkOpen := func() {
		openMu.Lock()
		ready := reliableOpen && unreliableOpen
		openMu.Unlock()
		if ready {
			openOnce.Do(func() { close(p.openSignal) })
		}
	}
	reliable.OnOpen(func() {
		openMu.Lock()
		reliableOpen = true
		openMu.Unlock()
		checkOpen()
	})
	unreliable.OnOpen(func() {
		openMu.Lock()
		unreliableOpen = true
		openMu.Unlock()
		checkOpen()
	})

	var closeOnce sync.Once
	onClose := func() {
		closeOnce.Do(func() {
			util.LogDebug("peer %s DataChannel closed", id)
			cancel()
			select {
			case events <- Event{Kind: EventDisconnect, Peer: id}:
			default:
			}
		})
	}
	reliable.OnClose(onClose)
	unreliable.OnClose(onClose)

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		util.LogDebug("peer %s connection state: %s", id, state)
		p.mu.Lock()
		p.pcState = state
		p.mu.Unlock()
	})

	relay := func(dc *webrtc.DataChannel) {
		dc.OnMessage(func(msg webrtc.DataChannelMessage) {
			p.onMessage(events, msg.Data)
		})
	}
	relay(reliable)
	relay(unreliable)

	p.reliableSender = newDCSender(pCtx, reliable, p.openSignal)
	p.unreliableSender = newDCSender(pCtx, unreliable, p.openSignal)

	return p, nil
}

func (p *PeerConn) onMessage(events chan<- Event, data []byte) {
	if len(data) == 0 {
		return
	}
	util.Stats.AddRecv(len(data))

	channelID := data[0]
	body := make([]byte, len(data)-1)
	copy(body, data[1:])

	select {
	case events <- Event{Kind: EventReceive, Peer: p.id, ChannelID: channelID, Data: body}:
	case <-p.ctx.Done():
	}
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// ID returns the PeerID this PeerConn was constructed with.
func (p *PeerConn) ID() PeerID { return p.id }

// Ready returns a channel closed once both DataChannels are open.
func (p *PeerConn) Ready() <-chan struct{} { return p.openSignal }

// Done returns a channel closed once the PeerConn has shut down.
func (p *PeerConn) Done() <-chan struct{} { return p.ctx.Done() }

// Close tears down both DataChannels and the PeerConnection.
func (p *PeerConn) Close() error {
	p.cancel()
	return errors.Join(p.reliable.Close(), p.unreliable.Close(), p.pc.Close())
}

// ConnectionState returns the last observed PeerConnection state.
func (p *PeerConn) ConnectionState() webrtc.PeerConnectionState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.pcState
}

// ---------------------------------------------------------------------------
// Signaling
// ---------------------------------------------------------------------------

func (p *PeerConn) CreateOffer() (webrtc.SessionDescription, error)  { return p.pc.CreateOffer(nil) }
func (p *PeerConn) CreateAnswer() (webrtc.SessionDescription, error) { return p.pc.CreateAnswer(nil) }

func (p *PeerConn) SetLocalDescription(sdp webrtc.SessionDescription) error {
	return p.pc.SetLocalDescription(sdp)
}

func (p *PeerConn) SetRemoteDescription(sdp webrtc.SessionDescription) error {
	return p.pc.SetRemoteDescription(sdp)
}

// OnICECandidate registers a callback invoked whenever a new local ICE
// candidate is gathered. A nil candidate signals the end of gathering.
func (p *PeerConn) OnICECandidate(fn func(*webrtc.ICECandidate)) {
	p.pc.OnICECandidate(fn)
}

// AddICECandidate adds a remote ICE candidate received through signaling.
func (p *PeerConn) AddICECandidate(candidate webrtc.ICECandidateInit) error {
	return p.pc.AddICECandidate(candidate)
}

// ---------------------------------------------------------------------------
// Data
// ---------------------------------------------------------------------------

// Send transmits data on channelID over the DataChannel matching mode.
func (p *PeerConn) Send(channelID uint8, data []byte, mode Reliability) error {
	frame := make([]byte, 1+len(data))
	frame[0] = channelID
	copy(frame[1:], data)

	if mode == Reliable {
		return p.reliableSender.send(p.ctx, frame)
	}
	return p.unreliableSender.send(p.ctx, frame)
}
