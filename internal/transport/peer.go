package transport

import (
	"github.com/pion/webrtc/v4"
)

// STUN servers for ICE candidate gathering. No TURN — the tool is designed
// for direct P2P connectivity with zero infrastructure cost.
var stunServers = []string{
	"stun:stun.l.google.com:19302",
	"stun:stun1.l.google.com:19302",
}

// newPeerConnection creates a PeerConnection configured with Google STUN servers.
func newPeerConnection() (*webrtc.PeerConnection, error) {
	config := webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{URLs: stunServers},
		},
	}
	return webrtc.NewPeerConnection(config)
}

// Pre-negotiated DataChannel IDs. Both sides create these independently
// instead of relying on OnDataChannel, so the exchange never races a
// handshake against the other side's CreateDataChannel call.
const (
	reliableChannelID   = uint16(0)
	unreliableChannelID = uint16(1)
)

// newDataChannels creates the pair of pre-negotiated DataChannels every peer
// connection carries: one ordered/reliable (SCTP default) for TCP-shaped and
// control traffic (including echo channels), one unordered with zero
// retransmits for UDP channels' data frames. Many logical channel-ids are multiplexed over these two
// physical channels by a one-byte prefix (see peerconn.go).
func newDataChannels(pc *webrtc.PeerConnection) (reliable, unreliable *webrtc.DataChannel, err error) {
	negotiated := true

	ordered := true
	reliable, err = pc.CreateDataChannel("reliable", &webrtc.DataChannelInit{
		Ordered:    &ordered,
		Negotiated: &negotiated,
		ID:         idPtr(reliableChannelID),
	})
	if err != nil {
		return nil, nil, err
	}

	unordered := false
	maxRetransmits := uint16(0)
	unreliable, err = pc.CreateDataChannel("unreliable", &webrtc.DataChannelInit{
		Ordered:        &unordered,
		Negotiated:     &negotiated,
		ID:             idPtr(unreliableChannelID),
		MaxRetransmits: &maxRetransmits,
	})
	if err != nil {
		return nil, nil, err
	}

	return reliable, unreliable, nil
}

func idPtr(id uint16) *uint16 { return &id }
