package transport

// signalMessageType identifies the kind of SDP/ICE message exchanged over
// the raw WebSocket connection the signaling package hands back. This
// belongs to transport, not the signaling package: signaling only accepts
// or dials the socket, while offerExchange/answerExchange here are what
// actually speak this wire format.
type signalMessageType string

const (
	signalOffer     signalMessageType = "offer"
	signalAnswer    signalMessageType = "answer"
	signalCandidate signalMessageType = "candidate"
)

// signalMessage is the JSON structure carried over that socket during the
// handshake.
type signalMessage struct {
	Type      signalMessageType `json:"type"`
	SDP       string            `json:"sdp,omitempty"`
	Candidate string            `json:"candidate,omitempty"` // JSON-encoded ICECandidateInit
}
