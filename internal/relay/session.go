// Package relay implements the session supervisor: the relay's main loop
// over transport events, channel lifecycle, and the outbound framing scan.
package relay

import (
	"github.com/arlojin/sockbridge/internal/ratelimit"
	"github.com/arlojin/sockbridge/internal/transport"
	"github.com/arlojin/sockbridge/internal/util"
	"github.com/arlojin/sockbridge/internal/worker"
)

// channelOpenRPS and channelOpenBurst bound how fast one session may open
// new channels. Generous enough for a client opening many tabs/streams at
// once, tight enough to blunt a channel-id exhaustion attempt (a uint8
// channel-id allows only 256 channels per session).
const (
	channelOpenRPS   = 20
	channelOpenBurst = 10
)

// Channel is one logical target connection within a Session. mode picks
// which physical DataChannel its data frames travel over: TCP/Echo backends
// get the ordered/reliable channel, UDP backends get the unordered/
// unreliable one, matching the delivery guarantee of the backend itself
// instead of upgrading a lossy datagram socket to a reliable stream.
type Channel struct {
	worker *worker.Worker
	mode   transport.Reliability
}

// Session is one connected client: its channel-id → Channel map, the rate
// limiter guarding new channel creation, and a logger scoped to this peer.
type Session struct {
	channels map[uint8]*Channel
	limiter  *ratelimit.Limiter
	log      util.SessionLogger
}

func newSession(peer transport.PeerID) *Session {
	return &Session{
		channels: make(map[uint8]*Channel),
		limiter:  ratelimit.New(channelOpenRPS, channelOpenBurst),
		log:      util.NewSessionLogger(string(peer)),
	}
}
