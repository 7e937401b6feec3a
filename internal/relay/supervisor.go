package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/arlojin/sockbridge/internal/driver"
	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
	"github.com/arlojin/sockbridge/internal/util"
	"github.com/arlojin/sockbridge/internal/worker"
)

const tick = 10 * time.Millisecond

// Supervisor is the relay's single-goroutine main loop. It owns every
// Session and Channel; only Run's goroutine ever touches those maps, so no
// locking is needed there — the workers it spawns only ever touch their own
// queues.
type Supervisor struct {
	host transport.Host

	sessions map[transport.PeerID]*Session
}

// NewSupervisor wraps host. Call Run to start servicing events.
func NewSupervisor(host transport.Host) *Supervisor {
	return &Supervisor{
		host:     host,
		sessions: make(map[transport.PeerID]*Session),
	}
}

// Run drains host.Events() and performs the outbound scan every tick. It
// returns when ctx is cancelled, after tearing down every session.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return

		case ev, ok := <-s.host.Events():
			if !ok {
				s.shutdown()
				return
			}
			s.handleEvent(ev)

		case <-ticker.C:
			s.outboundScan()
		}
	}
}

func (s *Supervisor) handleEvent(ev transport.Event) {
	switch ev.Kind {
	case transport.EventConnect:
		s.onConnect(ev.Peer)
	case transport.EventDisconnect:
		s.onDisconnect(ev.Peer)
	case transport.EventReceive:
		s.onReceive(ev.Peer, ev.ChannelID, ev.Data)
	}
}

func (s *Supervisor) onConnect(peer transport.PeerID) {
	sess := newSession(peer)
	sess.log.Info("connected")
	s.sessions[peer] = sess
}

func (s *Supervisor) onDisconnect(peer transport.PeerID) {
	sess, ok := s.sessions[peer]
	if !ok {
		return
	}
	for _, ch := range sess.channels {
		ch.worker.Close()
	}
	delete(s.sessions, peer)
	sess.log.Info("disconnected")
}

func (s *Supervisor) onReceive(peer transport.PeerID, channelID uint8, data []byte) {
	sess, ok := s.sessions[peer]
	if !ok {
		return
	}

	if ch, ok := sess.channels[channelID]; ok {
		if !ch.worker.Push(data) {
			sess.log.Channel(channelID).Warning("worker dead, closing")
			s.replyClose(peer, channelID)
		}
		return
	}

	s.openChannel(peer, sess, channelID, data)
}

func (s *Supervisor) openChannel(peer transport.PeerID, sess *Session, channelID uint8, setup []byte) {
	if !sess.limiter.Allow() {
		sess.log.Channel(channelID).Warning("exceeded channel-open rate, rejecting")
		s.replyClose(peer, channelID)
		return
	}

	cfg, err := protocol.DecodeSetup(setup)
	if err != nil {
		sess.log.Channel(channelID).Warning("sent malformed setup: %v", err)
		s.replyClose(peer, channelID)
		return
	}

	d, err := newDriver(cfg)
	if err != nil {
		sess.log.Channel(channelID).Warning("driver creation failed: %v", err)
		s.replyClose(peer, channelID)
		return
	}

	mode := transport.Reliable
	if cfg.Kind == protocol.UDPKind {
		mode = transport.Unreliable
	}
	sess.channels[channelID] = &Channel{worker: worker.Start(d), mode: mode}
	util.Stats.AddChannel(cfg.Kind)
	sess.log.Channel(channelID).Debug("opened (%s)", cfg.Kind)
}

func newDriver(cfg protocol.ChannelConfig) (driver.Driver, error) {
	switch cfg.Kind {
	case protocol.EchoKind:
		return driver.NewEchoDriver(), nil
	case protocol.TCPKind:
		return driver.NewTCPDriver(cfg.Addr)
	case protocol.UDPKind:
		return driver.NewUDPDriver(cfg.Addr)
	default:
		return nil, fmt.Errorf("relay: unknown channel kind %q", cfg.Kind)
	}
}

// replyClose sends a close frame on channelID, disconnecting the peer
// entirely if even that fails.
func (s *Supervisor) replyClose(peer transport.PeerID, channelID uint8) {
	if err := s.host.Send(peer, channelID, protocol.EncodeClose(), transport.Reliable); err != nil {
		util.LogWarning("session %s unreachable, disconnecting: %v", peer, err)
		s.host.Disconnect(peer)
	}
}

// outboundScan drains every live channel's outbound queue once, in frame
// order, and reaps any channel whose worker has died or whose send failed.
func (s *Supervisor) outboundScan() {
	for peer, sess := range s.sessions {
		var dead []uint8

		for id, ch := range sess.channels {
			if s.drainChannel(peer, id, ch) {
				dead = append(dead, id)
			}
		}

		for _, id := range dead {
			sess.channels[id].worker.Close()
			delete(sess.channels, id)
			util.Stats.RemoveChannel()
		}
	}
}

// drainChannel drains one channel's outbound queue and reports whether the
// channel should be reaped.
func (s *Supervisor) drainChannel(peer transport.PeerID, id uint8, ch *Channel) bool {
	for {
		select {
		case payload, ok := <-ch.worker.Outbound:
			if !ok {
				s.replyClose(peer, id)
				return true
			}
			if err := s.host.Send(peer, id, protocol.EncodeData(payload), ch.mode); err != nil {
				s.replyClose(peer, id)
				return true
			}
		default:
			return false
		}
	}
}

func (s *Supervisor) shutdown() {
	for peer := range s.sessions {
		s.onDisconnect(peer)
	}
}
