package relay

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// mockHost is a minimal in-process transport.Host for driving the
// supervisor directly, without any real WebRTC or network I/O. It records
// every Send so tests can assert on the frames the supervisor produced.
type mockHost struct {
	events chan transport.Event

	mu   sync.Mutex
	sent []sentFrame
}

type sentFrame struct {
	peer      transport.PeerID
	channelID uint8
	data      []byte
	mode      transport.Reliability
}

func newMockHost() *mockHost {
	return &mockHost{events: make(chan transport.Event, 64)}
}

func (m *mockHost) Events() <-chan transport.Event { return m.events }

func (m *mockHost) Send(peer transport.PeerID, channelID uint8, data []byte, mode transport.Reliability) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	m.sent = append(m.sent, sentFrame{peer, channelID, cp, mode})
	return nil
}

func (m *mockHost) Disconnect(transport.PeerID) {}
func (m *mockHost) Close() error                { return nil }

func (m *mockHost) framesFor(peer transport.PeerID, channelID uint8) []sentFrame {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sentFrame
	for _, f := range m.sent {
		if f.peer == peer && f.channelID == channelID {
			out = append(out, f)
		}
	}
	return out
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never became true")
}

func TestSupervisorEchoHandshakeAndData(t *testing.T) {
	host := newMockHost()
	sup := NewSupervisor(host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	peer := transport.PeerID("peer-1")
	host.events <- transport.Event{Kind: transport.EventConnect, Peer: peer}

	setup, err := protocol.EncodeSetup(protocol.ChannelConfig{Kind: protocol.EchoKind})
	if err != nil {
		t.Fatal(err)
	}
	host.events <- transport.Event{Kind: transport.EventReceive, Peer: peer, ChannelID: 5, Data: setup}

	waitFor(t, func() bool { return len(host.framesFor(peer, 5)) >= 1 })

	frames := host.framesFor(peer, 5)
	ack, err := protocol.Decode(frames[0].data)
	if err != nil || ack.Tag != protocol.TagData || len(ack.Body) != 0 {
		t.Fatalf("first frame = %+v, err=%v, want empty data (handshake ack)", ack, err)
	}

	host.events <- transport.Event{Kind: transport.EventReceive, Peer: peer, ChannelID: 5, Data: []byte("ping")}

	waitFor(t, func() bool { return len(host.framesFor(peer, 5)) >= 2 })

	frames = host.framesFor(peer, 5)
	echoed, err := protocol.Decode(frames[1].data)
	if err != nil || echoed.Tag != protocol.TagData || string(echoed.Body) != "ping" {
		t.Fatalf("second frame = %+v, err=%v, want data ping", echoed, err)
	}
}

func TestSupervisorMalformedSetupClosesChannel(t *testing.T) {
	host := newMockHost()
	sup := NewSupervisor(host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	peer := transport.PeerID("peer-2")
	host.events <- transport.Event{Kind: transport.EventConnect, Peer: peer}
	host.events <- transport.Event{Kind: transport.EventReceive, Peer: peer, ChannelID: 9, Data: []byte("not json")}

	waitFor(t, func() bool { return len(host.framesFor(peer, 9)) >= 1 })

	frame, err := protocol.Decode(host.framesFor(peer, 9)[0].data)
	if err != nil || frame.Tag != protocol.TagClose {
		t.Fatalf("frame = %+v, err=%v, want close", frame, err)
	}
}

func TestSupervisorDisconnectRemovesSession(t *testing.T) {
	host := newMockHost()
	sup := NewSupervisor(host)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sup.Run(ctx)

	peer := transport.PeerID("peer-3")
	host.events <- transport.Event{Kind: transport.EventConnect, Peer: peer}

	setup, err := protocol.EncodeSetup(protocol.ChannelConfig{Kind: protocol.EchoKind})
	if err != nil {
		t.Fatal(err)
	}
	host.events <- transport.Event{Kind: transport.EventReceive, Peer: peer, ChannelID: 1, Data: setup}
	waitFor(t, func() bool { return len(host.framesFor(peer, 1)) >= 1 })

	host.events <- transport.Event{Kind: transport.EventDisconnect, Peer: peer}

	// A disconnected session has been removed, so any further Receive for it
	// is a no-op: no new frame ever appears on a fresh channel-id.
	host.events <- transport.Event{Kind: transport.EventReceive, Peer: peer, ChannelID: 2, Data: []byte("ignored")}
	time.Sleep(50 * time.Millisecond)
	if frames := host.framesFor(peer, 2); len(frames) != 0 {
		t.Fatalf("expected no frames on channel 2 after disconnect, got %v", frames)
	}
}
