package client

import (
	"context"
	"math/rand/v2"
	"net"
	"testing"
	"time"

	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/transport"
)

// fakeHost is a minimal in-process transport.ClientHost. It behaves like a
// mock half of a linked transport pair: everything sent through Send can be
// fed back to the façade via events, after a random jitter, mirroring how
// the old adapter tests in this repo modeled the underlying link.
type fakeHost struct {
	events chan transport.Event
	peer   transport.PeerID
	closed bool

	// onSend, if set, is invoked synchronously for every Send call so a
	// test can script a simulated relay's response.
	onSend func(channelID uint8, data []byte)
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		events: make(chan transport.Event, 64),
		peer:   transport.PeerID("relay-peer"),
	}
}

func (h *fakeHost) Connect(ctx context.Context, url string) (transport.PeerID, error) {
	return h.peer, nil
}

func (h *fakeHost) Events() <-chan transport.Event { return h.events }

func (h *fakeHost) Send(peer transport.PeerID, channelID uint8, data []byte, mode transport.Reliability) error {
	if h.closed {
		return transport.ErrHostClosed
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	if h.onSend != nil {
		h.onSend(channelID, cp)
	}
	return nil
}

func (h *fakeHost) Disconnect(transport.PeerID) {}

func (h *fakeHost) Close() error {
	h.closed = true
	return nil
}

// deliver schedules an event after a random sub-50ms jitter, so tests never
// rely on same-tick delivery ordering.
func (h *fakeHost) deliver(ev transport.Event) {
	go func() {
		time.Sleep(time.Duration(rand.IntN(50)) * time.Millisecond)
		h.events <- ev
	}()
}

func waitUntil(t *testing.T, cond func() bool) {
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

func TestProxiedHandshakeAndReceive(t *testing.T) {
	host := newFakeHost()
	host.onSend = func(channelID uint8, data []byte) {
		if channelID != setupChannelID {
			return
		}
		// First send is the setup message; ack it, then push one payload.
		host.deliver(transport.Event{Kind: transport.EventReceive, Peer: host.peer, ChannelID: setupChannelID, Data: protocol.EncodeData(nil)})
		host.deliver(transport.Event{Kind: transport.EventReceive, Peer: host.peer, ChannelID: setupChannelID, Data: protocol.EncodeData([]byte("pong"))})
	}

	p, err := dialProxied(context.Background(), host, "wss://example.test/ws", protocol.ChannelConfig{Kind: protocol.TCPKind, Addr: "1.2.3.4:80"})
	if err != nil {
		t.Fatalf("dialProxied: %v", err)
	}

	waitUntil(t, func() bool {
		ok, err := p.Connected(time.Second)
		return err == nil && ok
	})

	var got []byte
	waitUntil(t, func() bool {
		b, err := p.Receive()
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if b != nil {
			got = b
			return true
		}
		return false
	})
	if string(got) != "pong" {
		t.Fatalf("Receive = %q, want %q", got, "pong")
	}
}

func TestProxiedCloseFrameDisconnects(t *testing.T) {
	host := newFakeHost()
	host.onSend = func(channelID uint8, data []byte) {
		host.deliver(transport.Event{Kind: transport.EventReceive, Peer: host.peer, ChannelID: setupChannelID, Data: protocol.EncodeClose()})
	}

	p, err := dialProxied(context.Background(), host, "wss://example.test/ws", protocol.ChannelConfig{Kind: protocol.EchoKind})
	if err != nil {
		t.Fatalf("dialProxied: %v", err)
	}

	waitUntil(t, func() bool {
		_, err := p.Connected(time.Second)
		return err == ErrDisconnected
	})

	if _, err := p.Receive(); err != ErrDisconnected {
		t.Fatalf("Receive after close = %v, want ErrDisconnected", err)
	}
	if err := p.Send([]byte("x")); err != ErrDisconnected {
		t.Fatalf("Send after close = %v, want ErrDisconnected", err)
	}
}

func TestProxiedConnectTimeout(t *testing.T) {
	host := newFakeHost() // never acks

	p, err := dialProxied(context.Background(), host, "wss://example.test/ws", protocol.ChannelConfig{Kind: protocol.EchoKind})
	if err != nil {
		t.Fatalf("dialProxied: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	var gotErr error
	for time.Now().Before(deadline) {
		_, gotErr = p.Connected(30 * time.Millisecond)
		if gotErr != nil {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if gotErr != ErrConnectTimeout {
		t.Fatalf("Connected after timeout = %v, want ErrConnectTimeout", gotErr)
	}
	if _, err := p.Connected(time.Second); err != ErrDisconnected {
		t.Fatalf("Connected after timeout teardown = %v, want ErrDisconnected", err)
	}
}

func TestDirectTCPEcho(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 4096)
		n, err := conn.Read(buf)
		if err != nil {
			return
		}
		conn.Write(buf[:n])
	}()

	stream, err := DialTCP(context.Background(), ln.Addr().String(), "")
	if err != nil {
		t.Fatalf("DialTCP: %v", err)
	}
	defer stream.Close()

	ok, err := stream.Connected(time.Second)
	if err != nil || !ok {
		t.Fatalf("Connected = %v, %v, want true, nil", ok, err)
	}

	if err := stream.Send([]byte("ping")); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var got []byte
	waitUntil(t, func() bool {
		b, err := stream.Receive()
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if b != nil {
			got = b
			return true
		}
		return false
	})
	if string(got) != "ping" {
		t.Fatalf("Receive = %q, want %q", got, "ping")
	}
}
