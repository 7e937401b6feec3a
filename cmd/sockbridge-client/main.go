// sockbridge-client is a smoke-test harness for the client adapter: it
// drives one TcpStream/UdpSocket façade against a relay, piping stdin to
// the target and the target's replies to stdout. It is not a general
// purpose proxy front-end (no SOCKS5/HTTP-CONNECT).
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/arlojin/sockbridge/internal/client"
	"github.com/arlojin/sockbridge/internal/config"
	"github.com/arlojin/sockbridge/internal/protocol"
	"github.com/arlojin/sockbridge/internal/util"
)

// stream is the common shape of client.TcpStream, client.UdpSocket, and
// client.Stream — the CLI only ever needs this much of any of them.
type stream interface {
	Connected(timeout time.Duration) (bool, error)
	Send(data []byte) error
	Receive() ([]byte, error)
	Close() error
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	relayURL := flag.String("relay", "", "relay signaling URL")
	target := flag.String("target", "", "target spec: tcp://host:port, udp://host:port, or echo://")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		util.EnableDebug()
	}

	if *relayURL == "" || *target == "" {
		util.LogError("usage: sockbridge-client -relay <signaling-url> -target <tcp://host:port|udp://host:port|echo://>")
		os.Exit(1)
	}

	cfg, err := config.ParseTarget(*target)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	s, err := dial(ctx, *relayURL, cfg)
	if err != nil {
		util.LogError("dial failed: %v", err)
		os.Exit(1)
	}
	defer s.Close()

	if ok, err := waitConnected(s, 10*time.Second); err != nil || !ok {
		util.LogError("connect failed: %v", err)
		os.Exit(1)
	}
	util.LogSuccess("channel open to %s", *target)

	done := make(chan struct{})
	var closeOnce sync.Once
	finish := func() { closeOnce.Do(func() { close(done) }) }

	go pumpStdinToTarget(s, done, finish)
	go pumpTargetToStdout(s, done, finish)

	select {
	case <-done:
	case <-ctx.Done():
	}
}

func dial(ctx context.Context, relayURL string, cfg protocol.ChannelConfig) (stream, error) {
	switch cfg.Kind {
	case protocol.TCPKind:
		return client.DialTCP(ctx, cfg.Addr, relayURL)
	case protocol.UDPKind:
		return client.DialUDP(ctx, cfg.Addr, relayURL)
	default:
		return client.Dial(ctx, relayURL, cfg)
	}
}

func waitConnected(s stream, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := s.Connected(timeout)
		if err != nil || ok {
			return ok, err
		}
		if time.Now().After(deadline) {
			return false, fmt.Errorf("timed out waiting for handshake")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func pumpStdinToTarget(s stream, done <-chan struct{}, finish func()) {
	reader := bufio.NewReader(os.Stdin)
	buf := make([]byte, 4095)
	for {
		n, err := reader.Read(buf)
		if n > 0 {
			if sendErr := s.Send(buf[:n]); sendErr != nil {
				util.LogError("send failed: %v", sendErr)
				finish()
				return
			}
		}
		if err != nil {
			if err != io.EOF {
				util.LogError("stdin read failed: %v", err)
			}
			finish()
			return
		}
	}
}

func pumpTargetToStdout(s stream, done <-chan struct{}, finish func()) {
	for {
		select {
		case <-done:
			return
		default:
		}

		data, err := s.Receive()
		if err != nil {
			util.LogError("channel closed: %v", err)
			finish()
			return
		}
		if data == nil {
			time.Sleep(10 * time.Millisecond)
			continue
		}
		os.Stdout.Write(data)
	}
}
