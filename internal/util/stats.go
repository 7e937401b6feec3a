package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"

	"github.com/arlojin/sockbridge/internal/protocol"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide traffic/channel counter.
var Stats = &stats{}

type stats struct {
	TotalChannels  atomic.Int64 // cumulative count of channels opened since process start
	ClosedChannels atomic.Int64 // cumulative count of channels closed since process start
	BytesSent      atomic.Int64 // cumulative bytes sent on a DataChannel (relay→client on the relay, client→relay on the client)
	BytesRecv      atomic.Int64 // cumulative bytes received on a DataChannel (client→relay on the relay, relay→client on the client)

	echoChannels atomic.Int64 // cumulative count of EchoKind channels opened
	tcpChannels  atomic.Int64 // cumulative count of TCPKind channels opened
	udpChannels  atomic.Int64 // cumulative count of UDPKind channels opened
}

// AddChannel records a newly opened channel, broken down by the backend
// kind its setup message selected — the teacher had only one connection
// kind to count, this relay fans out to Echo/TCP/UDP drivers.
func (s *stats) AddChannel(kind protocol.ChannelKind) {
	s.TotalChannels.Add(1)
	switch kind {
	case protocol.EchoKind:
		s.echoChannels.Add(1)
	case protocol.TCPKind:
		s.tcpChannels.Add(1)
	case protocol.UDPKind:
		s.udpChannels.Add(1)
	}
}

func (s *stats) RemoveChannel() { s.ClosedChannels.Add(1) }
func (s *stats) AddSent(n int)  { s.BytesSent.Add(int64(n)) }
func (s *stats) AddRecv(n int)  { s.BytesRecv.Add(int64(n)) }

// ByKind returns the cumulative channel-open counts per backend kind.
func (s *stats) ByKind() (echo, tcp, udp int64) {
	return s.echoChannels.Load(), s.tcpChannels.Load(), s.udpChannels.Load()
}

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that checks tunnel statistics
// every 10 seconds and logs them when the interval opened or closed a
// channel or moved more than 10 B/s either way. It stops when ctx is
// cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevRecv, prevTotal, prevClosed int64
		for {
			select {
			case <-ticker.C:
				total := Stats.TotalChannels.Load()
				closed := Stats.ClosedChannels.Load()
				sent := Stats.BytesSent.Load()
				recv := Stats.BytesRecv.Load()

				inS := float64(sent-prevSent) / 10.0
				outS := float64(recv-prevRecv) / 10.0
				inC := total - prevTotal
				outC := closed - prevClosed

				if inC > 0 || outC > 0 || inS > 10 || outS > 10 {
					echo, tcp, udp := Stats.ByKind()
					pterm.DefaultLogger.Info(formatStats(inS, outS, inC, outC, echo, tcp, udp))
				}

				prevSent = sent
				prevRecv = recv
				prevTotal = total
				prevClosed = closed

			case <-ctx.Done():
				return
			}
		}
	}()
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// formatBytes formats a byte count into a human-readable string with fixed width (exactly 8 chars)
// for example: "99.0   B", " 1.5 KiB", " 0.1 MiB", "98.9 GiB", etc.
func formatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatStats returns a formatted string of the current stats for display
// in the logger: throughput, channels opened/closed this interval, and the
// lifetime breakdown by backend kind.
func formatStats(inS, outS float64, inC, outC, echo, tcp, udp int64) string {
	return fmt.Sprintf("In: %s/s | Out: %s/s | Chan: %2d↑ %2d↓ | Echo:%d Tcp:%d Udp:%d",
		formatBytes(inS),
		formatBytes(outS),
		inC,
		outC,
		echo,
		tcp,
		udp,
	)
}
