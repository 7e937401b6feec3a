package transport

import (
	"context"

	"github.com/arlojin/sockbridge/internal/util"
	"github.com/pion/webrtc/v4"
)

const (
	highWaterMark  = 256 * 1024 // pause sending when bufferedAmount exceeds this
	lowWaterMark   = 64 * 1024  // resume sending when bufferedAmount drops below this
	sendBufferSize = 64         // outgoing frame channel capacity
)

// dcSender is a goroutine-based frame writer that serializes all writes to a
// single DataChannel, adding open-gate and backpressure control. Frames are
// already-multiplexed bytes (channel-id prefix + payload); dcSender knows
// nothing about their structure.
type dcSender struct {
	inbox       chan []byte
	drainSignal chan struct{}
}

// newDCSender creates a dcSender, wires the backpressure callbacks on dc, and
// starts the background loop. The loop exits when ctx is cancelled.
func newDCSender(ctx context.Context, dc *webrtc.DataChannel, openSignal <-chan struct{}) *dcSender {
	s := &dcSender{
		inbox:       make(chan []byte, sendBufferSize),
		drainSignal: make(chan struct{}, 1),
	}

	dc.SetBufferedAmountLowThreshold(uint64(lowWaterMark))
	dc.OnBufferedAmountLow(func() {
		select {
		case s.drainSignal <- struct{}{}:
		default:
		}
	})

	go s.loop(ctx, dc, openSignal)

	return s
}

// loop is the single-writer goroutine. It waits for the DataChannel to open,
// then drains the inbox with backpressure awareness.
func (s *dcSender) loop(ctx context.Context, dc *webrtc.DataChannel, openSignal <-chan struct{}) {
	select {
	case <-openSignal:
	case <-ctx.Done():
		return
	}

	for {
		select {
		case frame := <-s.inbox:
			if dc.BufferedAmount() > uint64(highWaterMark) {
				select {
				case <-s.drainSignal:
				case <-ctx.Done():
					return
				}
			}

			if err := dc.Send(frame); err != nil {
				util.LogError("failed to send on %s: %v", dc.Label(), err)
				return
			}

			util.Stats.AddSent(len(frame))
		case <-ctx.Done():
			return
		}
	}
}

// send enqueues a frame for transmission. It returns ErrHostClosed without
// sending if ctx is already cancelled.
func (s *dcSender) send(ctx context.Context, frame []byte) error {
	if ctx.Err() != nil {
		return ErrHostClosed
	}
	select {
	case s.inbox <- frame:
		return nil
	case <-ctx.Done():
		return ErrHostClosed
	}
}
