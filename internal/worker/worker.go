// Package worker runs the per-channel forwarding loop: one goroutine per
// channel, polling its driver roughly every 10ms and shuttling payloads
// through a pair of single-producer/single-consumer queues shared with the
// session supervisor.
package worker

import (
	"sync"
	"time"

	"github.com/arlojin/sockbridge/internal/driver"
)

const tick = 10 * time.Millisecond

// queueSize bounds the outbound queue, which the supervisor drains every
// tick; a worker can legitimately wait on a full Outbound (see emit) without
// that meaning it's dead. Inbound has no such bound — see unboundedQueue.
const queueSize = 64

// Worker bridges one driver to the supervisor via Inbound (supervisor→driver)
// and Outbound (driver→supervisor). Outbound is closed when the worker
// exits for any reason — that closure is the supervisor's signal to reap
// the channel. Inbound is closed at the same moment, so a push after the
// worker has died reports failure instead of queuing forever.
type Worker struct {
	Inbound  *unboundedQueue
	Outbound chan []byte

	done chan struct{}
}

// Start spawns a worker goroutine owning d and returns immediately.
func Start(d driver.Driver) *Worker {
	w := &Worker{
		Inbound:  newUnboundedQueue(),
		Outbound: make(chan []byte, queueSize),
		done:     make(chan struct{}),
	}
	go w.run(d)
	return w
}

// Close terminates the worker's loop at its next tick, closing Outbound and
// the driver. Safe to call more than once.
func (w *Worker) Close() {
	select {
	case <-w.done:
	default:
		close(w.done)
	}
}

func (w *Worker) run(d driver.Driver) {
	defer close(w.Outbound)
	defer w.Inbound.close()
	defer d.Close()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	connected := false

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
		}

		switch d.Status() {
		case driver.Connecting:
			continue
		case driver.Disconnected:
			return
		}

		if !connected {
			connected = true
			if !w.emit([]byte{}) {
				return
			}
		}

		if data, ok := w.Inbound.pop(); ok {
			if err := d.Send(data); err != nil {
				return
			}
		}

		for {
			data, err := d.Receive()
			if err != nil {
				return
			}
			if data == nil {
				break
			}
			if !w.emit(data) {
				return
			}
		}
	}
}

// Push hands data to the worker for delivery to its driver. It returns false
// once the worker has exited and closed Inbound.
func (w *Worker) Push(data []byte) bool {
	return w.Inbound.push(data)
}

func (w *Worker) emit(data []byte) bool {
	select {
	case w.Outbound <- data:
		return true
	case <-w.done:
		return false
	}
}

// unboundedQueue is an unbounded single-producer/single-consumer FIFO of
// byte slices, mirroring the original's unbounded mpsc channel: push never
// blocks and never fails because the queue is "full" — only because the
// consumer side has closed it. That makes a failed push an unambiguous
// signal of worker death, not backpressure.
type unboundedQueue struct {
	mu     sync.Mutex
	items  [][]byte
	closed bool
}

func newUnboundedQueue() *unboundedQueue {
	return &unboundedQueue{}
}

// push enqueues data and returns true, or returns false without enqueuing
// if the queue has already been closed.
func (q *unboundedQueue) push(data []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, data)
	return true
}

// pop removes and returns the oldest item. ok is false if the queue is
// currently empty.
func (q *unboundedQueue) pop() (data []byte, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return nil, false
	}
	data, q.items = q.items[0], q.items[1:]
	return data, true
}

func (q *unboundedQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
}
