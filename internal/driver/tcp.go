package driver

import (
	"errors"
	"io"
	"net"
	"time"
)

// pollDeadline bounds a single Send or Receive call: short enough that the worker's
// tick loop never stalls behind a driver with nothing to say, long enough
// that a degenerate zero-deadline doesn't spin the CPU.
const pollDeadline = 5 * time.Millisecond

// TCPDriver dials a TCP target once and bridges it non-blockingly.
type TCPDriver struct {
	conn net.Conn
}

// NewTCPDriver dials addr. The dial itself is blocking (matching the
// teacher's net.Dial usage in tunnel/handler.go); once connected, all
// further I/O is non-blocking from the caller's point of view.
func NewTCPDriver(addr string) (*TCPDriver, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &TCPDriver{conn: conn}, nil
}

func (d *TCPDriver) Status() Status { return Connected }

func (d *TCPDriver) Send(data []byte) error {
	d.conn.SetWriteDeadline(time.Now().Add(pollDeadline))

	n, err := d.conn.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return errors.New("driver: short write to tcp target")
	}
	return nil
}

func (d *TCPDriver) Receive() ([]byte, error) {
	d.conn.SetReadDeadline(time.Now().Add(pollDeadline))

	buf := make([]byte, MaxMessageSize)
	n, err := d.conn.Read(buf)
	switch {
	case err == nil && n == MaxMessageSize:
		return nil, ErrOversized
	case err == nil:
		out := make([]byte, n)
		copy(out, buf[:n])
		return out, nil
	case errors.Is(err, io.EOF):
		return nil, ErrDisconnected
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		return nil, err
	}
}

func (d *TCPDriver) Close() error { return d.conn.Close() }
