package driver

import (
	"errors"
	"net"
	"time"
)

// UDPDriver connects a UDP socket to a single target. "Connected" UDP
// sockets don't truly dial anything — they just filter recv to the one
// peer and let Write omit the destination on every call.
type UDPDriver struct {
	conn net.Conn
}

// NewUDPDriver connects a UDP socket to addr.
func NewUDPDriver(addr string) (*UDPDriver, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, err
	}
	return &UDPDriver{conn: conn}, nil
}

func (d *UDPDriver) Status() Status { return Connected }

func (d *UDPDriver) Send(data []byte) error {
	d.conn.SetWriteDeadline(time.Now().Add(pollDeadline))

	n, err := d.conn.Write(data)
	if err != nil {
		return err
	}
	if n != len(data) {
		return errors.New("driver: short write to udp target")
	}
	return nil
}

func (d *UDPDriver) Receive() ([]byte, error) {
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
	default:
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, nil
		}
		return nil, err
	}
}

func (d *UDPDriver) Close() error { return d.conn.Close() }
