package driver

import "time"

// echoLifetime bounds how long an echo channel stays open — there is no
// real backend to lose a connection to, so the driver manufactures a
// disconnect after a fixed window instead of running forever.
const echoLifetime = 3 * time.Second

// EchoDriver loops whatever is sent straight back out, and reports
// Disconnected once echoLifetime has elapsed since construction.
type EchoDriver struct {
	start  time.Time
	queued [][]byte
}

// NewEchoDriver returns a driver that is immediately Connected.
func NewEchoDriver() *EchoDriver {
	return &EchoDriver{start: time.Now()}
}

func (d *EchoDriver) Status() Status {
	if time.Since(d.start) > echoLifetime {
		return Disconnected
	}
	return Connected
}

func (d *EchoDriver) Send(data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	d.queued = append(d.queued, cp)
	return nil
}

func (d *EchoDriver) Receive() ([]byte, error) {
	if len(d.queued) == 0 {
		return nil, nil
	}
	next := d.queued[0]
	d.queued = d.queued[1:]
	return next, nil
}

func (d *EchoDriver) Close() error { return nil }
