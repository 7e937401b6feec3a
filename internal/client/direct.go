package client

import (
	"time"

	"github.com/arlojin/sockbridge/internal/driver"
)

// directFacade bypasses the tunnel entirely and drives the same
// non-blocking driver.Driver the relay uses, straight against the target.
// This is the "Direct" variant the original keeps alongside "Proxied" —
// useful for exercising the façade's call shape against a real socket, or
// for a client binary that can optionally skip the proxy.
type directFacade struct {
	d    driver.Driver
	dead bool
}

func newDirectTCP(addr string) (*directFacade, error) {
	d, err := driver.NewTCPDriver(addr)
	if err != nil {
		return nil, err
	}
	return &directFacade{d: d}, nil
}

func newDirectUDP(addr string) (*directFacade, error) {
	d, err := driver.NewUDPDriver(addr)
	if err != nil {
		return nil, err
	}
	return &directFacade{d: d}, nil
}

// Connected is never actually pending in direct mode: construction already
// performed the blocking dial, so the driver is Connected the instant it
// exists, or construction itself would have failed. timeout is unused.
func (f *directFacade) Connected(time.Duration) (bool, error) {
	if f.dead {
		return false, ErrDisconnected
	}
	return f.d.Status() == driver.Connected, nil
}

func (f *directFacade) Send(data []byte) error {
	if f.dead {
		return ErrDisconnected
	}
	if err := f.d.Send(data); err != nil {
		f.dead = true
		return err
	}
	return nil
}

func (f *directFacade) Receive() ([]byte, error) {
	if f.dead {
		return nil, ErrDisconnected
	}
	data, err := f.d.Receive()
	if err != nil {
		f.dead = true
		return nil, err
	}
	return data, nil
}

func (f *directFacade) Close() error {
	f.dead = true
	return f.d.Close()
}
