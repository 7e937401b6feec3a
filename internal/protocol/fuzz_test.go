package protocol

import "testing"

// FuzzDecodeSetup exercises the channel-setup JSON parser with
// attacker-controlled bytes — this is the one input a relay accepts from an
// unauthenticated client before any channel exists.
func FuzzDecodeSetup(f *testing.F) {
	seeds := []string{
		`{"Echo":null}`,
		`{"Tcp":"127.0.0.1:80"}`,
		`{"Udp":"[::1]:53"}`,
		`not json`,
		`{}`,
		`{"Tcp":123}`,
		`{"Tcp":"a","Udp":"b"}`,
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, in string) {
		cfg, err := DecodeSetup([]byte(in))
		if err != nil {
			return
		}
		// Any successfully decoded config must re-encode to valid, re-parseable JSON.
		wire, err := EncodeSetup(cfg)
		if err != nil {
			t.Fatalf("EncodeSetup(%+v) after successful decode: %v", cfg, err)
		}
		if _, err := DecodeSetup(wire); err != nil {
			t.Fatalf("DecodeSetup(EncodeSetup(%+v)) failed: %v", cfg, err)
		}
	})
}

// FuzzDecodeFrame exercises the relay→client frame decoder the client
// adapter runs against bytes received from the network.
func FuzzDecodeFrame(f *testing.F) {
	f.Add([]byte{0x00})
	f.Add([]byte{0x01})
	f.Add([]byte{0x01, 'h', 'i'})
	f.Add([]byte{})
	f.Add([]byte{0x02, 0x03})

	f.Fuzz(func(t *testing.T, in []byte) {
		frame, err := Decode(in)
		if err != nil {
			return
		}
		if frame.Tag != TagData && frame.Tag != TagClose {
			t.Fatalf("Decode produced unknown tag 0x%02x without error", frame.Tag)
		}
		if frame.Tag == TagClose && len(frame.Body) != 0 {
			t.Fatalf("Decode produced a close frame with a body")
		}
	})
}
