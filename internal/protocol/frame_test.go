package protocol

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeClose(t *testing.T) {
	wire := EncodeClose()
	if !bytes.Equal(wire, []byte{0x00}) {
		t.Fatalf("EncodeClose = % x, want [00]", wire)
	}
	frame, err := Decode(wire)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if frame.Tag != TagClose || len(frame.Body) != 0 {
		t.Fatalf("Decode(EncodeClose()) = %+v, want TagClose with no body", frame)
	}
}

func TestEncodeDecodeData(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("ping"),
		bytes.Repeat([]byte{0xAB}, 4095),
	}
	for _, body := range cases {
		wire := EncodeData(body)
		if wire[0] != TagData {
			t.Fatalf("EncodeData tag = 0x%02x, want 0x01", wire[0])
		}
		frame, err := Decode(wire)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if frame.Tag != TagData {
			t.Fatalf("Tag = 0x%02x, want TagData", frame.Tag)
		}
		if !bytes.Equal(frame.Body, body) && !(len(frame.Body) == 0 && len(body) == 0) {
			t.Fatalf("Body = % x, want % x", frame.Body, body)
		}
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Fatal("Decode(nil) should fail: every frame needs a tag byte")
	}
	if _, err := Decode([]byte{}); err == nil {
		t.Fatal("Decode([]byte{}) should fail")
	}
}

func TestDecodeUnknownTag(t *testing.T) {
	if _, err := Decode([]byte{0x02, 'x'}); err == nil {
		t.Fatal("Decode should reject an unknown tag byte")
	}
}
