package protocol

import "testing"

func TestSetupRoundTrip(t *testing.T) {
	cases := []ChannelConfig{
		{Kind: EchoKind},
		{Kind: TCPKind, Addr: "93.184.216.34:80"},
		{Kind: UDPKind, Addr: "127.0.0.1:9999"},
		{Kind: TCPKind, Addr: "[2001:db8::1]:443"},
	}
	for _, cfg := range cases {
		wire, err := EncodeSetup(cfg)
		if err != nil {
			t.Fatalf("EncodeSetup(%+v): %v", cfg, err)
		}
		got, err := DecodeSetup(wire)
		if err != nil {
			t.Fatalf("DecodeSetup(%s): %v", wire, err)
		}
		if got != cfg {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, cfg)
		}
	}
}

func TestSetupExactShape(t *testing.T) {
	wire, err := EncodeSetup(ChannelConfig{Kind: TCPKind, Addr: "1.2.3.4:80"})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"Tcp":"1.2.3.4:80"}`
	if string(wire) != want {
		t.Fatalf("EncodeSetup = %s, want %s", wire, want)
	}

	wire, err = EncodeSetup(ChannelConfig{Kind: EchoKind})
	if err != nil {
		t.Fatal(err)
	}
	if string(wire) != `{"Echo":null}` {
		t.Fatalf("EncodeSetup(Echo) = %s, want {\"Echo\":null}", wire)
	}
}

func TestDecodeSetupMalformed(t *testing.T) {
	cases := []string{
		`not json`,
		``,
		`{}`,
		`{"Tcp":"addr", "Udp":"addr"}`,
		`{"Tcp":""}`,
		`{"Bogus":null}`,
		`"Echo"`,
		`null`,
	}
	for _, in := range cases {
		if _, err := DecodeSetup([]byte(in)); err == nil {
			t.Errorf("DecodeSetup(%q) should fail", in)
		}
	}
}
