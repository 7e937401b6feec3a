package config

import (
	"testing"

	"github.com/arlojin/sockbridge/internal/protocol"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		spec string
		want protocol.ChannelConfig
	}{
		{"echo://", protocol.ChannelConfig{Kind: protocol.EchoKind}},
		{"tcp://93.184.216.34:80", protocol.ChannelConfig{Kind: protocol.TCPKind, Addr: "93.184.216.34:80"}},
		{"udp://127.0.0.1:9999", protocol.ChannelConfig{Kind: protocol.UDPKind, Addr: "127.0.0.1:9999"}},
	}
	for _, c := range cases {
		got, err := ParseTarget(c.spec)
		if err != nil {
			t.Fatalf("ParseTarget(%q): %v", c.spec, err)
		}
		if got != c.want {
			t.Fatalf("ParseTarget(%q) = %+v, want %+v", c.spec, got, c.want)
		}
	}
}

func TestParseTargetErrors(t *testing.T) {
	cases := []string{"", "tcp", "bogus://host:1", "tcp://", "ftp://host:21"}
	for _, spec := range cases {
		if _, err := ParseTarget(spec); err == nil {
			t.Errorf("ParseTarget(%q) should fail", spec)
		}
	}
}
