// Package config holds the CLI configuration types shared by the relay and
// client binaries in cmd/.
package config

import (
	"fmt"

	"github.com/arlojin/sockbridge/internal/protocol"
)

// Role selects which side of the tunnel a process runs as.
type Role string

const (
	RoleRelay  Role = "relay"
	RoleClient Role = "client"
)

// RelayConfig holds the parameters the relay binary needs: where its
// signaling server listens, and the URL it should tell operators to give
// out to clients (which may differ from ListenAddr behind NAT/a reverse
// proxy).
type RelayConfig struct {
	ListenAddr string // signaling HTTP/WS bind address, e.g. ":8443" or ":0"
	PublicURL  string // externally-visible signaling URL advertised to clients; optional
	Debug      bool
}

// ClientConfig holds the parameters the client binary needs: the relay to
// dial and the target channel to request.
type ClientConfig struct {
	RelayURL string
	Target   protocol.ChannelConfig
	Debug    bool
}

// ParseTarget parses a target spec of the form "tcp://host:port",
// "udp://host:port", or "echo://" into a ChannelConfig.
func ParseTarget(spec string) (protocol.ChannelConfig, error) {
	scheme, rest, ok := splitScheme(spec)
	if !ok {
		return protocol.ChannelConfig{}, fmt.Errorf("config: target %q has no scheme (want tcp://, udp://, or echo://)", spec)
	}

	switch scheme {
	case "echo":
		return protocol.ChannelConfig{Kind: protocol.EchoKind}, nil
	case "tcp":
		if rest == "" {
			return protocol.ChannelConfig{}, fmt.Errorf("config: tcp target requires host:port")
		}
		return protocol.ChannelConfig{Kind: protocol.TCPKind, Addr: rest}, nil
	case "udp":
		if rest == "" {
			return protocol.ChannelConfig{}, fmt.Errorf("config: udp target requires host:port")
		}
		return protocol.ChannelConfig{Kind: protocol.UDPKind, Addr: rest}, nil
	default:
		return protocol.ChannelConfig{}, fmt.Errorf("config: unknown target scheme %q", scheme)
	}
}

// splitScheme splits "scheme://rest" into its two parts. ok is false if
// spec has no "://" separator.
func splitScheme(spec string) (scheme, rest string, ok bool) {
	for i := 0; i+2 < len(spec); i++ {
		if spec[i] == ':' && spec[i+1] == '/' && spec[i+2] == '/' {
			return spec[:i], spec[i+3:], true
		}
	}
	return "", "", false
}
