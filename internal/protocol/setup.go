package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ChannelKind names which outbound driver a ChannelConfig selects.
type ChannelKind int

const (
	EchoKind ChannelKind = iota
	TCPKind
	UDPKind
)

func (k ChannelKind) String() string {
	switch k {
	case EchoKind:
		return "Echo"
	case TCPKind:
		return "Tcp"
	case UDPKind:
		return "Udp"
	default:
		return "Unknown"
	}
}

// ChannelConfig is the setup message sent as the first packet on a fresh
// channel-id. Its JSON shape mirrors a Rust externally-tagged enum (the
// format the original implementation produces with serde's default enum
// encoding): {"Echo":null}, {"Tcp":"<addr>"}, or {"Udp":"<addr>"}.
type ChannelConfig struct {
	Kind ChannelKind
	Addr string // ip:port; empty for EchoKind
}

// MarshalJSON encodes the config using the tagged-union shape described above.
func (c ChannelConfig) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case EchoKind:
		return []byte(`{"Echo":null}`), nil
	case TCPKind:
		return json.Marshal(map[string]string{"Tcp": c.Addr})
	case UDPKind:
		return json.Marshal(map[string]string{"Udp": c.Addr})
	default:
		return nil, fmt.Errorf("protocol: unknown ChannelKind %d", c.Kind)
	}
}

// UnmarshalJSON decodes the tagged-union shape. Exactly one of Echo/Tcp/Udp
// must be present; anything else is a malformed setup message.
func (c *ChannelConfig) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("protocol: malformed setup message: %w", err)
	}
	if len(raw) != 1 {
		return fmt.Errorf("protocol: setup message must have exactly one key, got %d", len(raw))
	}

	if _, ok := raw["Echo"]; ok {
		*c = ChannelConfig{Kind: EchoKind}
		return nil
	}
	if v, ok := raw["Tcp"]; ok {
		var addr string
		if err := json.Unmarshal(v, &addr); err != nil || addr == "" {
			return fmt.Errorf("protocol: malformed Tcp address")
		}
		*c = ChannelConfig{Kind: TCPKind, Addr: addr}
		return nil
	}
	if v, ok := raw["Udp"]; ok {
		var addr string
		if err := json.Unmarshal(v, &addr); err != nil || addr == "" {
			return fmt.Errorf("protocol: malformed Udp address")
		}
		*c = ChannelConfig{Kind: UDPKind, Addr: addr}
		return nil
	}
	return fmt.Errorf("protocol: unknown setup message key")
}

// DecodeSetup parses a setup message: UTF-8 JSON encoding a ChannelConfig.
func DecodeSetup(data []byte) (ChannelConfig, error) {
	var cfg ChannelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ChannelConfig{}, err
	}
	return cfg, nil
}

// EncodeSetup serializes a ChannelConfig for transmission as the first
// packet on a fresh channel-id.
func EncodeSetup(cfg ChannelConfig) ([]byte, error) {
	return json.Marshal(cfg)
}
