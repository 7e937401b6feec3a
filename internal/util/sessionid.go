package util

import "github.com/google/uuid"

// NewSessionID returns a fresh, human-readable identifier. The transport
// hosts use it as each peer connection's PeerID, which also keys the
// relay's sessions and scopes their log lines.
func NewSessionID() string {
	return uuid.NewString()
}
