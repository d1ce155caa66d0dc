package entity

import "strings"

// Node is a peer identity in the discovery protocol.
type Node struct {
	ID         int64
	NodeID     [32]byte
	NodeIDHigh uint64 // high 64 bits of NodeID, denormalized for range queries
}

// NodeEnr is a signed record belonging to a Node.
type NodeEnr struct {
	ID              int64
	NodeID          int64 // fk -> Node.ID
	SequenceNumber  uint64
	RawPayload      []byte
	ProtocolVersion *uint8
}

// Client is a Portal client version fingerprint.
type Client struct {
	ID            int64
	VersionString string
}

// SupportsTrace reports whether this client advertises query-trace support.
// Matches the source's capability detection: a substring match on "trin" or
// "fluffy" in the version string.
func (c Client) SupportsTrace() bool {
	lower := strings.ToLower(c.VersionString)
	return strings.Contains(lower, "trin") || strings.Contains(lower, "fluffy")
}
