package entity

import "time"

// ContentKey identifies a piece of network content.
type ContentKey struct {
	ID          int64
	SubProtocol SubProtocol
	KeyBytes    []byte // opaque, <= 64 bytes
	ContentID   [32]byte
	ContentType ContentType
	BlockNumber *uint64 // nil when the sub-protocol has no associated block
	FirstSeenAt time.Time
}
