package entity

// SubProtocol identifies a content family within the peer-to-peer network.
type SubProtocol int

const (
	SubProtocolHistory SubProtocol = iota
	SubProtocolState
	SubProtocolBeacon
)

func (s SubProtocol) String() string {
	switch s {
	case SubProtocolHistory:
		return "history"
	case SubProtocolState:
		return "state"
	case SubProtocolBeacon:
		return "beacon"
	default:
		return "unknown"
	}
}

// ContentType tags a content key's kind, derived from the key's first byte.
// Every tag belongs to exactly one SubProtocol.
type ContentType int

const (
	ContentTypeUnknown ContentType = iota

	// History sub-protocol content types.
	ContentTypeBlockHeaderByHash
	ContentTypeBlockHeaderByNumber
	ContentTypeBlockBody
	ContentTypeReceipts
	ContentTypeEpochAccumulator

	// State sub-protocol content types.
	ContentTypeAccountTrieNode
	ContentTypeContractStorageTrieNode
	ContentTypeContractByteCode

	// Beacon sub-protocol content types.
	ContentTypeLightClientBootstrap
	ContentTypeLightClientUpdate
	ContentTypeLightClientFinalityUpdate
	ContentTypeLightClientOptimisticUpdate
)

func (c ContentType) String() string {
	switch c {
	case ContentTypeBlockHeaderByHash:
		return "block_header_by_hash"
	case ContentTypeBlockHeaderByNumber:
		return "block_header_by_number"
	case ContentTypeBlockBody:
		return "block_body"
	case ContentTypeReceipts:
		return "receipts"
	case ContentTypeEpochAccumulator:
		return "epoch_accumulator"
	case ContentTypeAccountTrieNode:
		return "account_trie_node"
	case ContentTypeContractStorageTrieNode:
		return "contract_storage_trie_node"
	case ContentTypeContractByteCode:
		return "contract_bytecode"
	case ContentTypeLightClientBootstrap:
		return "light_client_bootstrap"
	case ContentTypeLightClientUpdate:
		return "light_client_update"
	case ContentTypeLightClientFinalityUpdate:
		return "light_client_finality_update"
	case ContentTypeLightClientOptimisticUpdate:
		return "light_client_optimistic_update"
	default:
		return "unknown"
	}
}

// SubProtocol returns the sub-protocol a content type belongs to.
func (c ContentType) SubProtocol() SubProtocol {
	switch c {
	case ContentTypeAccountTrieNode, ContentTypeContractStorageTrieNode, ContentTypeContractByteCode:
		return SubProtocolState
	case ContentTypeLightClientBootstrap, ContentTypeLightClientUpdate,
		ContentTypeLightClientFinalityUpdate, ContentTypeLightClientOptimisticUpdate:
		return SubProtocolBeacon
	default:
		return SubProtocolHistory
	}
}

// RequiresCrossCheck reports whether validating this content type requires
// consulting persisted block metadata (the header hash or Merkle root it
// must match), as opposed to a decode-only check.
func (c ContentType) RequiresCrossCheck() bool {
	switch c {
	case ContentTypeBlockHeaderByHash, ContentTypeBlockHeaderByNumber, ContentTypeBlockBody, ContentTypeReceipts:
		return true
	default:
		return false
	}
}

// ContentKind is the per-sub-protocol capability table referenced by
// spec.md's polymorphism design note: instead of parallel code paths per
// sub-protocol, each SubProtocol exposes the methods a caller needs without
// a type switch at every call site.
type ContentKind interface {
	// DecodeKey reports whether raw bytes look like a well-formed content
	// key for this sub-protocol, and if so extracts its ContentType.
	DecodeKey(keyBytes []byte) (ContentType, bool)

	// LookupMethod returns the JSON-RPC method name used to fetch content
	// of this sub-protocol.
	LookupMethod() string
}

type historyContentKind struct{}
type stateContentKind struct{}
type beaconContentKind struct{}

func (historyContentKind) DecodeKey(keyBytes []byte) (ContentType, bool) {
	if len(keyBytes) == 0 {
		return ContentTypeUnknown, false
	}
	switch keyBytes[0] {
	case 0x00:
		return ContentTypeBlockHeaderByHash, true
	case 0x03:
		return ContentTypeBlockHeaderByNumber, true
	case 0x01:
		return ContentTypeBlockBody, true
	case 0x02:
		return ContentTypeReceipts, true
	case 0x04:
		return ContentTypeEpochAccumulator, true
	default:
		return ContentTypeUnknown, false
	}
}

func (historyContentKind) LookupMethod() string { return "portal_historyRecursiveFindContent" }

func (stateContentKind) DecodeKey(keyBytes []byte) (ContentType, bool) {
	if len(keyBytes) == 0 {
		return ContentTypeUnknown, false
	}
	switch keyBytes[0] {
	case 0x00:
		return ContentTypeAccountTrieNode, true
	case 0x01:
		return ContentTypeContractStorageTrieNode, true
	case 0x02:
		return ContentTypeContractByteCode, true
	default:
		return ContentTypeUnknown, false
	}
}

func (stateContentKind) LookupMethod() string { return "portal_stateRecursiveFindContent" }

func (beaconContentKind) DecodeKey(keyBytes []byte) (ContentType, bool) {
	if len(keyBytes) == 0 {
		return ContentTypeUnknown, false
	}
	switch keyBytes[0] {
	case 0x00:
		return ContentTypeLightClientBootstrap, true
	case 0x01:
		return ContentTypeLightClientUpdate, true
	case 0x02:
		return ContentTypeLightClientFinalityUpdate, true
	case 0x03:
		return ContentTypeLightClientOptimisticUpdate, true
	default:
		return ContentTypeUnknown, false
	}
}

func (beaconContentKind) LookupMethod() string { return "portal_beaconRecursiveFindContent" }

var contentKinds = map[SubProtocol]ContentKind{
	SubProtocolHistory: historyContentKind{},
	SubProtocolState:   stateContentKind{},
	SubProtocolBeacon:  beaconContentKind{},
}

// Kind returns the capability table for a sub-protocol. New sub-protocols
// are added here alongside a new entry in the SubProtocol enum; no
// open-ended dispatch elsewhere is required.
func (s SubProtocol) Kind() ContentKind {
	return contentKinds[s]
}
