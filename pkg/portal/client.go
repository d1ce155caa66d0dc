package portal

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

// Client is an addressable remote Portal node, resolved at construction via
// a version-info call and a node-info call, per spec.md §4.2.
type Client struct {
	wire    *wireClient
	info    entity.Client
	nodeID  [32]byte
	breaker *gobreaker.CircuitBreaker
}

// Dial resolves identity for a Portal client at url via its version and
// node-info methods. Failure here is fatal at startup, per spec.md §7.
func Dial(ctx context.Context, url string) (*Client, error) {
	wire := newWireClient(url, &http.Client{Timeout: 30 * time.Second})

	var version string
	if err := wire.call(ctx, "web3_clientVersion", nil, &version); err != nil {
		return nil, glerr.Transport("portal.dial", fmt.Errorf("fetch client version from %s: %w", url, err))
	}

	var nodeInfoHex string
	if err := wire.call(ctx, "discv5_nodeInfo", nil, &nodeInfoHex); err != nil {
		return nil, glerr.Transport("portal.dial", fmt.Errorf("fetch node info from %s: %w", url, err))
	}
	nodeID, err := decodeNodeID(nodeInfoHex)
	if err != nil {
		return nil, glerr.Decode("portal.dial", fmt.Errorf("decode node id from %s: %w", url, err))
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        url,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			value := 0.0
			if to == gobreaker.StateOpen {
				value = 1.0
			}
			metrics.PortalClientBreakerOpen.WithLabelValues(name).Set(value)
			log.WithComponent("portal.client").Warn().
				Str("client", name).Str("from", from.String()).Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return &Client{
		wire:    wire,
		info:    entity.Client{VersionString: version},
		nodeID:  nodeID,
		breaker: breaker,
	}, nil
}

func decodeNodeID(nodeInfoHex string) ([32]byte, error) {
	var nodeID [32]byte
	raw, err := hex.DecodeString(strings.TrimPrefix(nodeInfoHex, "0x"))
	if err != nil {
		return nodeID, err
	}
	if len(raw) < 32 {
		return nodeID, fmt.Errorf("node id too short: %d bytes", len(raw))
	}
	copy(nodeID[:], raw[:32])
	return nodeID, nil
}

// Info returns the client's version fingerprint.
func (c *Client) Info() entity.Client { return c.info }

// NodeID returns the peer identity this client connects through.
func (c *Client) NodeID() [32]byte { return c.nodeID }

type findContentResult struct {
	Content string `json:"content"`
}

type findContentTraceResult struct {
	Content string       `json:"content"`
	Trace   entity.Trace `json:"trace"`
}

// GetContent performs a recursive lookup appropriate to content's
// sub-protocol. If the client advertises trace support, the trace variant
// is used and a trace is always returned; otherwise the plain variant is
// used and trace is nil.
func (c *Client) GetContent(ctx context.Context, content entity.ContentKey) ([]byte, *entity.Trace, error) {
	method := content.SubProtocol.Kind().LookupMethod()
	keyHex := "0x" + hex.EncodeToString(content.KeyBytes)

	result, err := c.breaker.Execute(func() (any, error) {
		if c.info.SupportsTrace() {
			var traceResult findContentTraceResult
			if err := c.wire.call(ctx, method+"Trace", []any{keyHex}, &traceResult); err != nil {
				return nil, err
			}
			return &traceResult, nil
		}
		var plain findContentResult
		if err := c.wire.call(ctx, method, []any{keyHex}, &plain); err != nil {
			return nil, err
		}
		return &plain, nil
	})
	if err != nil {
		return nil, notFoundTrace(err), classifyContentError(content, err)
	}

	switch r := result.(type) {
	case *findContentTraceResult:
		bytes, err := hex.DecodeString(strings.TrimPrefix(r.Content, "0x"))
		if err != nil {
			return nil, nil, glerr.Decode("get_content", fmt.Errorf("decode content bytes: %w", err))
		}
		return bytes, &r.Trace, nil
	case *findContentResult:
		bytes, err := hex.DecodeString(strings.TrimPrefix(r.Content, "0x"))
		if err != nil {
			return nil, nil, glerr.Decode("get_content", fmt.Errorf("decode content bytes: %w", err))
		}
		return bytes, nil, nil
	default:
		return nil, nil, glerr.Decode("get_content", fmt.Errorf("unexpected result type %T", result))
	}
}

func classifyContentError(content entity.ContentKey, err error) error {
	if rpcErr, ok := err.(*rpcError); ok && strings.Contains(strings.ToLower(rpcErr.Message), "not found") {
		return glerr.ContentNotFound("get_content", rpcErr.Data)
	}
	log.WithComponent("portal.client").Warn().
		Str("content.key", hex.EncodeToString(content.KeyBytes)).
		Err(err).Msg("portal client transport error")
	return glerr.Transport("get_content", err)
}

// notFoundTrace recovers the query trace a trace-aware client attaches to
// a ContentNotFound error's data member, per spec.md §4.2's
// `ContentNotFound { trace? }` error shape. A plain-variant miss, or a
// not-found with no trace data, yields nil.
func notFoundTrace(err error) *entity.Trace {
	rpcErr, ok := err.(*rpcError)
	if !ok || len(rpcErr.Data) == 0 {
		return nil
	}
	var trace entity.Trace
	if err := json.Unmarshal(rpcErr.Data, &trace); err != nil {
		return nil
	}
	return &trace
}
