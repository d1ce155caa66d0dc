package portal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

func rpcHandler(t *testing.T, handlers map[string]func(req rpcRequest) (any, *rpcError)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		handler, ok := handlers[req.Method]
		require.True(t, ok, "unexpected method %q", req.Method)

		result, rpcErr := handler(req)
		resp := rpcResponse{JSONRPC: "2.0", ID: req.ID, Error: rpcErr}
		if rpcErr == nil {
			raw, err := json.Marshal(result)
			require.NoError(t, err)
			resp.Result = raw
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestDialResolvesIdentity(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion": func(rpcRequest) (any, *rpcError) { return "trin/0.1.0-abc", nil },
		"discv5_nodeInfo":    func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0xaa), nil },
	}))
	defer server.Close()

	client, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "trin/0.1.0-abc", client.Info().VersionString)
	assert.True(t, client.Info().SupportsTrace())
}

func TestGetContentPlainWhenTraceUnsupported(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion":                  func(rpcRequest) (any, *rpcError) { return "ultralight/0.1.0", nil },
		"discv5_nodeInfo":                     func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0xbb), nil },
		"portal_historyRecursiveFindContent":  func(rpcRequest) (any, *rpcError) { return findContentResult{Content: "0xdeadbeef"}, nil },
	}))
	defer server.Close()

	client, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)

	content := entity.ContentKey{SubProtocol: entity.SubProtocolHistory, KeyBytes: []byte{0x00}}
	bytes, trace, err := client.GetContent(context.Background(), content)
	require.NoError(t, err)
	assert.Nil(t, trace)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, bytes)
}

func TestGetContentTraceWhenSupported(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion": func(rpcRequest) (any, *rpcError) { return "trin/0.1.0", nil },
		"discv5_nodeInfo":    func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0xcc), nil },
		"portal_historyRecursiveFindContentTrace": func(rpcRequest) (any, *rpcError) {
			return findContentTraceResult{
				Content: "0xcafe",
				Trace:   entity.Trace{Origin: "node-a"},
			}, nil
		},
	}))
	defer server.Close()

	client, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)

	content := entity.ContentKey{SubProtocol: entity.SubProtocolHistory, KeyBytes: []byte{0x00}}
	bytes, trace, err := client.GetContent(context.Background(), content)
	require.NoError(t, err)
	require.NotNil(t, trace)
	assert.Equal(t, "node-a", trace.Origin)
	assert.Equal(t, []byte{0xca, 0xfe}, bytes)
}

func TestGetContentNotFoundClassification(t *testing.T) {
	server := httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion": func(rpcRequest) (any, *rpcError) { return "ultralight/0.1.0", nil },
		"discv5_nodeInfo":    func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0xdd), nil },
		"portal_historyRecursiveFindContent": func(rpcRequest) (any, *rpcError) {
			return nil, &rpcError{Code: -32000, Message: "content not found"}
		},
	}))
	defer server.Close()

	client, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)

	content := entity.ContentKey{SubProtocol: entity.SubProtocolHistory, KeyBytes: []byte{0x00}}
	_, _, err = client.GetContent(context.Background(), content)
	require.Error(t, err)
	assert.True(t, glerr.Is(err, glerr.KindContentNotFound))
}

func TestGetContentNotFoundCarriesTrace(t *testing.T) {
	traceJSON, err := json.Marshal(entity.Trace{
		Origin: "node-a",
		Failures: map[string]entity.Failure{
			hex32(0xee): {FailureKind: "UtpConnectionFailed"},
		},
	})
	require.NoError(t, err)

	server := httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion": func(rpcRequest) (any, *rpcError) { return "trin/0.1.0", nil },
		"discv5_nodeInfo":    func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0xdd), nil },
		"portal_historyRecursiveFindContentTrace": func(rpcRequest) (any, *rpcError) {
			return nil, &rpcError{Code: -32000, Message: "content not found", Data: traceJSON}
		},
	}))
	defer server.Close()

	client, err := Dial(context.Background(), server.URL)
	require.NoError(t, err)

	content := entity.ContentKey{SubProtocol: entity.SubProtocolHistory, KeyBytes: []byte{0x00}}
	_, trace, err := client.GetContent(context.Background(), content)
	require.Error(t, err)
	assert.True(t, glerr.Is(err, glerr.KindContentNotFound))
	require.NotNil(t, trace)
	assert.Equal(t, "node-a", trace.Origin)
	assert.Len(t, trace.Failures, 1)
}

func hex32(b byte) string {
	buf := make([]byte, 64)
	for i := range buf {
		buf[i] = "0123456789abcdef"[b%16]
	}
	return string(buf)
}
