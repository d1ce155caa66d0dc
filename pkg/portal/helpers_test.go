package portal

import (
	"net/http/httptest"
	"testing"
)

func newStubServer(t *testing.T, version string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(rpcHandler(t, map[string]func(rpcRequest) (any, *rpcError){
		"web3_clientVersion": func(rpcRequest) (any, *rpcError) { return version, nil },
		"discv5_nodeInfo":    func(rpcRequest) (any, *rpcError) { return "0x" + hex32(0x01), nil },
	}))
}
