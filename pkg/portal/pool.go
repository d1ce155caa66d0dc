package portal

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/ethereum/glados/pkg/glerr"
)

// Pool holds an immutable vector of Portal clients and exposes a
// round-robin cursor. Callers clone cheap shared handles; the underlying
// connection is shared across worker fibers.
type Pool struct {
	clients []*Client
	cursor  atomic.Uint64
}

// DialAll resolves a Client for every url, failing fast on the first
// unreachable or malformed one (fatal at startup, per spec.md §7).
func DialAll(ctx context.Context, urls []string) (*Pool, error) {
	if len(urls) == 0 {
		return nil, glerr.Transport("portal.pool", fmt.Errorf("zero portal clients configured"))
	}

	clients := make([]*Client, 0, len(urls))
	for _, url := range urls {
		client, err := Dial(ctx, url)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return &Pool{clients: clients}, nil
}

// Next advances the round-robin cursor and returns the next client handle.
func (p *Pool) Next() *Client {
	idx := p.cursor.Add(1) - 1
	return p.clients[idx%uint64(len(p.clients))]
}

// Len returns the number of clients in the pool.
func (p *Pool) Len() int {
	return len(p.clients)
}
