/*
Package portal implements the Portal Client Pool (C2): a round-robin handle
over one or more remote Portal nodes, each reached via JSON-RPC over HTTP.
No JSON-RPC client library appears anywhere in the retrieval pack, so the
wire client is built directly on net/http and encoding/json, matching the
method-family contract in spec.md §6 (version, node_info,
recursive_find_content plain and trace variants). Each Client wraps its
calls in a circuit breaker so a wedged remote node degrades gracefully
instead of holding worker pool permits hostage.
*/
package portal
