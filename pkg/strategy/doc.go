/*
Package strategy implements the Strategy Producers (C4): one independent
fiber per enabled selection strategy, each polling the Content Repository
on its own timer and feeding candidate ContentKeys as AuditTasks onto a
bounded outbound channel (capacity 100, see outChannelCapacity).

Sync advances a per-sub-protocol cursor block number, deriving content
keys deterministically from the block number rather than reading existing
rows. Random, Latest, Failed, and OldestUnaudited each read a batch of
candidates (default size batchSize) from the repository every tick.

A producer never blocks trying to enqueue: a full outbound channel is a
dropped task, logged and counted, not a stall. A transient repository
error on a tick is logged and the fiber continues on the next tick; only
Stop terminates the fiber (it closes the outbound channel on the way out
so a collator loop reading it can detect end-of-life).
*/
package strategy
