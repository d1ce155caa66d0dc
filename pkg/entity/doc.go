/*
Package entity defines the domain types shared across the audit core:
content keys, peers, audits, and the snapshots derived from them. These are
the types that cross component boundaries — strategy producers, the
collator, the worker pool, and the repository all speak entity types, never
raw rows.
*/
package entity
