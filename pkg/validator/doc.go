/*
Package validator implements the Validator (C3): given a content key and
the bytes a Portal client returned for it, decides whether those bytes
satisfy the key's integrity contract.

Block-header-by-hash content is checked by recomputing a digest of the
returned bytes and comparing it to the hash embedded in the key. Block
headers addressed by number, bodies, and receipts cross-check the same
digest against the expected header hash recorded in the repository for
that block number; a missing expected hash classifies as Errored rather
than Success, closing the gap the original left as a "call a trusted
provider" TODO (original_source/glados-audit/src/validation.rs). Light
client / beacon content is a decode-only check.
*/
package validator
