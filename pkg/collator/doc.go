/*
Package collator implements the Weighted Collator (C5): it merges the
outbound channels of every enabled Strategy Producer into a single
channel the Worker Pool drains, visiting strategies in declaration order
and granting each up to its configured weight of non-blocking receives
per pass.

The collator never drops a task — forwarding onto the outbound channel
is a blocking send — and it never starves a strategy: every pass visits
every triple in order, regardless of how many tasks any other triple had
waiting. A pass that forwards nothing at all (every inbound channel was
empty) yields briefly before the next pass, so an idle collator does not
spin.
*/
package collator
