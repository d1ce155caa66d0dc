/*
Package log provides structured logging for the Glados audit core using zerolog.

Every component (strategy producer, collator, worker pool, audit task, stats
aggregator, retention enforcer) pulls a child logger via WithComponent so log
lines carry the {component, strategy?, content.key?, err} fields spec.md §7
requires without each call site hand-assembling them.
*/
package log
