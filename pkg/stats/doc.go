/*
Package stats implements the Stats Aggregator (C8): on a fixed period it
computes, in parallel, a success-rate snapshot for every configured
(sub_protocol, strategy, content_type) filter and writes one AuditStats
row per filter per tick.
*/
package stats
