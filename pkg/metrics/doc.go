/*
Package metrics defines and registers the Prometheus instrumentation for the
Glados audit core: per-strategy dispatch counters, worker pool occupancy,
audit result counters, and repository query latency. Metrics are exposed via
Handler for scraping, and liveness/readiness/health HTTP handlers mirror the
ones operators expect from any long-running Go service.
*/
package metrics
