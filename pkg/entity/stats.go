package entity

import "time"

// StatsFilter names one (sub_protocol, strategy, content_type) slice of the
// audit universe that the Stats Aggregator snapshots every tick. Strategy
// and ContentType are optional: a nil pointer means "all".
type StatsFilter struct {
	SubProtocol SubProtocol
	Strategy    *StrategyVariant
	ContentType *ContentType
}

// Label returns a stable metric/column label for the filter, e.g.
// "history.random.block_body" or "history.all.all".
func (f StatsFilter) Label() string {
	strategy := "all"
	if f.Strategy != nil {
		strategy = f.Strategy.String()
	}
	contentType := "all"
	if f.ContentType != nil {
		contentType = f.ContentType.String()
	}
	return f.SubProtocol.String() + "." + strategy + "." + contentType
}

// AuditStats is a timestamped success-rate snapshot for one StatsFilter.
type AuditStats struct {
	ID            int64
	Filter        StatsFilter
	Period        time.Duration // the rate window the snapshot covers
	TotalAudits   int64
	TotalPasses   int64
	TotalFailures int64
	PassPercent   float64
	CreatedAt     time.Time
}

// AuditsPerMinute returns the throughput implied by TotalAudits over Period.
func (s AuditStats) AuditsPerMinute() float64 {
	if s.Period <= 0 {
		return 0
	}
	return float64(s.TotalAudits) / s.Period.Minutes()
}
