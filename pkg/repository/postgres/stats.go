package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

// GetAuditStats computes the success-rate snapshot for filter over audits
// created within [now-window, now]. Errored audits are excluded from both
// numerator and denominator, per spec.md §4.8.
func (s *Store) GetAuditStats(ctx context.Context, filter entity.StatsFilter, window time.Duration) (entity.AuditStats, error) {
	defer observe(ctx, "get_audit_stats")()

	cutoff := timeToUnix(time.Now().Add(-window))

	query := `
		SELECT
			COUNT(*) FILTER (WHERE result = $4) AS passes,
			COUNT(*) FILTER (WHERE result = $5) AS failures
		FROM audits a
		JOIN content_keys ck ON ck.id = a.content_id
		WHERE a.sub_protocol = $1 AND a.created_at >= $2 AND a.result != $3`

	args := []any{int(filter.SubProtocol), cutoff, int(entity.AuditPending), int(entity.AuditSuccess), int(entity.AuditFailure)}

	if filter.Strategy != nil {
		query += fmt.Sprintf(" AND a.strategy_variant = $%d", len(args)+1)
		args = append(args, int(*filter.Strategy))
	}
	if filter.ContentType != nil {
		query += fmt.Sprintf(" AND ck.content_type = $%d", len(args)+1)
		args = append(args, int(*filter.ContentType))
	}

	var counts struct {
		Passes   int64 `db:"passes"`
		Failures int64 `db:"failures"`
	}
	if err := s.db.GetContext(ctx, &counts, query, args...); err != nil {
		return entity.AuditStats{}, glerr.Transport("get_audit_stats", fmt.Errorf("query audit stats: %w", err))
	}

	total := counts.Passes + counts.Failures
	passPercent := 0.0
	if total > 0 {
		passPercent = 100 * float64(counts.Passes) / float64(total)
	}

	return entity.AuditStats{
		Filter:        filter,
		Period:        window,
		TotalAudits:   total,
		TotalPasses:   counts.Passes,
		TotalFailures: counts.Failures,
		PassPercent:   passPercent,
		CreatedAt:     time.Now(),
	}, nil
}

// InsertAuditStats writes one AuditStats row.
func (s *Store) InsertAuditStats(ctx context.Context, stats entity.AuditStats) error {
	defer observe(ctx, "insert_audit_stats")()

	const query = `
		INSERT INTO audit_stats (filter_label, period_seconds, total_audits, total_passes, total_failures, pass_percent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, extract(epoch from now())::bigint)`

	_, err := s.db.ExecContext(ctx, query,
		stats.Filter.Label(), int64(stats.Period.Seconds()),
		stats.TotalAudits, stats.TotalPasses, stats.TotalFailures, stats.PassPercent)
	if err != nil {
		return glerr.Transport("insert_audit_stats", fmt.Errorf("insert audit stats row: %w", err))
	}
	return nil
}
