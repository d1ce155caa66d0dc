package postgres

import (
	"context"
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

// CountContentKeysBySubProtocol satisfies metrics.Repository for the
// periodic gauge collector.
func (s *Store) CountContentKeysBySubProtocol(ctx context.Context) (map[string]int64, error) {
	defer observe(ctx, "count_content_keys_by_sub_protocol")()

	const query = `SELECT sub_protocol, COUNT(*) AS total FROM content_keys GROUP BY sub_protocol`

	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, glerr.Transport("count_content_keys_by_sub_protocol", fmt.Errorf("query content key counts: %w", err))
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var subProtocol int
		var total int64
		if err := rows.Scan(&subProtocol, &total); err != nil {
			return nil, glerr.Transport("count_content_keys_by_sub_protocol", fmt.Errorf("scan content key count: %w", err))
		}
		counts[entity.SubProtocol(subProtocol).String()] = total
	}
	return counts, rows.Err()
}

// CountPendingAudits satisfies metrics.Repository for the periodic gauge
// collector.
func (s *Store) CountPendingAudits(ctx context.Context) (int64, error) {
	defer observe(ctx, "count_pending_audits")()

	const query = `SELECT COUNT(*) FROM audits WHERE result = $1`

	var total int64
	if err := s.db.GetContext(ctx, &total, query, int(entity.AuditPending)); err != nil {
		return 0, glerr.Transport("count_pending_audits", fmt.Errorf("count pending audits: %w", err))
	}
	return total, nil
}
