package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/glados/pkg/glerr"
)

// DeleteAuditsOlderThan deletes audit rows created before cutoff, returning
// the number of rows removed.
func (s *Store) DeleteAuditsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observe(ctx, "delete_audits_older_than")()

	const query = `DELETE FROM audits WHERE created_at < $1`
	result, err := s.db.ExecContext(ctx, query, timeToUnix(cutoff))
	if err != nil {
		return 0, glerr.Transport("delete_audits_older_than", fmt.Errorf("delete old audits: %w", err))
	}
	n, _ := result.RowsAffected()
	return n, nil
}

// DeleteCensusOlderThan deletes census rows surveyed before cutoff.
func (s *Store) DeleteCensusOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	defer observe(ctx, "delete_census_older_than")()

	const query = `DELETE FROM census WHERE surveyed_at < $1`
	result, err := s.db.ExecContext(ctx, query, timeToUnix(cutoff))
	if err != nil {
		return 0, glerr.Transport("delete_census_older_than", fmt.Errorf("delete old census rows: %w", err))
	}
	n, _ := result.RowsAffected()
	return n, nil
}
