package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

// LatestAudit returns the most recent terminal audit created under strategy.
func (s *Store) LatestAudit(ctx context.Context, strategy entity.Strategy) (*entity.Audit, error) {
	defer observe(ctx, "latest_audit")()

	const query = `
		SELECT id, content_id, client_id, node_id, sub_protocol, strategy_variant, result, trace, created_at
		FROM audits
		WHERE sub_protocol = $1 AND strategy_variant = $2 AND result != $3
		ORDER BY created_at DESC, id DESC
		LIMIT 1`

	var row auditRow
	err := s.db.GetContext(ctx, &row, query, int(strategy.SubProtocol), int(strategy.Variant), int(entity.AuditPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // no prior audit under this strategy yet; not an error
		}
		return nil, glerr.Transport("latest_audit", fmt.Errorf("query latest audit: %w", err))
	}
	e := row.toEntity()
	return &e, nil
}

// LatestContentBySubProtocolBlock resolves the content key for a block
// number and content type, used by the Sync strategy to derive content
// keys deterministically.
func (s *Store) LatestContentBySubProtocolBlock(ctx context.Context, subProtocol entity.SubProtocol, contentType entity.ContentType, blockNumber uint64) (*entity.ContentKey, error) {
	defer observe(ctx, "latest_content_by_sub_protocol_block")()

	const query = `
		SELECT id, sub_protocol, key_bytes, content_id, content_type, block_number, first_seen_at
		FROM content_keys
		WHERE sub_protocol = $1 AND content_type = $2 AND block_number = $3
		LIMIT 1`

	var row contentRow
	if err := s.db.GetContext(ctx, &row, query, int(subProtocol), int(contentType), int64(blockNumber)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, glerr.Transport("latest_content_by_sub_protocol_block", fmt.Errorf("query content for block %d: %w", blockNumber, err))
	}
	e := row.toEntity()
	return &e, nil
}

// ContentBlockNumber resolves the block number recorded against a content
// id, used by the Sync strategy to resume its cursor.
func (s *Store) ContentBlockNumber(ctx context.Context, contentID int64) (*uint64, error) {
	defer observe(ctx, "content_block_number")()

	const query = `SELECT block_number FROM content_keys WHERE id = $1`

	var blockNumber *int64
	if err := s.db.GetContext(ctx, &blockNumber, query, contentID); err != nil {
		return nil, glerr.NotFound("content_block_number", fmt.Errorf("content id %d: %w", contentID, err))
	}
	if blockNumber == nil {
		return nil, nil
	}
	bn := uint64(*blockNumber)
	return &bn, nil
}

// RandomContentInRange picks a uniformly-random ContentKey id, excluding
// ids already chosen within the current batch (the Random strategy's
// within-batch deduplication).
func (s *Store) RandomContentInRange(ctx context.Context, subProtocol entity.SubProtocol, exclude []int64) (*entity.ContentKey, error) {
	defer observe(ctx, "random_content_in_range")()

	query := `
		SELECT id, sub_protocol, key_bytes, content_id, content_type, block_number, first_seen_at
		FROM content_keys
		WHERE sub_protocol = $1 AND NOT (id = ANY($2))
		ORDER BY random()
		LIMIT 1`

	var row contentRow
	if err := s.db.GetContext(ctx, &row, query, int(subProtocol), exclude); err != nil {
		return nil, glerr.NotFound("random_content_in_range", fmt.Errorf("no eligible content: %w", err))
	}
	e := row.toEntity()
	return &e, nil
}

// FindContentNeverAudited returns content keys with no terminal audit.
func (s *Store) FindContentNeverAudited(ctx context.Context, subProtocol entity.SubProtocol, descending bool, limit int) ([]entity.ContentKey, error) {
	defer observe(ctx, "find_content_never_audited")()

	order := "ASC"
	if descending {
		order = "DESC"
	}
	query := fmt.Sprintf(`
		SELECT ck.id, ck.sub_protocol, ck.key_bytes, ck.content_id, ck.content_type, ck.block_number, ck.first_seen_at
		FROM content_keys ck
		LEFT JOIN audit_latest al ON al.content_id = ck.id
		WHERE ck.sub_protocol = $1 AND al.content_id IS NULL
		ORDER BY ck.first_seen_at %s
		LIMIT $2`, order)

	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, query, int(subProtocol), limit); err != nil {
		return nil, glerr.Transport("find_content_never_audited", fmt.Errorf("query never-audited content: %w", err))
	}
	return toContentEntities(rows), nil
}

// FindAuditsWithOldestFailed returns content keys whose most recent
// terminal audit is Failure, ordered by that audit's created_at ascending.
func (s *Store) FindAuditsWithOldestFailed(ctx context.Context, subProtocol entity.SubProtocol, limit int) ([]entity.ContentKey, error) {
	defer observe(ctx, "find_audits_with_oldest_failed")()

	const query = `
		SELECT ck.id, ck.sub_protocol, ck.key_bytes, ck.content_id, ck.content_type, ck.block_number, ck.first_seen_at
		FROM content_keys ck
		JOIN audit_latest al ON al.content_id = ck.id
		JOIN audits a ON a.id = al.audit_id
		WHERE ck.sub_protocol = $1 AND a.result = $2
		ORDER BY a.created_at ASC
		LIMIT $3`

	var rows []contentRow
	if err := s.db.SelectContext(ctx, &rows, query, int(subProtocol), int(entity.AuditFailure), limit); err != nil {
		return nil, glerr.Transport("find_audits_with_oldest_failed", fmt.Errorf("query oldest-failed content: %w", err))
	}
	return toContentEntities(rows), nil
}

func toContentEntities(rows []contentRow) []entity.ContentKey {
	out := make([]entity.ContentKey, len(rows))
	for i, r := range rows {
		out[i] = r.toEntity()
	}
	return out
}

// ExpectedBlockHash returns the header hash recorded for a block number.
func (s *Store) ExpectedBlockHash(ctx context.Context, blockNumber uint64) ([32]byte, bool, error) {
	defer observe(ctx, "expected_block_hash")()

	const query = `SELECT header_hash FROM block_metadata WHERE block_number = $1`

	var hashBytes []byte
	err := s.db.GetContext(ctx, &hashBytes, query, int64(blockNumber))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return [32]byte{}, false, nil
		}
		return [32]byte{}, false, glerr.Transport("expected_block_hash", fmt.Errorf("query header hash for block %d: %w", blockNumber, err))
	}
	var hash [32]byte
	copy(hash[:], hashBytes)
	return hash, true, nil
}
