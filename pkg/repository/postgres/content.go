package postgres

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

func contentID(keyBytes []byte) [32]byte {
	return sha256.Sum256(keyBytes)
}

type contentRow struct {
	ID          int64  `db:"id"`
	SubProtocol int    `db:"sub_protocol"`
	KeyBytes    []byte `db:"key_bytes"`
	ContentID   []byte `db:"content_id"`
	ContentType int    `db:"content_type"`
	BlockNumber *int64 `db:"block_number"`
	FirstSeenAt int64  `db:"first_seen_at"`
}

func (r contentRow) toEntity() entity.ContentKey {
	ck := entity.ContentKey{
		ID:          r.ID,
		SubProtocol: entity.SubProtocol(r.SubProtocol),
		KeyBytes:    r.KeyBytes,
		ContentType: entity.ContentType(r.ContentType),
		FirstSeenAt: unixToTime(r.FirstSeenAt),
	}
	copy(ck.ContentID[:], r.ContentID)
	if r.BlockNumber != nil {
		bn := uint64(*r.BlockNumber)
		ck.BlockNumber = &bn
	}
	return ck
}

// UpsertContent creates or returns the existing ContentKey for
// (subProtocol, keyBytes).
func (s *Store) UpsertContent(ctx context.Context, subProtocol entity.SubProtocol, keyBytes []byte, blockNumber *uint64) (entity.ContentKey, error) {
	defer observe(ctx, "upsert_content")()

	kind := subProtocol.Kind()
	contentType, _ := kind.DecodeKey(keyBytes)
	cid := contentID(keyBytes)

	var blockNum *int64
	if blockNumber != nil {
		bn := int64(*blockNumber)
		blockNum = &bn
	}

	const query = `
		INSERT INTO content_keys (sub_protocol, key_bytes, content_id, content_type, block_number, first_seen_at)
		VALUES ($1, $2, $3, $4, $5, extract(epoch from now())::bigint)
		ON CONFLICT (sub_protocol, key_bytes) DO UPDATE SET sub_protocol = content_keys.sub_protocol
		RETURNING id, sub_protocol, key_bytes, content_id, content_type, block_number, first_seen_at`

	var row contentRow
	if err := s.db.GetContext(ctx, &row, query, int(subProtocol), keyBytes, cid[:], int(contentType), blockNum); err != nil {
		return entity.ContentKey{}, glerr.Conflict("upsert_content", fmt.Errorf("upsert content key: %w", err))
	}
	return row.toEntity(), nil
}
