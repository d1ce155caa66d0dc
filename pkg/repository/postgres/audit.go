package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
)

type auditRow struct {
	ID          int64   `db:"id"`
	ContentID   int64   `db:"content_id"`
	ClientID    int64   `db:"client_id"`
	NodeID      int64   `db:"node_id"`
	SubProtocol int     `db:"sub_protocol"`
	Variant     int     `db:"strategy_variant"`
	Result      int     `db:"result"`
	Trace       []byte  `db:"trace"`
	CreatedAt   int64   `db:"created_at"`
}

func (r auditRow) toEntity() entity.Audit {
	return entity.Audit{
		ID:        r.ID,
		ContentID: r.ContentID,
		ClientID:  r.ClientID,
		NodeID:    r.NodeID,
		Strategy: entity.Strategy{
			SubProtocol: entity.SubProtocol(r.SubProtocol),
			Variant:     entity.StrategyVariant(r.Variant),
		},
		Result:    entity.AuditResult(r.Result),
		Trace:     r.Trace,
		CreatedAt: unixToTime(r.CreatedAt),
	}
}

// CreatePendingAudit inserts an Audit row with Result = Pending.
func (s *Store) CreatePendingAudit(ctx context.Context, contentID, clientID, nodeID int64, strategy entity.Strategy) (entity.Audit, error) {
	defer observe(ctx, "create_pending_audit")()

	const query = `
		INSERT INTO audits (content_id, client_id, node_id, sub_protocol, strategy_variant, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, extract(epoch from now())::bigint)
		RETURNING id, content_id, client_id, node_id, sub_protocol, strategy_variant, result, trace, created_at`

	var row auditRow
	err := s.db.GetContext(ctx, &row, query,
		contentID, clientID, nodeID,
		int(strategy.SubProtocol), int(strategy.Variant), int(entity.AuditPending))
	if err != nil {
		return entity.Audit{}, glerr.Transport("create_pending_audit", fmt.Errorf("insert pending audit: %w", err))
	}
	return row.toEntity(), nil
}

// RecordAuditResult transitions a Pending audit to a terminal result.
func (s *Store) RecordAuditResult(ctx context.Context, auditID int64, result entity.AuditResult, traceJSON []byte) (entity.Audit, error) {
	defer observe(ctx, "record_audit_result")()

	const query = `
		UPDATE audits SET result = $2, trace = $3
		WHERE id = $1 AND result = $4
		RETURNING id, content_id, client_id, node_id, sub_protocol, strategy_variant, result, trace, created_at`

	var row auditRow
	err := s.db.GetContext(ctx, &row, query, auditID, int(result), traceJSON, int(entity.AuditPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entity.Audit{}, glerr.InvalidTransition("record_audit_result", fmt.Errorf("audit %d is not pending: %w", auditID, err))
		}
		return entity.Audit{}, glerr.Transport("record_audit_result", fmt.Errorf("update audit %d: %w", auditID, err))
	}
	return row.toEntity(), nil
}

// UpsertAuditLatest atomically sets the latest terminal audit pointer,
// refusing to regress to an older audit.
func (s *Store) UpsertAuditLatest(ctx context.Context, contentID, auditID int64) error {
	defer observe(ctx, "upsert_audit_latest")()

	const query = `
		INSERT INTO audit_latest (content_id, audit_id)
		VALUES ($1, $2)
		ON CONFLICT (content_id) DO UPDATE SET audit_id = EXCLUDED.audit_id
		WHERE (SELECT created_at FROM audits WHERE id = EXCLUDED.audit_id) >
		      (SELECT created_at FROM audits WHERE id = audit_latest.audit_id)`

	if _, err := s.db.ExecContext(ctx, query, contentID, auditID); err != nil {
		return glerr.Conflict("upsert_audit_latest", fmt.Errorf("upsert audit latest: %w", err))
	}
	return nil
}

// InsertTransferFailures bulk-inserts per-hop transfer failures, resolving
// each sender's ENR via GetOrCreateEnr first.
func (s *Store) InsertTransferFailures(ctx context.Context, auditID int64, failures []TransferFailureInput) error {
	defer observe(ctx, "insert_transfer_failures")()

	if len(failures) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return glerr.Transport("insert_transfer_failures", fmt.Errorf("begin tx: %w", err))
	}
	defer tx.Rollback()

	for _, f := range failures {
		node, err := s.GetOrCreateNode(ctx, f.SenderNodeID)
		if err != nil {
			return err
		}
		enr, err := s.GetOrCreateEnr(ctx, node.ID, f.SenderEnrSeq, f.SenderEnrRaw, nil)
		if err != nil {
			return err
		}

		const query = `INSERT INTO audit_transfer_failures (audit_id, sender_enr, kind) VALUES ($1, $2, $3)`
		if _, err := tx.ExecContext(ctx, query, auditID, enr.ID, int(f.Kind)); err != nil {
			return glerr.Transport("insert_transfer_failures", fmt.Errorf("insert transfer failure: %w", err))
		}
	}

	if err := tx.Commit(); err != nil {
		return glerr.Transport("insert_transfer_failures", fmt.Errorf("commit tx: %w", err))
	}
	return nil
}
