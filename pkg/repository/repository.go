package repository

import (
	"context"
	"time"

	"github.com/ethereum/glados/pkg/entity"
)

// TransferFailureInput is one per-hop failure to persist against an Audit,
// keyed by the sender's raw ENR bytes (resolved to a NodeEnr row inside
// InsertTransferFailures).
type TransferFailureInput struct {
	SenderNodeID  [32]byte
	SenderEnrSeq  uint64
	SenderEnrRaw  []byte
	Kind          entity.FailureKind
}

// Repository is the sole owner of every persisted entity in the audit
// core. All operations are safe for concurrent use by multiple worker
// fibers; the backend is responsible for its own transactional semantics.
//
// Every operation returns a *glerr.Error classified per spec.md §7 on
// failure: NotFound, Conflict, TransportError, or InvalidTransition.
type Repository interface {
	// UpsertContent creates or returns the existing ContentKey for
	// (subProtocol, keyBytes), setting FirstSeenAt on insert only.
	UpsertContent(ctx context.Context, subProtocol entity.SubProtocol, keyBytes []byte, blockNumber *uint64) (entity.ContentKey, error)

	GetOrCreateNode(ctx context.Context, nodeID [32]byte) (entity.Node, error)

	// GetOrCreateEnr matches by (nodeID, sequenceNumber) and may update the
	// raw payload of an existing row.
	GetOrCreateEnr(ctx context.Context, nodeID int64, sequenceNumber uint64, rawPayload []byte, protocolVersion *uint8) (entity.NodeEnr, error)

	GetOrCreateClient(ctx context.Context, versionString string) (entity.Client, error)

	// CreatePendingAudit inserts an Audit row with Result = Pending and
	// CreatedAt = now.
	CreatePendingAudit(ctx context.Context, contentID, clientID, nodeID int64, strategy entity.Strategy) (entity.Audit, error)

	// RecordAuditResult transitions a Pending audit to a terminal result.
	// Fails with glerr.KindInvalidTransition if the audit is not Pending.
	RecordAuditResult(ctx context.Context, auditID int64, result entity.AuditResult, traceJSON []byte) (entity.Audit, error)

	// UpsertAuditLatest atomically sets the latest terminal audit pointer
	// for a content id, enforcing that the incoming audit is newer than
	// whatever it replaces.
	UpsertAuditLatest(ctx context.Context, contentID, auditID int64) error

	InsertTransferFailures(ctx context.Context, auditID int64, failures []TransferFailureInput) error

	// LatestAudit returns the most recent terminal audit created under the
	// given strategy, or nil if none exists.
	LatestAudit(ctx context.Context, strategy entity.Strategy) (*entity.Audit, error)

	// LatestContentBySubProtocolBlock resolves the content key for a given
	// block number and content type within a sub-protocol, used by the
	// Sync strategy to derive per-block-number content keys deterministically.
	LatestContentBySubProtocolBlock(ctx context.Context, subProtocol entity.SubProtocol, contentType entity.ContentType, blockNumber uint64) (*entity.ContentKey, error)

	// ContentBlockNumber resolves the block number recorded against a
	// content id, used by the Sync strategy to resume its cursor from the
	// block number of its own latest terminal audit.
	ContentBlockNumber(ctx context.Context, contentID int64) (*uint64, error)

	// RandomContentInRange picks a uniformly-random ContentKey of
	// subProtocol, excluding ids already chosen within the current batch.
	RandomContentInRange(ctx context.Context, subProtocol entity.SubProtocol, exclude []int64) (*entity.ContentKey, error)

	// FindContentNeverAudited returns up to limit ContentKeys with no
	// terminal audit, ordered by FirstSeenAt according to descending.
	FindContentNeverAudited(ctx context.Context, subProtocol entity.SubProtocol, descending bool, limit int) ([]entity.ContentKey, error)

	// FindAuditsWithOldestFailed returns up to limit ContentKeys whose most
	// recent terminal audit is Failure, ordered by that audit's CreatedAt
	// ascending.
	FindAuditsWithOldestFailed(ctx context.Context, subProtocol entity.SubProtocol, limit int) ([]entity.ContentKey, error)

	// ExpectedBlockHash returns the header hash recorded for a block
	// number, used by the Validator's header-by-number and body/receipts
	// cross-checks.
	ExpectedBlockHash(ctx context.Context, blockNumber uint64) ([32]byte, bool, error)

	// GetAuditStats computes the success-rate snapshot for filter over
	// audits created within [now-window, now].
	GetAuditStats(ctx context.Context, filter entity.StatsFilter, window time.Duration) (entity.AuditStats, error)

	InsertAuditStats(ctx context.Context, stats entity.AuditStats) error

	DeleteAuditsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteCensusOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	CountContentKeysBySubProtocol(ctx context.Context) (map[string]int64, error)
	CountPendingAudits(ctx context.Context) (int64, error)

	Close() error
}
