package engine

import (
	"context"
	"time"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
	"github.com/ethereum/glados/pkg/repository"
)

// fakeRepository is an in-memory stand-in for repository.Repository used
// to drive Task and Pool tests without a database.
type fakeRepository struct {
	nextID int64

	createPendingErr  error
	recordResultErr   error
	upsertLatestErr   error
	insertFailuresErr error

	recordedResult entity.AuditResult
	recordedTrace  []byte
	insertedInputs []repository.TransferFailureInput
	upsertedAudit  int64
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{nextID: 1}
}

func (f *fakeRepository) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepository) UpsertContent(ctx context.Context, subProtocol entity.SubProtocol, keyBytes []byte, blockNumber *uint64) (entity.ContentKey, error) {
	return entity.ContentKey{ID: f.id(), SubProtocol: subProtocol, KeyBytes: keyBytes, BlockNumber: blockNumber}, nil
}

func (f *fakeRepository) GetOrCreateNode(ctx context.Context, nodeID [32]byte) (entity.Node, error) {
	return entity.Node{ID: f.id(), NodeID: nodeID}, nil
}

func (f *fakeRepository) GetOrCreateEnr(ctx context.Context, nodeID int64, sequenceNumber uint64, rawPayload []byte, protocolVersion *uint8) (entity.NodeEnr, error) {
	return entity.NodeEnr{ID: f.id(), NodeID: nodeID, SequenceNumber: sequenceNumber, RawPayload: rawPayload}, nil
}

func (f *fakeRepository) GetOrCreateClient(ctx context.Context, versionString string) (entity.Client, error) {
	return entity.Client{ID: f.id(), VersionString: versionString}, nil
}

func (f *fakeRepository) CreatePendingAudit(ctx context.Context, contentID, clientID, nodeID int64, strategy entity.Strategy) (entity.Audit, error) {
	if f.createPendingErr != nil {
		return entity.Audit{}, f.createPendingErr
	}
	return entity.Audit{ID: f.id(), ContentID: contentID, ClientID: clientID, NodeID: nodeID, Strategy: strategy, Result: entity.AuditPending}, nil
}

func (f *fakeRepository) RecordAuditResult(ctx context.Context, auditID int64, result entity.AuditResult, traceJSON []byte) (entity.Audit, error) {
	if f.recordResultErr != nil {
		return entity.Audit{}, f.recordResultErr
	}
	f.recordedResult = result
	f.recordedTrace = traceJSON
	return entity.Audit{ID: auditID, Result: result, Trace: traceJSON}, nil
}

func (f *fakeRepository) UpsertAuditLatest(ctx context.Context, contentID, auditID int64) error {
	if f.upsertLatestErr != nil {
		return f.upsertLatestErr
	}
	f.upsertedAudit = auditID
	return nil
}

func (f *fakeRepository) InsertTransferFailures(ctx context.Context, auditID int64, failures []repository.TransferFailureInput) error {
	if f.insertFailuresErr != nil {
		return f.insertFailuresErr
	}
	f.insertedInputs = failures
	return nil
}

func (f *fakeRepository) LatestAudit(ctx context.Context, strategy entity.Strategy) (*entity.Audit, error) {
	return nil, nil
}

func (f *fakeRepository) LatestContentBySubProtocolBlock(ctx context.Context, subProtocol entity.SubProtocol, contentType entity.ContentType, blockNumber uint64) (*entity.ContentKey, error) {
	return nil, nil
}

func (f *fakeRepository) ContentBlockNumber(ctx context.Context, contentID int64) (*uint64, error) {
	return nil, nil
}

func (f *fakeRepository) RandomContentInRange(ctx context.Context, subProtocol entity.SubProtocol, exclude []int64) (*entity.ContentKey, error) {
	return nil, glerr.NotFound("random_content_in_range", nil)
}

func (f *fakeRepository) FindContentNeverAudited(ctx context.Context, subProtocol entity.SubProtocol, descending bool, limit int) ([]entity.ContentKey, error) {
	return nil, nil
}

func (f *fakeRepository) FindAuditsWithOldestFailed(ctx context.Context, subProtocol entity.SubProtocol, limit int) ([]entity.ContentKey, error) {
	return nil, nil
}

func (f *fakeRepository) ExpectedBlockHash(ctx context.Context, blockNumber uint64) ([32]byte, bool, error) {
	return [32]byte{}, false, nil
}

func (f *fakeRepository) GetAuditStats(ctx context.Context, filter entity.StatsFilter, window time.Duration) (entity.AuditStats, error) {
	return entity.AuditStats{}, nil
}

func (f *fakeRepository) InsertAuditStats(ctx context.Context, stats entity.AuditStats) error {
	return nil
}

func (f *fakeRepository) DeleteAuditsOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) DeleteCensusOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) CountContentKeysBySubProtocol(ctx context.Context) (map[string]int64, error) {
	return nil, nil
}

func (f *fakeRepository) CountPendingAudits(ctx context.Context) (int64, error) {
	return 0, nil
}

func (f *fakeRepository) Close() error { return nil }

var _ repository.Repository = (*fakeRepository)(nil)
