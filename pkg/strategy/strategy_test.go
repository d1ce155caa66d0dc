package strategy

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/glerr"
	"github.com/ethereum/glados/pkg/repository"
)

// fakeRepository is a minimal in-memory stand-in for repository.Repository,
// exercising only the read paths each producer calls.
type fakeRepository struct {
	mu sync.Mutex

	contentByID     map[int64]entity.ContentKey
	neverAudited    []entity.ContentKey
	oldestFailed    []entity.ContentKey
	latestAudit     *entity.Audit
	blockNumbers    map[int64]*uint64
	upsertedKeys    [][]byte
	nextContentID   int64
	latestAuditErr  error
	upsertErr       error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		contentByID:   make(map[int64]entity.ContentKey),
		blockNumbers:  make(map[int64]*uint64),
		nextContentID: 1,
	}
}

func (f *fakeRepository) UpsertContent(ctx context.Context, subProtocol entity.SubProtocol, keyBytes []byte, blockNumber *uint64) (entity.ContentKey, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.upsertErr != nil {
		return entity.ContentKey{}, f.upsertErr
	}
	f.upsertedKeys = append(f.upsertedKeys, keyBytes)
	id := f.nextContentID
	f.nextContentID++
	ck := entity.ContentKey{ID: id, SubProtocol: subProtocol, KeyBytes: keyBytes, BlockNumber: blockNumber}
	f.contentByID[id] = ck
	f.blockNumbers[id] = blockNumber
	return ck, nil
}

func (f *fakeRepository) GetOrCreateNode(ctx context.Context, nodeID [32]byte) (entity.Node, error) {
	return entity.Node{}, nil
}
func (f *fakeRepository) GetOrCreateEnr(ctx context.Context, nodeID int64, sequenceNumber uint64, rawPayload []byte, protocolVersion *uint8) (entity.NodeEnr, error) {
	return entity.NodeEnr{}, nil
}
func (f *fakeRepository) GetOrCreateClient(ctx context.Context, versionString string) (entity.Client, error) {
	return entity.Client{}, nil
}
func (f *fakeRepository) CreatePendingAudit(ctx context.Context, contentID, clientID, nodeID int64, strategy entity.Strategy) (entity.Audit, error) {
	return entity.Audit{}, nil
}
func (f *fakeRepository) RecordAuditResult(ctx context.Context, auditID int64, result entity.AuditResult, traceJSON []byte) (entity.Audit, error) {
	return entity.Audit{}, nil
}
func (f *fakeRepository) UpsertAuditLatest(ctx context.Context, contentID, auditID int64) error {
	return nil
}
func (f *fakeRepository) InsertTransferFailures(ctx context.Context, auditID int64, failures []repository.TransferFailureInput) error {
	return nil
}

func (f *fakeRepository) LatestAudit(ctx context.Context, strategy entity.Strategy) (*entity.Audit, error) {
	if f.latestAuditErr != nil {
		return nil, f.latestAuditErr
	}
	return f.latestAudit, nil
}

func (f *fakeRepository) LatestContentBySubProtocolBlock(ctx context.Context, subProtocol entity.SubProtocol, contentType entity.ContentType, blockNumber uint64) (*entity.ContentKey, error) {
	return nil, nil
}

func (f *fakeRepository) ContentBlockNumber(ctx context.Context, contentID int64) (*uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	bn, ok := f.blockNumbers[contentID]
	if !ok {
		return nil, glerr.NotFound("content_block_number", context.DeadlineExceeded)
	}
	return bn, nil
}

func (f *fakeRepository) RandomContentInRange(ctx context.Context, subProtocol entity.SubProtocol, exclude []int64) (*entity.ContentKey, error) {
	return nil, glerr.NotFound("random_content_in_range", context.DeadlineExceeded)
}

func (f *fakeRepository) FindContentNeverAudited(ctx context.Context, subProtocol entity.SubProtocol, descending bool, limit int) ([]entity.ContentKey, error) {
	return f.neverAudited, nil
}

func (f *fakeRepository) FindAuditsWithOldestFailed(ctx context.Context, subProtocol entity.SubProtocol, limit int) ([]entity.ContentKey, error) {
	return f.oldestFailed, nil
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
func (f *fakeRepository) CountPendingAudits(ctx context.Context) (int64, error) { return 0, nil }
func (f *fakeRepository) Close() error                                         { return nil }

var _ repository.Repository = (*fakeRepository)(nil)
