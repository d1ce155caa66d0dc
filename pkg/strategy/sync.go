package strategy

import (
	"context"
	"encoding/binary"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// MergeBlockHeight is the first post-merge History block number: the Sync
// cursor wraps back to 0 once it reaches this height.
const MergeBlockHeight uint64 = 15537394

// syncTickInterval paces the Sync producer's cursor; it has no waiting
// batch query like the other strategies, only one content-type pair
// derived per tick, so it ticks far faster than the 120s period the
// batch-reading strategies use.
const syncTickInterval = 50 * time.Millisecond

// SyncProducer advances a cursor block number for the History
// sub-protocol, deriving a BlockBody and a Receipts content key per block
// deterministically from the block number.
type SyncProducer struct {
	repo   repository.Repository
	out    chan entity.AuditTask
	stopCh chan struct{}
	logger zerolog.Logger
}

// NewSyncProducer builds a Sync producer for the History sub-protocol.
func NewSyncProducer(repo repository.Repository) *SyncProducer {
	strategy := entity.Strategy{SubProtocol: entity.SubProtocolHistory, Variant: entity.StrategySync}
	return &SyncProducer{
		repo:   repo,
		out:    make(chan entity.AuditTask, outChannelCapacity),
		stopCh: make(chan struct{}),
		logger: producerLogger(strategy),
	}
}

func (p *SyncProducer) Output() <-chan entity.AuditTask { return p.out }

func (p *SyncProducer) Start() { go p.run() }

func (p *SyncProducer) Stop() { close(p.stopCh) }

func (p *SyncProducer) run() {
	defer close(p.out)

	ctx := context.Background()
	strategy := entity.Strategy{SubProtocol: entity.SubProtocolHistory, Variant: entity.StrategySync}
	blockNumber := p.resumeCursor(ctx, strategy)

	ticker := time.NewTicker(syncTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			blockNumber = wrapBlockNumber(blockNumber)
			p.auditBlock(ctx, strategy, blockNumber)
			blockNumber++
		}
	}
}

// wrapBlockNumber resets the cursor to genesis once it reaches the
// post-merge boundary.
func wrapBlockNumber(blockNumber uint64) uint64 {
	if blockNumber >= MergeBlockHeight {
		return 0
	}
	return blockNumber
}

// resumeCursor starts the cursor at (latest terminal Sync audit's block
// number) + 1, or 0 if no prior Sync audit exists.
func (p *SyncProducer) resumeCursor(ctx context.Context, strategy entity.Strategy) uint64 {
	audit, err := p.repo.LatestAudit(ctx, strategy)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to resolve latest sync audit, resuming from genesis")
		return 0
	}
	if audit == nil {
		return 0
	}
	blockNumber, err := p.repo.ContentBlockNumber(ctx, audit.ContentID)
	if err != nil || blockNumber == nil {
		p.logger.Warn().Int64("audit.id", audit.ID).Msg("latest sync audit has no associated block number, resuming from genesis")
		return 0
	}
	return *blockNumber + 1
}

func (p *SyncProducer) auditBlock(ctx context.Context, strategy entity.Strategy, blockNumber uint64) {
	p.emit(ctx, strategy, blockNumber, entity.ContentTypeBlockBody, 0x01)
	p.emit(ctx, strategy, blockNumber, entity.ContentTypeReceipts, 0x02)
}

// emit derives a deterministic key for (contentType, blockNumber) — a tag
// byte identifying the content type followed by the big-endian block
// number — upserts it, and enqueues the resulting AuditTask.
func (p *SyncProducer) emit(ctx context.Context, strategy entity.Strategy, blockNumber uint64, contentType entity.ContentType, tag byte) {
	keyBytes := encodeBlockKey(tag, blockNumber)
	content, err := p.repo.UpsertContent(ctx, entity.SubProtocolHistory, keyBytes, &blockNumber)
	if err != nil {
		p.logger.Warn().Err(err).Uint64("block_number", blockNumber).Str("content_type", contentType.String()).Msg("failed to upsert sync content key")
		return
	}
	trySend(p.out, entity.AuditTask{Strategy: strategy, Content: content}, p.logger)
}

func encodeBlockKey(tag byte, blockNumber uint64) []byte {
	keyBytes := make([]byte, 9)
	keyBytes[0] = tag
	binary.BigEndian.PutUint64(keyBytes[1:], blockNumber)
	return keyBytes
}
