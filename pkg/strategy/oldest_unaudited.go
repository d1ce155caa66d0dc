package strategy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// OldestUnauditedProducer emits a batch of never-audited ContentKeys every
// tick, ordered by ascending first-seen timestamp (the oldest-discovered
// backlog first) — the inverse ordering from Latest.
type OldestUnauditedProducer struct {
	repo     repository.Repository
	strategy entity.Strategy
	out      chan entity.AuditTask
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewOldestUnauditedProducer builds an OldestUnaudited producer for subProtocol.
func NewOldestUnauditedProducer(repo repository.Repository, subProtocol entity.SubProtocol) *OldestUnauditedProducer {
	strategy := entity.Strategy{SubProtocol: subProtocol, Variant: entity.StrategyOldestUnaudited}
	return &OldestUnauditedProducer{
		repo:     repo,
		strategy: strategy,
		out:      make(chan entity.AuditTask, outChannelCapacity),
		stopCh:   make(chan struct{}),
		logger:   producerLogger(strategy),
	}
}

func (p *OldestUnauditedProducer) Output() <-chan entity.AuditTask { return p.out }

func (p *OldestUnauditedProducer) Start() { go p.run() }

func (p *OldestUnauditedProducer) Stop() { close(p.stopCh) }

func (p *OldestUnauditedProducer) run() {
	defer close(p.out)

	ticker := time.NewTicker(batchTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.tick(context.Background())
		}
	}
}

func (p *OldestUnauditedProducer) tick(ctx context.Context) {
	candidates, err := p.repo.FindContentNeverAudited(ctx, p.strategy.SubProtocol, false, batchSize)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to query never-audited content")
		return
	}
	for _, content := range candidates {
		trySend(p.out, entity.AuditTask{Strategy: p.strategy, Content: content}, p.logger)
	}
}
