package strategy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// LatestProducer emits a batch of never-audited ContentKeys every tick,
// ordered by descending first-seen timestamp (the most recently
// discovered content first).
type LatestProducer struct {
	repo     repository.Repository
	strategy entity.Strategy
	out      chan entity.AuditTask
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewLatestProducer builds a Latest producer for subProtocol.
func NewLatestProducer(repo repository.Repository, subProtocol entity.SubProtocol) *LatestProducer {
	strategy := entity.Strategy{SubProtocol: subProtocol, Variant: entity.StrategyLatest}
	return &LatestProducer{
		repo:     repo,
		strategy: strategy,
		out:      make(chan entity.AuditTask, outChannelCapacity),
		stopCh:   make(chan struct{}),
		logger:   producerLogger(strategy),
	}
}

func (p *LatestProducer) Output() <-chan entity.AuditTask { return p.out }

func (p *LatestProducer) Start() { go p.run() }

func (p *LatestProducer) Stop() { close(p.stopCh) }

func (p *LatestProducer) run() {
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

func (p *LatestProducer) tick(ctx context.Context) {
	candidates, err := p.repo.FindContentNeverAudited(ctx, p.strategy.SubProtocol, true, batchSize)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to query never-audited content")
		return
	}
	for _, content := range candidates {
		trySend(p.out, entity.AuditTask{Strategy: p.strategy, Content: content}, p.logger)
	}
}
