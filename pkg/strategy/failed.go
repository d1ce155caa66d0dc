package strategy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// FailedProducer emits a batch of ContentKeys whose most recent terminal
// audit is Failure, ordered by that audit's timestamp ascending (the
// longest-failing content first).
type FailedProducer struct {
	repo     repository.Repository
	strategy entity.Strategy
	out      chan entity.AuditTask
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewFailedProducer builds a Failed producer for subProtocol.
func NewFailedProducer(repo repository.Repository, subProtocol entity.SubProtocol) *FailedProducer {
	strategy := entity.Strategy{SubProtocol: subProtocol, Variant: entity.StrategyFailed}
	return &FailedProducer{
		repo:     repo,
		strategy: strategy,
		out:      make(chan entity.AuditTask, outChannelCapacity),
		stopCh:   make(chan struct{}),
		logger:   producerLogger(strategy),
	}
}

func (p *FailedProducer) Output() <-chan entity.AuditTask { return p.out }

func (p *FailedProducer) Start() { go p.run() }

func (p *FailedProducer) Stop() { close(p.stopCh) }

func (p *FailedProducer) run() {
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

func (p *FailedProducer) tick(ctx context.Context) {
	candidates, err := p.repo.FindAuditsWithOldestFailed(ctx, p.strategy.SubProtocol, batchSize)
	if err != nil {
		p.logger.Warn().Err(err).Msg("failed to query oldest-failed content")
		return
	}
	for _, content := range candidates {
		trySend(p.out, entity.AuditTask{Strategy: p.strategy, Content: content}, p.logger)
	}
}
