package strategy

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// batchTickInterval is the default period for the batch-reading
// strategies (Random, Latest, Failed, OldestUnaudited), per spec.md §4.4.
const batchTickInterval = 120 * time.Second

// RandomProducer emits a batch of uniformly-random ContentKeys every tick,
// deduplicated within the batch.
type RandomProducer struct {
	repo     repository.Repository
	strategy entity.Strategy
	out      chan entity.AuditTask
	stopCh   chan struct{}
	logger   zerolog.Logger
}

// NewRandomProducer builds a Random producer for subProtocol.
func NewRandomProducer(repo repository.Repository, subProtocol entity.SubProtocol) *RandomProducer {
	strategy := entity.Strategy{SubProtocol: subProtocol, Variant: entity.StrategyRandom}
	return &RandomProducer{
		repo:     repo,
		strategy: strategy,
		out:      make(chan entity.AuditTask, outChannelCapacity),
		stopCh:   make(chan struct{}),
		logger:   producerLogger(strategy),
	}
}

func (p *RandomProducer) Output() <-chan entity.AuditTask { return p.out }

func (p *RandomProducer) Start() { go p.run() }

func (p *RandomProducer) Stop() { close(p.stopCh) }

func (p *RandomProducer) run() {
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

func (p *RandomProducer) tick(ctx context.Context) {
	chosen := make([]int64, 0, batchSize)
	for i := 0; i < batchSize; i++ {
		content, err := p.repo.RandomContentInRange(ctx, p.strategy.SubProtocol, chosen)
		if err != nil {
			p.logger.Debug().Err(err).Msg("no eligible random content this tick")
			return
		}
		chosen = append(chosen, content.ID)
		trySend(p.out, entity.AuditTask{Strategy: p.strategy, Content: *content}, p.logger)
	}
}
