package strategy

import (
	"fmt"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/repository"
)

// New builds the Producer for strategy, dispatching on its variant.
func New(repo repository.Repository, strategy entity.Strategy) (Producer, error) {
	switch strategy.Variant {
	case entity.StrategySync:
		if strategy.SubProtocol != entity.SubProtocolHistory {
			return nil, fmt.Errorf("sync strategy is only defined for the history sub-protocol, got %s", strategy.SubProtocol)
		}
		return NewSyncProducer(repo), nil
	case entity.StrategyRandom:
		return NewRandomProducer(repo, strategy.SubProtocol), nil
	case entity.StrategyLatest:
		return NewLatestProducer(repo, strategy.SubProtocol), nil
	case entity.StrategyFailed:
		return NewFailedProducer(repo, strategy.SubProtocol), nil
	case entity.StrategyOldestUnaudited:
		return NewOldestUnauditedProducer(repo, strategy.SubProtocol), nil
	default:
		return nil, fmt.Errorf("unknown strategy variant %v", strategy.Variant)
	}
}
