package strategy

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

const (
	// outChannelCapacity is the bounded outbound channel size shared by
	// every producer, per spec.md §4.4.
	outChannelCapacity = 100

	// batchSize is the default candidate batch (K) read from the
	// repository per tick.
	batchSize = 10
)

// Producer is a strategy fiber: Start begins its ticker loop in a
// goroutine, Stop terminates it, and Output is the channel the collator
// drains.
type Producer interface {
	Start()
	Stop()
	Output() <-chan entity.AuditTask
}

// trySend performs a non-blocking enqueue onto out. A full channel is
// logged and counted as a dropped task rather than blocking the fiber.
func trySend(out chan<- entity.AuditTask, task entity.AuditTask, logger zerolog.Logger) {
	select {
	case out <- task:
		metrics.TasksProduced.WithLabelValues(task.Strategy.Key()).Inc()
	default:
		logger.Warn().
			Str("content.key", fmt.Sprintf("%x", task.Content.KeyBytes)).
			Msg("outbound channel full, dropping audit task")
		metrics.TasksDropped.WithLabelValues(task.Strategy.Key()).Inc()
	}
}

func producerLogger(strategy entity.Strategy) zerolog.Logger {
	return log.WithStrategy(log.WithComponent("strategy"), strategy.Key())
}
