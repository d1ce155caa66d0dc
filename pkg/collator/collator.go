package collator

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

// idleSleep paces retries when a full pass forwards nothing, avoiding a
// busy loop while still noticing new tasks quickly.
const idleSleep = 20 * time.Millisecond

// Triple is one strategy's contribution to the collator: its identity
// (for logging), its relative weight, and the inbound channel a Producer
// feeds.
type Triple struct {
	Strategy entity.Strategy
	Weight   int
	Inbound  <-chan entity.AuditTask
}

// Collator merges triples' inbound channels into a single outbound
// channel per spec.md §4.5's weighted round-robin algorithm.
type Collator struct {
	triples []Triple
	out     chan entity.AuditTask
	stopCh  chan struct{}
	logger  zerolog.Logger
}

// New builds a Collator over triples, visited in the given declaration
// order on every pass. outCapacity sizes the outbound channel buffer.
func New(triples []Triple, outCapacity int) *Collator {
	return &Collator{
		triples: triples,
		out:     make(chan entity.AuditTask, outCapacity),
		stopCh:  make(chan struct{}),
		logger:  log.WithComponent("collator"),
	}
}

// Output is the single merged outbound channel the Worker Pool drains.
func (c *Collator) Output() <-chan entity.AuditTask { return c.out }

// Start begins the collator's merge loop in a goroutine.
func (c *Collator) Start() { go c.run() }

// Stop terminates the merge loop and closes the outbound channel.
func (c *Collator) Stop() { close(c.stopCh) }

func (c *Collator) run() {
	defer close(c.out)

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		forwarded := c.pass()
		if forwarded == 0 {
			metrics.CollatorIdleCycles.Inc()
			select {
			case <-c.stopCh:
				return
			case <-time.After(idleSleep):
			}
		}
	}
}

// pass visits every triple once in declaration order, forwarding up to
// weight tasks from each, and returns the total number forwarded.
func (c *Collator) pass() int {
	forwarded := 0
	for _, triple := range c.triples {
		for i := 0; i < triple.Weight; i++ {
			task, ok := c.tryReceive(triple.Inbound)
			if !ok {
				break
			}
			if !c.forward(task) {
				return forwarded
			}
			forwarded++
		}
	}
	return forwarded
}

func (c *Collator) tryReceive(inbound <-chan entity.AuditTask) (entity.AuditTask, bool) {
	select {
	case task, open := <-inbound:
		if !open {
			return entity.AuditTask{}, false
		}
		return task, true
	default:
		return entity.AuditTask{}, false
	}
}

// forward blocks until the task is delivered or the collator is
// stopped, returning false in the latter case so pass can unwind.
func (c *Collator) forward(task entity.AuditTask) bool {
	select {
	case c.out <- task:
		return true
	case <-c.stopCh:
		return false
	}
}
