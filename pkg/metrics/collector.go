package metrics

import (
	"context"
	"time"

	"github.com/ethereum/glados/pkg/log"
)

// Repository is the subset of the content repository the collector polls to
// populate gauges that aren't naturally updated on the request path.
type Repository interface {
	CountContentKeysBySubProtocol(ctx context.Context) (map[string]int64, error)
	CountPendingAudits(ctx context.Context) (int64, error)
}

// Collector periodically polls the repository for gauge-style metrics that
// have no natural counter/histogram call site, mirroring the teacher's
// manager-polling collector but against Glados' content repository.
type Collector struct {
	repo   Repository
	stopCh chan struct{}
}

// NewCollector creates a new metrics collector.
func NewCollector(repo Repository) *Collector {
	return &Collector{
		repo:   repo,
		stopCh: make(chan struct{}),
	}
}

// Start begins collecting metrics every 15 seconds.
func (c *Collector) Start() {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector.
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c.collectContentKeyMetrics(ctx)
	c.collectPendingAuditMetrics(ctx)
}

func (c *Collector) collectContentKeyMetrics(ctx context.Context) {
	counts, err := c.repo.CountContentKeysBySubProtocol(ctx)
	if err != nil {
		log.WithComponent("metrics.collector").Warn().Err(err).Msg("count content keys by sub-protocol")
		return
	}

	for subProtocol, count := range counts {
		ContentKeysTotal.WithLabelValues(subProtocol).Set(float64(count))
	}
}

func (c *Collector) collectPendingAuditMetrics(ctx context.Context) {
	count, err := c.repo.CountPendingAudits(ctx)
	if err != nil {
		log.WithComponent("metrics.collector").Warn().Err(err).Msg("count pending audits")
		return
	}

	PendingAuditsTotal.Set(float64(count))
}
