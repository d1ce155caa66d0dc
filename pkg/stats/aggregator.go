package stats

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

// Repository is the subset of the Content Repository the aggregator
// needs: reading a success-rate snapshot and persisting it.
type Repository interface {
	GetAuditStats(ctx context.Context, filter entity.StatsFilter, window time.Duration) (entity.AuditStats, error)
	InsertAuditStats(ctx context.Context, stats entity.AuditStats) error
}

// Aggregator is the Stats Aggregator (C8): every Period it snapshots the
// success rate of every configured Filter over the trailing RateWindow
// and writes one AuditStats row per filter.
type Aggregator struct {
	repo       Repository
	filters    []entity.StatsFilter
	period     time.Duration
	rateWindow time.Duration

	stopCh chan struct{}
	logger zerolog.Logger
}

// New builds an Aggregator. filters is the configuration-time list of
// (sub_protocol, strategy, content_type) slices to snapshot each tick.
func New(repo Repository, filters []entity.StatsFilter, period, rateWindow time.Duration) *Aggregator {
	return &Aggregator{
		repo:       repo,
		filters:    filters,
		period:     period,
		rateWindow: rateWindow,
		stopCh:     make(chan struct{}),
		logger:     log.WithComponent("stats"),
	}
}

// Start begins the snapshot loop in a goroutine.
func (a *Aggregator) Start() { go a.run() }

// Stop terminates the snapshot loop.
func (a *Aggregator) Stop() { close(a.stopCh) }

func (a *Aggregator) run() {
	ticker := time.NewTicker(a.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.tick(context.Background())
		case <-a.stopCh:
			return
		}
	}
}

// tick snapshots every configured filter in parallel and writes one row
// per filter. A filter whose query fails logs and contributes a
// zero-value snapshot rather than being skipped outright, per spec.md
// §4.8; only a failing insert drops a row.
func (a *Aggregator) tick(ctx context.Context) {
	timer := metrics.NewTimer()
	defer timer.ObserveDuration(metrics.StatsSnapshotDuration)

	group, gctx := errgroup.WithContext(ctx)
	for _, filter := range a.filters {
		filter := filter
		group.Go(func() error {
			a.snapshot(gctx, filter)
			return nil
		})
	}
	_ = group.Wait()
}

func (a *Aggregator) snapshot(ctx context.Context, filter entity.StatsFilter) {
	result, err := a.repo.GetAuditStats(ctx, filter, a.rateWindow)
	if err != nil {
		a.logger.Warn().Str("filter", filter.Label()).Err(err).Msg("compute audit stats, recording zero snapshot")
		result = entity.AuditStats{Filter: filter, Period: a.rateWindow}
	}

	if err := a.repo.InsertAuditStats(ctx, result); err != nil {
		a.logger.Warn().Str("filter", filter.Label()).Err(err).Msg("insert audit stats row")
	}
}
