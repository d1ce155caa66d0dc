package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
)

const (
	auditTickInterval  = 10 * time.Second
	censusTickInterval = time.Hour
)

// Repository is the subset of the Content Repository the enforcer
// needs: bounded deletes against the audit and census tables.
type Repository interface {
	DeleteAuditsOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteCensusOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Enforcer is the Retention Enforcer (C9): two independently-ticking
// loops deleting rows older than their configured window. A loop whose
// window is nil never starts.
type Enforcer struct {
	repo Repository

	auditWindow  *time.Duration
	censusWindow *time.Duration

	stopCh chan struct{}
	logger zerolog.Logger
}

// New builds an Enforcer. A nil window leaves the corresponding loop
// disabled, per spec.md §4.9.
func New(repo Repository, auditWindow, censusWindow *time.Duration) *Enforcer {
	return &Enforcer{
		repo:         repo,
		auditWindow:  auditWindow,
		censusWindow: censusWindow,
		stopCh:       make(chan struct{}),
		logger:       log.WithComponent("retention"),
	}
}

// Start begins whichever loops have a configured window.
func (e *Enforcer) Start() {
	if e.auditWindow != nil {
		go e.run("audits", auditTickInterval, *e.auditWindow, e.repo.DeleteAuditsOlderThan)
	}
	if e.censusWindow != nil {
		go e.run("census", censusTickInterval, *e.censusWindow, e.repo.DeleteCensusOlderThan)
	}
}

// Stop terminates both loops.
func (e *Enforcer) Stop() { close(e.stopCh) }

func (e *Enforcer) run(table string, tickInterval, window time.Duration, deleteOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.sweep(table, window, deleteOlderThan)
		case <-e.stopCh:
			return
		}
	}
}

func (e *Enforcer) sweep(table string, window time.Duration, deleteOlderThan func(ctx context.Context, cutoff time.Time) (int64, error)) {
	cutoff := time.Now().Add(-window)
	deleted, err := deleteOlderThan(context.Background(), cutoff)
	if err != nil {
		e.logger.Warn().Str("table", table).Err(err).Msg("retention sweep failed")
		return
	}
	if deleted > 0 {
		metrics.RetentionRowsDeletedTotal.WithLabelValues(table).Add(float64(deleted))
		e.logger.Info().Str("table", table).Int64("deleted", deleted).Msg("retention sweep")
	}
}
