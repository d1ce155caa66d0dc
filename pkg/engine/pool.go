package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/ethereum/glados/pkg/entity"
	"github.com/ethereum/glados/pkg/log"
	"github.com/ethereum/glados/pkg/metrics"
	"github.com/ethereum/glados/pkg/portal"
	"github.com/ethereum/glados/pkg/repository"
	"github.com/ethereum/glados/pkg/validator"
)

// Pool is the Worker Pool (C6): it paces dispatch at a configured rate,
// bounds in-flight audits to a configured concurrency, and spawns a
// detached Audit Task fiber for every task it dispatches.
type Pool struct {
	repo    repository.Repository
	next    func() ContentFetcher
	inbound <-chan entity.AuditTask

	limiter *rate.Limiter
	sem     *semaphore.Weighted
	check   *validator.Validator
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

// New builds a Pool. maxAuditRate is tasks dispatched per second;
// concurrency is the number of audits allowed in flight at once.
func New(repo repository.Repository, clients *portal.Pool, inbound <-chan entity.AuditTask, concurrency int, maxAuditRate float64) *Pool {
	return &Pool{
		repo:    repo,
		next:    func() ContentFetcher { return clients.Next() },
		inbound: inbound,
		// A burst of 1 means the limiter can never accumulate backlogged
		// permits: a tick missed while the pool was busy is coalesced into
		// the next Wait rather than released as a burst of several,
		// matching the skip-missed-tick policy with a blocking primitive.
		limiter: rate.NewLimiter(rate.Limit(maxAuditRate), 1),
		sem:     semaphore.NewWeighted(int64(concurrency)),
		check:   validator.New(repo),
		logger:  log.WithComponent("engine.pool"),
	}
}

// Run drives the dispatch loop until ctx is cancelled or the collator
// channel closes, then blocks until every in-flight fiber has released
// its permit.
func (p *Pool) Run(ctx context.Context) {
	defer p.wg.Wait()

	for {
		if err := p.limiter.Wait(ctx); err != nil {
			return
		}
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}

		task, ok := p.receive(ctx)
		if !ok {
			p.sem.Release(1)
			return
		}

		client := p.next()
		p.wg.Add(1)
		go p.runTask(ctx, task, client)
	}
}

func (p *Pool) receive(ctx context.Context) (entity.AuditTask, bool) {
	select {
	case task, open := <-p.inbound:
		return task, open
	case <-ctx.Done():
		return entity.AuditTask{}, false
	}
}

func (p *Pool) runTask(ctx context.Context, task entity.AuditTask, client ContentFetcher) {
	defer p.wg.Done()
	defer p.sem.Release(1)

	metrics.WorkerPoolInFlight.Inc()
	defer metrics.WorkerPoolInFlight.Dec()

	strategyKey := task.Strategy.Key()
	metrics.AuditsDispatchedTotal.WithLabelValues(strategyKey).Inc()

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.AuditDuration, strategyKey)

	NewTask(p.repo, client, task, p.check, p.logger).Run(ctx)
}
