// Package queue moves work off the request path.
package queue

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/api/metrics"
	"github.com/nadlan-invest/portal/internal/core/domain"
	"github.com/nadlan-invest/portal/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher writes activity entries through a fixed set of workers. Entries
// of one user always land on the same worker, so a user's feed is written in
// the order it was enqueued.
type Dispatcher struct {
	workers []chan domain.Activity
	repo    ports.ActivityRepository
	log     zerolog.Logger
	wg      sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, repo ports.ActivityRepository, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.Activity, numWorkers),
		repo:    repo,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Activity, channelBuffer)
	}
	return d
}

// Start launches the workers. They drain their queues and exit once ctx is
// cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has exited.
func (d *Dispatcher) Wait() { d.wg.Wait() }

// Enqueue hands a to the worker responsible for its user. It never blocks:
// when that worker's queue is full the entry is dropped.
func (d *Dispatcher) Enqueue(a domain.Activity) {
	select {
	case d.workers[d.shardIndex(a.UserID)] <- a:
	default:
		metrics.ActivityDroppedTotal.Inc()
		d.log.Warn().Str("user_id", a.UserID).Str("kind", string(a.Kind)).Msg("activity queue full, entry dropped")
	}
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Activity) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case a := <-ch:
			d.record(ctx, id, a)
		}
	}
}

// drain flushes what is already queued using a fresh context, since the
// worker's own context is done by now.
func (d *Dispatcher) drain(id int, ch <-chan domain.Activity) {
	for {
		select {
		case a := <-ch:
			d.record(context.Background(), id, a)
		default:
			return
		}
	}
}

func (d *Dispatcher) record(ctx context.Context, id int, a domain.Activity) {
	if err := d.repo.Record(ctx, a); err != nil {
		d.log.Error().Err(err).
			Str("user_id", a.UserID).
			Str("kind", string(a.Kind)).
			Int("worker_id", id).
			Msg("activity write failed")
	}
}
