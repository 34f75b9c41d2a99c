package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/marsone/crew-api/internal/api/metrics"
	"github.com/marsone/crew-api/internal/core/domain"
	"github.com/marsone/crew-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Record when the target worker has no room left.
var ErrQueueFull = errors.New("audit queue full")

// ErrStopped is returned by Record after Stop.
var ErrStopped = errors.New("audit dispatcher stopped")

// AuditDispatcher hands audit entries to a fixed set of workers that write them
// to the sink. Entries are sharded by resource and id, so the history of one
// entity is written in order. Record never blocks the caller.
type AuditDispatcher struct {
	workers []chan domain.AuditEntry
	sink    ports.AuditRecorder
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

var _ ports.AuditRecorder = (*AuditDispatcher)(nil)

// NewAuditDispatcher creates a dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewAuditDispatcher(numWorkers int, sink ports.AuditRecorder, log zerolog.Logger) *AuditDispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &AuditDispatcher{
		workers: make([]chan domain.AuditEntry, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.AuditEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled or
// after Stop has drained their queues.
func (d *AuditDispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues entry on the worker responsible for its entity. A full queue
// drops the entry.
func (d *AuditDispatcher) Record(_ context.Context, entry domain.AuditEntry) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.stopped {
		return ErrStopped
	}

	idx := d.shardIndex(entry.Key())
	select {
	case d.workers[idx] <- entry:
		metrics.AuditQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		metrics.AuditDroppedTotal.Inc()
		return ErrQueueFull
	}
}

// Stop refuses new entries, lets the workers drain what is queued and waits for them.
func (d *AuditDispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	for _, ch := range d.workers {
		close(ch)
	}
	d.mu.Unlock()
	d.wg.Wait()
}

// shardIndex maps an entity key deterministically to a worker index.
func (d *AuditDispatcher) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *AuditDispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.AuditEntry) {
	defer d.wg.Done()
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-ch:
			if !ok {
				return
			}
			metrics.AuditQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.sink.Record(context.WithoutCancel(ctx), entry); err != nil {
				metrics.AuditWriteErrorsTotal.WithLabelValues(entry.Resource).Inc()
				d.log.Error().Err(err).
					Str("entity", entry.Key()).
					Str("action", string(entry.Action)).
					Int("worker_id", id).
					Msg("audit write failed")
			}
		}
	}
}
