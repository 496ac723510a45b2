package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/moviestream/identity-system/internal/core/domain"
	"github.com/moviestream/identity-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher decouples audit writes from the request path: history
// entries are sharded to a fixed set of workers by user id, so entries
// for one user are appended in order while authentication never waits
// on the audit store. It wraps an inner HistoryRecorder and satisfies
// the same port.
type Dispatcher struct {
	workers []chan domain.HistoryEntry
	inner   ports.HistoryRecorder
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, inner ports.HistoryRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan domain.HistoryEntry, numWorkers),
		inner:   inner,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.HistoryEntry, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is
// cancelled; entries already enqueued are still written.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Record enqueues an entry for the worker owning its user id. When the
// worker's buffer is full the entry is dropped with a log line rather
// than stalling authentication.
func (d *Dispatcher) Record(entry domain.HistoryEntry) {
	select {
	case d.workers[d.shardIndex(entry.UserID)] <- entry:
	default:
		d.log.Warn().
			Str("user_id", entry.UserID).
			Str("event_kind", entry.EventKind).
			Msg("history queue full, entry dropped")
	}
}

// List passes through to the inner recorder.
func (d *Dispatcher) List(ctx context.Context, userID string) ([]domain.HistoryEntry, error) {
	return d.inner.List(ctx, userID)
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.HistoryEntry) {
	for {
		select {
		case <-ctx.Done():
			// Drain what is already buffered before exiting.
			for {
				select {
				case entry := <-ch:
					d.inner.Record(entry)
				default:
					return
				}
			}
		case entry, ok := <-ch:
			if !ok {
				return
			}
			d.inner.Record(entry)
		}
	}
}
