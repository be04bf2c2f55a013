// Package journal provides buffered, best-effort recording of ad lifecycle
// events. Events are batched in memory and handed to a pluggable sink by a
// bounded worker pool, so a slow or unavailable sink can never stall or
// leak goroutines in the serving path.
package journal

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/thenexusengine/tne_adbridge/pkg/logger"
)

const (
	// flushWorkerCount is the number of concurrent flush workers
	flushWorkerCount = 2
	// flushQueueSize is the max pending flush batches before dropping
	flushQueueSize = 10
	// flushTimeout is the max time to wait for one sink write
	flushTimeout = 2 * time.Second
)

// Event is one recorded lifecycle occurrence
type Event struct {
	Time        time.Time `json:"time"`
	RequestID   string    `json:"request_id"`
	PlacementID string    `json:"placement_id"`
	Format      string    `json:"format"`
	Event       string    `json:"event"`
	ErrorCode   string    `json:"error_code,omitempty"`
	RewardLabel string    `json:"reward_label,omitempty"`
	RewardAmt   int       `json:"reward_amount,omitempty"`
}

// Sink receives flushed event batches. Writes are best effort; a failed
// write is logged and the batch is discarded.
type Sink interface {
	WriteEvents(ctx context.Context, events []Event) error
}

// Recorder buffers events and flushes full batches through a bounded
// worker pool
type Recorder struct {
	sink       Sink
	buffer     []Event
	bufferSize int
	closed     bool
	mu         sync.Mutex

	flushQueue chan []Event
	stopCh     chan struct{}
	wg         sync.WaitGroup

	droppedEvents  atomic.Int64
	droppedBatches atomic.Int64
	totalEvents    atomic.Int64
	flushedEvents  atomic.Int64
}

// NewRecorder creates a recorder flushing to sink in batches of bufferSize
func NewRecorder(sink Sink, bufferSize int) *Recorder {
	if bufferSize <= 0 {
		bufferSize = 100
	}

	r := &Recorder{
		sink:       sink,
		buffer:     make([]Event, 0, bufferSize),
		bufferSize: bufferSize,
		flushQueue: make(chan []Event, flushQueueSize),
		stopCh:     make(chan struct{}),
	}

	for i := 0; i < flushWorkerCount; i++ {
		r.wg.Add(1)
		go r.flushWorker()
	}

	return r
}

func (r *Recorder) flushWorker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.stopCh:
			return
		case events, ok := <-r.flushQueue:
			if !ok {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := r.sink.WriteEvents(ctx, events); err != nil {
				logger.Adapter().Warn().Err(err).Int("batch", len(events)).Msg("journal flush failed")
			}
			cancel()
		}
	}
}

// Record buffers one event, stamping it with the current time when unset.
// When the buffer fills, the batch is queued for flushing without
// blocking; a full queue drops the batch. Events recorded after Close are
// dropped.
func (r *Recorder) Record(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now().UTC()
	}

	r.totalEvents.Add(1)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.droppedEvents.Add(1)
		return
	}
	r.buffer = append(r.buffer, event)
	var batch []Event
	if len(r.buffer) >= r.bufferSize {
		batch = r.buffer
		r.buffer = make([]Event, 0, r.bufferSize)
	}
	r.mu.Unlock()

	if batch == nil {
		return
	}

	batchSize := int64(len(batch))
	select {
	case r.flushQueue <- batch:
		r.flushedEvents.Add(batchSize)
	default:
		// queue full, drop rather than block the serving path
		r.droppedEvents.Add(batchSize)
		r.droppedBatches.Add(1)
	}
}

// Flush writes the current buffer to the sink synchronously
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	if len(r.buffer) == 0 {
		r.mu.Unlock()
		return nil
	}
	events := r.buffer
	r.buffer = make([]Event, 0, r.bufferSize)
	r.mu.Unlock()

	return r.sink.WriteEvents(ctx, events)
}

// Close flushes remaining events and shuts down the workers. It is
// idempotent; events recorded after Close are dropped.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	close(r.stopCh)

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	err := r.Flush(ctx)

	close(r.flushQueue)
	r.wg.Wait()

	return err
}

// Stats contains counters for monitoring event loss
type Stats struct {
	TotalEvents    int64 `json:"total_events"`
	FlushedEvents  int64 `json:"flushed_events"`
	DroppedEvents  int64 `json:"dropped_events"`
	DroppedBatches int64 `json:"dropped_batches"`
	BufferedEvents int   `json:"buffered_events"`
	QueuedBatches  int   `json:"queued_batches"`
}

// Stats returns current recorder counters
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	buffered := len(r.buffer)
	r.mu.Unlock()

	return Stats{
		TotalEvents:    r.totalEvents.Load(),
		FlushedEvents:  r.flushedEvents.Load(),
		DroppedEvents:  r.droppedEvents.Load(),
		DroppedBatches: r.droppedBatches.Load(),
		BufferedEvents: buffered,
		QueuedBatches:  len(r.flushQueue),
	}
}

// LogSink writes event batches to the structured log. It is the fallback
// sink when no database is configured.
type LogSink struct{}

// WriteEvents implements Sink
func (LogSink) WriteEvents(_ context.Context, events []Event) error {
	for _, e := range events {
		logger.Adapter().Info().
			Str("request_id", e.RequestID).
			Str("placement_id", e.PlacementID).
			Str("format", e.Format).
			Str("event", e.Event).
			Msg("ad event")
	}
	return nil
}
