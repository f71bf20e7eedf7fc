package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/campus-canteen/internal/core/domain"
	"github.com/rl1809/campus-canteen/internal/port"
)

const recordTimeout = 5 * time.Second

// Journal queues committed events and hands them to sinks on background workers.
// It is write-only; nothing reads the journal back into the store.
type Journal struct {
	queue  chan domain.Event
	logger *zap.Logger
	wg     sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

func NewJournal(queueSize int, logger *zap.Logger) *Journal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Journal{
		queue:  make(chan domain.Event, queueSize),
		logger: logger,
	}
}

// Publish enqueues event. A full or closed journal drops it.
func (j *Journal) Publish(event domain.Event) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	if j.closed {
		return
	}

	select {
	case j.queue <- event:
	default:
		j.dropped.Add(1)
		j.logger.Warn("journal queue full, event dropped",
			zap.String("event_id", event.ID),
			zap.String("kind", string(event.Kind)))
	}
}

// Start launches workers that record queued events into sink.
func (j *Journal) Start(workers int, sink port.EventSink) {
	for i := 0; i < workers; i++ {
		j.wg.Add(1)
		go func(id int) {
			defer j.wg.Done()
			j.workerLoop(id, sink)
		}(i)
	}
	j.logger.Info("journal workers started", zap.Int("workers", workers))
}

func (j *Journal) workerLoop(id int, sink port.EventSink) {
	for event := range j.queue {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)

		if err := sink.Record(ctx, event); err != nil {
			j.logger.Error("failed to record event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID),
				zap.String("kind", string(event.Kind)),
				zap.Error(err))
		} else {
			j.logger.Debug("recorded event",
				zap.Int("worker", id),
				zap.String("event_id", event.ID))
		}

		cancel()
	}
}

// Events exposes the queue for callers that drain it themselves instead of Start.
func (j *Journal) Events() <-chan domain.Event {
	return j.queue
}

func (j *Journal) Dropped() int64 {
	return j.dropped.Load()
}

// Close stops accepting events, lets workers drain the queue and waits for them.
func (j *Journal) Close() {
	j.mu.Lock()
	if !j.closed {
		j.closed = true
		close(j.queue)
	}
	j.mu.Unlock()

	j.wg.Wait()
}

// FanoutSink records every event into each sink in turn.
type FanoutSink []port.EventSink

func (f FanoutSink) Record(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, sink := range f {
		if err := sink.Record(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
