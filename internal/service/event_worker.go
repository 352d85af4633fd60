package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"conversion-analytics/internal/model"
	"conversion-analytics/internal/repository"
)

// WorkerConfig sizes the sink hand-off.
type WorkerConfig struct {
	BufferSize    int
	BatchSize     int
	FlushInterval time.Duration
	// Timeout bounds one batch write.
	Timeout time.Duration
	Breaker BreakerConfig
}

type BatchEventWorker interface {
	Enqueue(event model.ConversionEvent)
	Shutdown()
}

// batchEventWorker drains a bounded queue into the repository in batches.
// Producers never wait on it: a full queue drops the event.
type batchEventWorker struct {
	repo          repository.EventRepository
	breaker       *gobreaker.CircuitBreaker[struct{}]
	eventQueue    chan model.ConversionEvent
	batchSize     int
	flushInterval time.Duration
	timeout       time.Duration
	logger        zerolog.Logger

	mu       sync.RWMutex
	closed   bool
	shutdown sync.Once
	wg       sync.WaitGroup
}

func NewBatchEventWorker(repo repository.EventRepository, cfg WorkerConfig, logger zerolog.Logger) *batchEventWorker {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.BufferSize < 0 {
		cfg.BufferSize = 0
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	logger = logger.With().Str("component", "sink").Logger()
	worker := &batchEventWorker{
		repo:          repo,
		breaker:       newSinkBreaker(cfg.Breaker, logger),
		eventQueue:    make(chan model.ConversionEvent, cfg.BufferSize),
		batchSize:     cfg.BatchSize,
		flushInterval: cfg.FlushInterval,
		timeout:       cfg.Timeout,
		logger:        logger,
	}
	worker.wg.Add(1)
	go worker.startLoop()
	return worker
}

// Enqueue hands event to the background loop without blocking.
func (w *batchEventWorker) Enqueue(event model.ConversionEvent) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		sinkDroppedTotal.WithLabelValues(dropClosed).Inc()
		return
	}

	select {
	case w.eventQueue <- event:
	default:
		sinkDroppedTotal.WithLabelValues(dropQueueFull).Inc()
		w.logger.Warn().Str("event_id", event.ID).Str("type", string(event.Type)).Msg("sink queue full, event dropped")
	}
}

// Shutdown stops accepting events and blocks until the queue is flushed.
func (w *batchEventWorker) Shutdown() {
	w.shutdown.Do(func() {
		w.logger.Info().Int("queued", len(w.eventQueue)).Msg("draining sink queue")

		w.mu.Lock()
		w.closed = true
		close(w.eventQueue)
		w.mu.Unlock()

		w.wg.Wait()
		w.logger.Info().Msg("sink worker stopped")
	})
}

func (w *batchEventWorker) startLoop() {
	defer w.wg.Done()

	batch := make([]model.ConversionEvent, 0, w.batchSize)
	ticker := time.NewTicker(w.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.eventQueue:
			if !ok {
				if len(batch) > 0 {
					w.bulkInsert(batch)
				}
				return
			}

			batch = append(batch, event)
			if len(batch) >= w.batchSize {
				w.bulkInsert(batch)
				batch = make([]model.ConversionEvent, 0, w.batchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				w.bulkInsert(batch)
				batch = make([]model.ConversionEvent, 0, w.batchSize)
			}
		}
	}
}

func (w *batchEventWorker) bulkInsert(events []model.ConversionEvent) {
	_, err := w.breaker.Execute(func() (struct{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()
		return struct{}{}, w.repo.CreateBatch(ctx, events)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		sinkDroppedTotal.WithLabelValues(dropBreakerOpen).Add(float64(len(events)))
		w.logger.Warn().Int("events", len(events)).Msg("sink circuit open, batch dropped")
	case err != nil:
		sinkBatchFailuresTotal.Inc()
		sinkDroppedTotal.WithLabelValues(dropSinkError).Add(float64(len(events)))
		w.logger.Error().Err(err).Int("events", len(events)).Msg("bulk insert failed")
	default:
		sinkFlushedTotal.Add(float64(len(events)))
		w.logger.Debug().Int("events", len(events)).Msg("events flushed to sink")
	}
}
