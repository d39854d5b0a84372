package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/XSSGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/XSSGuard/pkg/xss"
	"github.com/sirupsen/logrus"
)

const publishTimeout = 2 * time.Second

type Worker interface {
	xss.Observer
	StartWorkers(n int)
	Shutdown()
}

type worker struct {
	logger    *logrus.Logger
	publisher Publisher
	taskChan  chan DetectionEvent
	wg        sync.WaitGroup
	closed    atomic.Bool
	mu        sync.RWMutex
}

// NewWorker publishes detections off the request path. Events that do not fit in the
// queue are dropped and counted.
func NewWorker(logger *logrus.Logger, publisher Publisher, queueSize int) Worker {
	if queueSize <= 0 {
		queueSize = 1000
	}
	return &worker{
		logger:    logger,
		publisher: publisher,
		taskChan:  make(chan DetectionEvent, queueSize),
	}
}

func (w *worker) Observe(_ context.Context, d xss.Detection) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		return
	}
	select {
	case w.taskChan <- NewDetectionEvent(d):
	default:
		prometheus.EventsDroppedTotal.Inc()
		w.logger.WithField("detection_id", d.ID).Warn("detection queue full, event dropped")
	}
}

func (w *worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	w.logger.WithField("workers", n).Info("starting detection event workers")
	for i := 0; i < n; i++ {
		w.wg.Add(1)
		go func() {
			defer w.wg.Done()
			for evt := range w.taskChan {
				w.publish(evt)
			}
		}()
	}
}

func (w *worker) publish(evt DetectionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := w.publisher.Publish(ctx, evt); err != nil {
		prometheus.EventsDroppedTotal.Inc()
		w.logger.WithError(err).WithField("detection_id", evt.ID).Error("failed to publish detection event")
	}
}

// Shutdown stops accepting events and waits until queued ones are published.
func (w *worker) Shutdown() {
	w.mu.Lock()
	if w.closed.Swap(true) {
		w.mu.Unlock()
		return
	}
	close(w.taskChan)
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("detection event workers stopped")
}
