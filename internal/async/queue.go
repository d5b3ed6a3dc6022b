// Package async provides the background upload queue used by the HTTP
// async path: accept the document, return 202, ingest later.
package async

import (
	"context"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/supercpe/cpe-tracker/internal/ingest"
)

// Job is one queued certificate upload.
type Job struct {
	LicenseeID  uuid.UUID
	Filename    string
	Content     []byte
	SubmittedAt time.Time
}

type IngestQueue struct {
	svc     *ingest.Service
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*IngestQueue)

func WithWorkers(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *IngestQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithJobTimeout(d time.Duration) Option {
	return func(q *IngestQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewIngestQueue(svc *ingest.Service, logger *slog.Logger, opts ...Option) *IngestQueue {
	q := &IngestQueue{
		svc:     svc,
		logger:  logger,
		workers: 4,
		timeout: 3 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *IngestQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					res := q.svc.IngestFile(ctx, job.LicenseeID, job.Filename, job.Content)
					cancel()

					if res.Error != "" {
						q.logger.Error("background ingest failed",
							"worker_id", workerID, "filename", job.Filename,
							"outcome", res.Outcome, "error", res.Error)
					} else {
						q.logger.Info("background ingest complete",
							"worker_id", workerID, "filename", job.Filename,
							"outcome", res.Outcome)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *IngestQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "filename", job.Filename)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued certificate for processing", "filename", job.Filename)
	default:
		q.logger.Warn("queue full, applying backpressure", "filename", job.Filename)
		q.ch <- job
	}
	return nil
}

func (q *IngestQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
